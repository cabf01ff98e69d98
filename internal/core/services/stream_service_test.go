package services

import (
	"context"
	"testing"

	"streamwall/internal/core/domain"
	"streamwall/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStreamService() (*streamService, *stateCapture) {
	state := &stateCapture{}
	svc := NewStreamService(memory.NewMemoryStreamRepository(), state, zap.NewNop()).(*streamService)
	return svc, state
}

// stateCapture records the last stream list published to the aggregator.
type stateCapture struct {
	streams []domain.Stream
}

func (c *stateCapture) Snapshot() domain.Snapshot                 { return domain.Snapshot{} }
func (c *stateCapture) Subscribe() <-chan domain.Snapshot         { return nil }
func (c *stateCapture) SetStreams(streams []domain.Stream)        { c.streams = streams }
func (c *stateCapture) SetViewStates(views []domain.ViewState)    {}
func (c *stateCapture) SetDelayStatus(status *domain.DelayStatus) {}
func (c *stateCapture) SetAuthState(auth *domain.AuthState)       {}

func TestCatalogMergesPolledAndCustom(t *testing.T) {
	svc, state := newStreamService()
	ctx := context.Background()

	require.NoError(t, svc.SetPolledStreams(ctx, []domain.Stream{
		{ID: "p1", Link: "https://example.com/one"},
		{ID: "p2", Link: "https://example.com/two"},
	}))
	require.NoError(t, svc.UpdateCustomStream(ctx, "https://example.com/mine", domain.Stream{
		Label: "my stream",
	}))

	streams, err := svc.Streams(ctx)
	require.NoError(t, err)
	require.Len(t, streams, 3)
	assert.Equal(t, "https://example.com/mine", streams[2].Link)
	assert.Equal(t, domain.DataSourceCustom, streams[2].DataSource)
	assert.NotEmpty(t, streams[2].ID)
	assert.Equal(t, streams, state.streams)
}

func TestCustomStreamOverridesPolledWithSameLink(t *testing.T) {
	svc, _ := newStreamService()
	ctx := context.Background()

	require.NoError(t, svc.SetPolledStreams(ctx, []domain.Stream{
		{ID: "p1", Link: "https://example.com/one", Label: "from poller"},
	}))
	require.NoError(t, svc.UpdateCustomStream(ctx, "https://example.com/one", domain.Stream{
		Label: "edited",
	}))

	streams, err := svc.Streams(ctx)
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, "edited", streams[0].Label)
}

func TestDeleteCustomStream(t *testing.T) {
	svc, _ := newStreamService()
	ctx := context.Background()

	require.NoError(t, svc.UpdateCustomStream(ctx, "https://example.com/mine", domain.Stream{}))
	require.NoError(t, svc.DeleteCustomStream(ctx, "https://example.com/mine"))

	streams, err := svc.Streams(ctx)
	require.NoError(t, err)
	assert.Empty(t, streams)

	assert.ErrorIs(t, svc.DeleteCustomStream(ctx, "https://example.com/mine"), domain.ErrStreamNotFound)
}

func TestRotateStreamSetsRotation(t *testing.T) {
	svc, _ := newStreamService()
	ctx := context.Background()

	require.NoError(t, svc.UpdateCustomStream(ctx, "https://example.com/mine", domain.Stream{}))

	for _, tt := range []struct{ in, want int }{
		{90, 90},
		{180, 180},
		{360, 0},
		{-90, 270},
	} {
		require.NoError(t, svc.RotateStream(ctx, "https://example.com/mine", tt.in))
		streams, err := svc.Streams(ctx)
		require.NoError(t, err)
		require.Len(t, streams, 1)
		assert.Equal(t, tt.want, streams[0].Rotation)
	}
}

func TestRotatePolledStreamSurvivesPollRefresh(t *testing.T) {
	svc, _ := newStreamService()
	ctx := context.Background()

	require.NoError(t, svc.SetPolledStreams(ctx, []domain.Stream{
		{ID: "p1", Link: "https://example.com/one"},
	}))
	require.NoError(t, svc.RotateStream(ctx, "https://example.com/one", 90))

	// A poll refresh must not reset the rotation.
	require.NoError(t, svc.SetPolledStreams(ctx, []domain.Stream{
		{ID: "p1", Link: "https://example.com/one"},
	}))

	streams, err := svc.Streams(ctx)
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, 90, streams[0].Rotation)
}

func TestRotateUnknownStream(t *testing.T) {
	svc, _ := newStreamService()

	err := svc.RotateStream(context.Background(), "https://example.com/nope", 90)
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
}
