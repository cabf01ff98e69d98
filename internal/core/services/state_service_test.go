package services

import (
	"testing"

	"streamwall/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStartsWithConfig(t *testing.T) {
	svc := NewStateService(domain.WallConfig{GridCount: 3, Width: 1920, Height: 1080})

	snap := svc.Snapshot()
	assert.Equal(t, 3, snap.Config.GridCount)
	assert.NotNil(t, snap.Streams)
	assert.NotNil(t, snap.Views)
	assert.Nil(t, snap.Auth)
}

func TestSubscribeDeliversLatestSnapshot(t *testing.T) {
	svc := NewStateService(domain.WallConfig{GridCount: 2})

	// Publish twice without a consumer; the pending snapshot is replaced.
	svc.SetStreams([]domain.Stream{{ID: "a", Link: "https://example.com/a"}})
	svc.SetStreams([]domain.Stream{
		{ID: "a", Link: "https://example.com/a"},
		{ID: "b", Link: "https://example.com/b"},
	})

	select {
	case snap := <-svc.Subscribe():
		require.Len(t, snap.Streams, 2)
	default:
		t.Fatal("expected a pending snapshot")
	}

	select {
	case <-svc.Subscribe():
		t.Fatal("expected no further snapshots")
	default:
	}
}

func TestPartialUpdatesAccumulate(t *testing.T) {
	svc := NewStateService(domain.WallConfig{GridCount: 2})

	svc.SetStreams([]domain.Stream{{ID: "a"}})
	svc.SetViewStates([]domain.ViewState{{Idx: 0, StreamID: "a", Width: 1, Height: 1}})
	svc.SetDelayStatus(&domain.DelayStatus{IsConnected: true, DelaySeconds: 15})
	svc.SetAuthState(&domain.AuthState{Invites: []domain.TokenInfo{}, Sessions: []domain.TokenInfo{}})

	snap := svc.Snapshot()
	assert.Len(t, snap.Streams, 1)
	assert.Len(t, snap.Views, 1)
	require.NotNil(t, snap.Streamdelay)
	assert.Equal(t, 15, snap.Streamdelay.DelaySeconds)
	assert.NotNil(t, snap.Auth)
}

func TestViewRedactsAuthForNonAdmins(t *testing.T) {
	svc := NewStateService(domain.WallConfig{GridCount: 2})
	svc.SetAuthState(&domain.AuthState{Sessions: []domain.TokenInfo{{ID: "s1", Name: "guest", Role: domain.RoleOperator}}})

	snap := svc.Snapshot()
	assert.NotNil(t, snap.View(domain.RoleAdmin).Auth)
	assert.Nil(t, snap.View(domain.RoleOperator).Auth)
	assert.Nil(t, snap.View(domain.RoleMonitor).Auth)
}
