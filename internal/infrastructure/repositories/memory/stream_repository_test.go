package memory

import (
	"context"
	"testing"

	"streamwall/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamRepositoryUpsert(t *testing.T) {
	repo := NewMemoryStreamRepository()
	ctx := context.Background()

	stream := &domain.Stream{ID: "s1", Link: "https://example.com/a", Label: "first"}
	require.NoError(t, repo.Upsert(ctx, stream))

	// Upsert with the same link replaces.
	stream.Label = "second"
	require.NoError(t, repo.Upsert(ctx, stream))

	got, err := repo.GetByURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Label)

	streams, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, streams, 1)
}

func TestStreamRepositoryDelete(t *testing.T) {
	repo := NewMemoryStreamRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &domain.Stream{Link: "https://example.com/a"}))
	require.NoError(t, repo.Delete(ctx, "https://example.com/a"))

	_, err := repo.GetByURL(ctx, "https://example.com/a")
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "https://example.com/a"), domain.ErrStreamNotFound)
}

func TestStreamRepositoryListOrderedByLink(t *testing.T) {
	repo := NewMemoryStreamRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &domain.Stream{Link: "https://example.com/b"}))
	require.NoError(t, repo.Upsert(ctx, &domain.Stream{Link: "https://example.com/a"}))

	streams, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, streams, 2)
	assert.Equal(t, "https://example.com/a", streams[0].Link)
	assert.Equal(t, "https://example.com/b", streams[1].Link)
}
