package memory

import (
	"context"
	"sort"
	"sync"

	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"
)

type MemoryStreamRepository struct {
	streams map[string]*domain.Stream
	mu      sync.RWMutex
}

func NewMemoryStreamRepository() ports.StreamRepository {
	return &MemoryStreamRepository{
		streams: make(map[string]*domain.Stream),
	}
}

func (r *MemoryStreamRepository) Upsert(ctx context.Context, stream *domain.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *stream
	r.streams[stream.Link] = &copied
	return nil
}

func (r *MemoryStreamRepository) GetByURL(ctx context.Context, url string) (*domain.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stream, exists := r.streams[url]
	if !exists {
		return nil, domain.ErrStreamNotFound
	}

	copied := *stream
	return &copied, nil
}

func (r *MemoryStreamRepository) Delete(ctx context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.streams[url]; !exists {
		return domain.ErrStreamNotFound
	}
	delete(r.streams, url)
	return nil
}

func (r *MemoryStreamRepository) List(ctx context.Context) ([]*domain.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	streams := make([]*domain.Stream, 0, len(r.streams))
	for _, stream := range r.streams {
		copied := *stream
		streams = append(streams, &copied)
	}
	sort.Slice(streams, func(i, j int) bool {
		return streams[i].Link < streams[j].Link
	})
	return streams, nil
}
