package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"

	"go.uber.org/zap"
)

// streamService maintains the stream catalog: the union of streams polled
// from remote data sources and operator-defined custom streams. Custom
// entries win over polled entries with the same link, which is also how
// per-stream edits (like rotation) stick across poll refreshes.
type streamService struct {
	repo   ports.StreamRepository
	state  ports.StateService
	logger *zap.Logger

	mu     sync.Mutex
	polled []domain.Stream
}

func NewStreamService(repo ports.StreamRepository, state ports.StateService, logger *zap.Logger) ports.StreamService {
	return &streamService{
		repo:   repo,
		state:  state,
		logger: logger,
	}
}

func (s *streamService) Streams(ctx context.Context) ([]domain.Stream, error) {
	custom, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom streams: %w", err)
	}

	s.mu.Lock()
	polled := s.polled
	s.mu.Unlock()

	overridden := make(map[string]bool, len(custom))
	for _, c := range custom {
		overridden[c.Link] = true
	}

	merged := make([]domain.Stream, 0, len(polled)+len(custom))
	for _, st := range polled {
		if !overridden[st.Link] {
			merged = append(merged, st)
		}
	}
	for _, c := range custom {
		merged = append(merged, *c)
	}
	return merged, nil
}

func (s *streamService) SetPolledStreams(ctx context.Context, streams []domain.Stream) error {
	s.mu.Lock()
	s.polled = streams
	s.mu.Unlock()
	return s.publish(ctx)
}

func (s *streamService) UpdateCustomStream(ctx context.Context, url string, data domain.Stream) error {
	data.Link = url
	data.DataSource = domain.DataSourceCustom
	if data.ID == "" {
		data.ID = streamID(url)
	}
	if err := s.repo.Upsert(ctx, &data); err != nil {
		return fmt.Errorf("failed to save custom stream: %w", err)
	}
	s.logger.Info("custom stream updated", zap.String("url", url))
	return s.publish(ctx)
}

func (s *streamService) DeleteCustomStream(ctx context.Context, url string) error {
	if err := s.repo.Delete(ctx, url); err != nil {
		return err
	}
	s.logger.Info("custom stream deleted", zap.String("url", url))
	return s.publish(ctx)
}

// RotateStream sets a stream's rotation. Polled streams are copied into the
// custom set first so the rotation survives the next poll cycle.
func (s *streamService) RotateStream(ctx context.Context, url string, rotation int) error {
	target, err := s.repo.GetByURL(ctx, url)
	if err != nil {
		found, lookupErr := s.findPolled(url)
		if lookupErr != nil {
			return lookupErr
		}
		target = &found
		target.DataSource = domain.DataSourceCustom
	}

	target.Rotation = ((rotation % 360) + 360) % 360
	if err := s.repo.Upsert(ctx, target); err != nil {
		return fmt.Errorf("failed to save rotation: %w", err)
	}
	s.logger.Info("stream rotated",
		zap.String("url", url),
		zap.Int("rotation", target.Rotation))
	return s.publish(ctx)
}

func (s *streamService) findPolled(url string) (domain.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.polled {
		if st.Link == url {
			return st, nil
		}
	}
	return domain.Stream{}, domain.ErrStreamNotFound
}

func (s *streamService) publish(ctx context.Context) error {
	merged, err := s.Streams(ctx)
	if err != nil {
		return err
	}
	s.state.SetStreams(merged)
	return nil
}

func streamID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:8]
}
