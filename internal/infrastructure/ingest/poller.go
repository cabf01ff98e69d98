// Package ingest periodically fetches the published stream lists that feed
// the wall's catalog. The lists are external collaborators; the poller only
// transports what they supply.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"
	"streamwall/pkg/retry"

	"go.uber.org/zap"
)

type Poller struct {
	urls         []string
	pollInterval time.Duration
	httpClient   *http.Client
	streams      ports.StreamService
	logger       *zap.Logger
}

func NewPoller(urls []string, pollInterval time.Duration, streams ports.StreamService, logger *zap.Logger) *Poller {
	return &Poller{
		urls:         urls,
		pollInterval: pollInterval,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		streams:      streams,
		logger:       logger,
	}
}

// Run fetches all configured sources on every tick and replaces the polled
// half of the catalog. Sources that fail are skipped for that cycle so one
// flaky list cannot blank the wall.
func (p *Poller) Run(ctx context.Context) {
	if len(p.urls) == 0 {
		return
	}

	p.poll(ctx)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	merged, err := p.Fetch(ctx)
	if err != nil {
		// Every source failed; keep the previous catalog.
		p.logger.Warn("stream catalog refresh skipped", zap.Error(err))
		return
	}

	if err := p.streams.SetPolledStreams(ctx, merged); err != nil {
		p.logger.Error("failed to update polled streams", zap.Error(err))
		return
	}
	p.logger.Debug("stream catalog refreshed", zap.Int("count", len(merged)))
}

// Fetch pulls every configured list and merges them, deduplicating by link
// with the earlier source winning. It fails only when every source does.
func (p *Poller) Fetch(ctx context.Context) ([]domain.Stream, error) {
	merged := []domain.Stream{}
	seen := make(map[string]bool)
	failed := 0

	for _, url := range p.urls {
		streams, err := p.fetchOne(ctx, url)
		if err != nil {
			p.logger.Warn("stream list fetch failed",
				zap.String("url", url),
				zap.Error(err))
			failed++
			continue
		}
		for _, st := range streams {
			if st.Link == "" || seen[st.Link] {
				continue
			}
			seen[st.Link] = true
			merged = append(merged, st)
		}
	}

	if len(p.urls) > 0 && failed == len(p.urls) {
		return nil, fmt.Errorf("all %d stream sources failed", failed)
	}
	return merged, nil
}

func (p *Poller) fetchOne(ctx context.Context, url string) ([]domain.Stream, error) {
	var streams []domain.Stream

	err := retry.Do(ctx, retry.Config{
		MaxAttempts:  2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("stream list returned %d", resp.StatusCode)
		}
		streams = streams[:0]
		return json.NewDecoder(resp.Body).Decode(&streams)
	})
	if err != nil {
		return nil, err
	}
	return streams, nil
}

var _ ports.StreamSource = (*Poller)(nil)
