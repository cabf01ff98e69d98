// Package streamdelay talks to the external stream delay service that sits
// between the wall output and the published stream. The server only proxies
// its status and the censor/stream toggles.
package streamdelay

import (
	"bytes"
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

type Client struct {
	endpoint     string
	key          string
	pollInterval time.Duration
	httpClient   *http.Client
	state        ports.StateService
	logger       *zap.Logger
}

func NewClient(endpoint, key string, pollInterval time.Duration, state ports.StateService, logger *zap.Logger) *Client {
	return &Client{
		endpoint:     endpoint,
		key:          key,
		pollInterval: pollInterval,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		state:        state,
		logger:       logger,
	}
}

// Run polls the delay service and feeds its status into the aggregator until
// the context is canceled. An unreachable service is reported as a
// disconnected status rather than an error.
func (c *Client) Run(ctx context.Context) {
	c.poll(ctx)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

func (c *Client) poll(ctx context.Context) {
	status, err := c.Status(ctx)
	if err != nil {
		c.logger.Warn("streamdelay status poll failed", zap.Error(err))
		c.state.SetDelayStatus(&domain.DelayStatus{IsConnected: false})
		return
	}
	status.IsConnected = true
	c.state.SetDelayStatus(status)
}

func (c *Client) Status(ctx context.Context) (*domain.DelayStatus, error) {
	var status domain.DelayStatus

	err := retry.Do(ctx, retry.Config{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2,
	}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/status", nil)
		if err != nil {
			return err
		}
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("streamdelay status returned %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&status)
	})
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) SetCensored(ctx context.Context, censored bool) error {
	return c.patchSettings(ctx, map[string]interface{}{"isCensored": censored})
}

func (c *Client) SetStreamRunning(ctx context.Context, running bool) error {
	return c.patchSettings(ctx, map[string]interface{}{"isStreamRunning": running})
}

func (c *Client) patchSettings(ctx context.Context, settings map[string]interface{}) error {
	body, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.endpoint+"/settings", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update streamdelay settings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("streamdelay settings update returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}
}

var _ ports.DelayService = (*Client)(nil)
