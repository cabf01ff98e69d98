package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type streamCapture struct {
	polled [][]domain.Stream
}

func (c *streamCapture) Streams(ctx context.Context) ([]domain.Stream, error) { return nil, nil }

func (c *streamCapture) SetPolledStreams(ctx context.Context, streams []domain.Stream) error {
	c.polled = append(c.polled, streams)
	return nil
}

func (c *streamCapture) UpdateCustomStream(ctx context.Context, url string, data domain.Stream) error {
	return nil
}

func (c *streamCapture) DeleteCustomStream(ctx context.Context, url string) error { return nil }

func (c *streamCapture) RotateStream(ctx context.Context, url string, rotation int) error {
	return nil
}

var _ ports.StreamService = (*streamCapture)(nil)

func listServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchMergesAndDeduplicatesByLink(t *testing.T) {
	first := listServer(t, `[{"link":"https://example.com/a","label":"one"},{"link":"https://example.com/b"}]`)
	second := listServer(t, `[{"link":"https://example.com/b","label":"dup"},{"link":"https://example.com/c"},{"link":""}]`)

	p := NewPoller([]string{first.URL, second.URL}, time.Minute, &streamCapture{}, zap.NewNop())
	streams, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, streams, 3)
	assert.Equal(t, "https://example.com/a", streams[0].Link)
	assert.Equal(t, "one", streams[0].Label)
	// The earlier source wins on duplicate links.
	assert.Empty(t, streams[1].Label)
	assert.Equal(t, "https://example.com/c", streams[2].Link)
}

func TestFetchSkipsFailingSource(t *testing.T) {
	bad := failingServer(t)
	good := listServer(t, `[{"link":"https://example.com/a"}]`)

	p := NewPoller([]string{bad.URL, good.URL}, time.Minute, &streamCapture{}, zap.NewNop())
	streams, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, streams, 1)
}

func TestAllSourcesFailingKeepsPreviousCatalog(t *testing.T) {
	bad := failingServer(t)
	capture := &streamCapture{}

	p := NewPoller([]string{bad.URL}, time.Minute, capture, zap.NewNop())

	_, err := p.Fetch(context.Background())
	require.Error(t, err)

	p.poll(context.Background())
	assert.Empty(t, capture.polled, "a fully failed cycle must not replace the catalog")
}
