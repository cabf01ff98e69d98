package monitoring

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newCollector() *PrometheusCollector {
	return NewPrometheusCollector(prometheus.NewRegistry())
}

func TestClientConnectionGauge(t *testing.T) {
	c := newCollector()

	c.ClientConnected()
	c.ClientConnected()
	c.ClientDisconnected()

	assert.Equal(t, float64(1), testutil.ToFloat64(c.clientsConnected))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.connectionsTotal))
}

func TestDeltaSentCountsMessagesAndBytes(t *testing.T) {
	c := newCollector()

	c.DeltaSent(120)
	c.DeltaSent(80)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.deltasSentTotal))
	assert.Equal(t, float64(200), testutil.ToFloat64(c.broadcastBytesTotal))
}

func TestSetCustomStreamCount(t *testing.T) {
	c := newCollector()

	c.SetCustomStreamCount(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(c.customStreams))

	c.SetCustomStreamCount(1)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.customStreams))
}

func TestSetTokenCounts(t *testing.T) {
	c := newCollector()

	c.SetTokenCounts(2, 5)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.invitesPending))
	assert.Equal(t, float64(5), testutil.ToFloat64(c.sessionsActive))
}

func TestActionOutcomeLabels(t *testing.T) {
	c := newCollector()

	c.ActionProcessed("rotate-stream", nil)
	c.ActionProcessed("rotate-stream", errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(c.actionsTotal.WithLabelValues("rotate-stream", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.actionsTotal.WithLabelValues("rotate-stream", "error")))
}

func TestInviteRedemptionFailedCounter(t *testing.T) {
	c := newCollector()

	c.InviteRedemptionFailed()

	assert.Equal(t, float64(1), testutil.ToFloat64(c.inviteRedemptionsFail))
}
