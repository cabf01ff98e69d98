package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Gauges
	clientsConnected prometheus.Gauge
	customStreams    prometheus.Gauge
	sessionsActive   prometheus.Gauge
	invitesPending   prometheus.Gauge

	// Counters
	connectionsTotal      prometheus.Counter
	docUpdatesTotal       *prometheus.CounterVec
	actionsTotal          *prometheus.CounterVec
	unauthorizedTotal     *prometheus.CounterVec
	deltasSentTotal       prometheus.Counter
	broadcastBytesTotal   prometheus.Counter
	inviteRedemptionsFail prometheus.Counter

	// Histograms
	broadcastDuration prometheus.Histogram
	actionDuration    *prometheus.HistogramVec
}

// NewPrometheusCollector registers the streamwall metric set with reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)
	return &PrometheusCollector{
		clientsConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "streamwall_clients_connected",
			Help: "Number of connected control clients",
		}),

		customStreams: factory.NewGauge(prometheus.GaugeOpts{
			Name: "streamwall_custom_streams",
			Help: "Number of operator-defined custom streams",
		}),

		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "streamwall_sessions_active",
			Help: "Number of active session tokens",
		}),

		invitesPending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "streamwall_invites_pending",
			Help: "Number of unredeemed invite tokens",
		}),

		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamwall_connections_total",
			Help: "Total number of control connections accepted",
		}),

		docUpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "streamwall_doc_updates_total",
			Help: "Total number of layout document updates applied",
		}, []string{"origin"}),

		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "streamwall_actions_total",
			Help: "Total number of control actions processed",
		}, []string{"type", "outcome"}),

		unauthorizedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "streamwall_unauthorized_total",
			Help: "Total number of rejected capability checks",
		}, []string{"role", "capability"}),

		deltasSentTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamwall_state_deltas_sent_total",
			Help: "Total number of state deltas sent to clients",
		}),

		broadcastBytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamwall_broadcast_bytes_total",
			Help: "Total bytes broadcast to control clients",
		}),

		inviteRedemptionsFail: factory.NewCounter(prometheus.CounterOpts{
			Name: "streamwall_invite_redemptions_failed_total",
			Help: "Total number of failed invite redemptions",
		}),

		broadcastDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "streamwall_broadcast_duration_seconds",
			Help:    "Duration of one state broadcast round",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		actionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamwall_action_duration_seconds",
			Help:    "Duration of control action handling",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"type"}),
	}
}

func (c *PrometheusCollector) ClientConnected() {
	c.clientsConnected.Inc()
	c.connectionsTotal.Inc()
}

func (c *PrometheusCollector) ClientDisconnected() {
	c.clientsConnected.Dec()
}

func (c *PrometheusCollector) DocUpdateApplied(local bool) {
	origin := "remote"
	if local {
		origin = "local"
	}
	c.docUpdatesTotal.WithLabelValues(origin).Inc()
}

func (c *PrometheusCollector) ActionProcessed(actionType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.actionsTotal.WithLabelValues(actionType, outcome).Inc()
}

func (c *PrometheusCollector) ObserveActionDuration(actionType string, seconds float64) {
	c.actionDuration.WithLabelValues(actionType).Observe(seconds)
}

func (c *PrometheusCollector) UnauthorizedAttempt(role, capability string) {
	c.unauthorizedTotal.WithLabelValues(role, capability).Inc()
}

func (c *PrometheusCollector) DeltaSent(bytes int) {
	c.deltasSentTotal.Inc()
	c.broadcastBytesTotal.Add(float64(bytes))
}

func (c *PrometheusCollector) BroadcastBytes(bytes int) {
	c.broadcastBytesTotal.Add(float64(bytes))
}

func (c *PrometheusCollector) ObserveBroadcastDuration(seconds float64) {
	c.broadcastDuration.Observe(seconds)
}

func (c *PrometheusCollector) InviteRedemptionFailed() {
	c.inviteRedemptionsFail.Inc()
}

func (c *PrometheusCollector) SetTokenCounts(invites, sessions int) {
	c.invitesPending.Set(float64(invites))
	c.sessionsActive.Set(float64(sessions))
}

func (c *PrometheusCollector) SetCustomStreamCount(n int) {
	c.customStreams.Set(float64(n))
}
