package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions     prometheus.Gauge
	SessionEvents      *prometheus.CounterVec
	StageTransitions   *prometheus.CounterVec
	RejectedActions    *prometheus.CounterVec
	GenerationOutcomes *prometheus.CounterVec
	GenerationLatency  prometheus.Histogram
	WSMessages         *prometheus.CounterVec

	latency *generationWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live intake sessions.",
		}),
		SessionEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by type.",
		}, []string{"event"}),
		StageTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_transitions_total",
			Help:      "Intake flow stage transitions.",
		}, []string{"from", "to"}),
		RejectedActions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_actions_total",
			Help:      "Rejected flow actions by action and reason.",
		}, []string{"action", "reason"}),
		GenerationOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_outcomes_total",
			Help:      "Question generation attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GenerationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_ms",
			Help:      "Question generation latency in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		latency: newGenerationWindow(256),
	}
}

func (m *Metrics) ObserveGeneration(provider, outcome string, d time.Duration) {
	ms := float64(d.Milliseconds())
	m.GenerationOutcomes.WithLabelValues(provider, outcome).Inc()
	m.GenerationLatency.Observe(ms)
	m.latency.Observe(provider, outcome, ms)
}

func (m *Metrics) ObserveTransition(from, to string) {
	m.StageTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveRejected(action, reason string) {
	m.RejectedActions.WithLabelValues(action, reason).Inc()
}

func (m *Metrics) LatencySnapshot() LatencySnapshot {
	return m.latency.Snapshot()
}

func (m *Metrics) ResetLatency() {
	m.latency.Reset()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
