package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the intake service.
type Metrics struct {
	DraftsCreated prometheus.Counter
	DraftsExpired prometheus.Counter
	ActiveDrafts  prometheus.Gauge

	StepAdvances           *prometheus.CounterVec
	StepValidationFailures *prometheus.CounterVec

	Submissions   *prometheus.CounterVec
	SignLatency   prometheus.Histogram
	SigningErrors prometheus.Counter
	IPFallbacks   prometheus.Counter

	AssistantTokensIssued prometheus.Counter
	AssistantSessions     prometheus.Gauge
	AssistantToolCalls    *prometheus.CounterVec
}

// New creates all metrics and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DraftsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "brightpath_drafts_created_total",
			Help: "Total number of application drafts created",
		}),
		DraftsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "brightpath_drafts_expired_total",
			Help: "Total number of drafts swept after the idle TTL",
		}),
		ActiveDrafts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "brightpath_active_drafts",
			Help: "Current number of in-progress application drafts",
		}),
		StepAdvances: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brightpath_step_advances_total",
			Help: "Total number of successful wizard step advances",
		}, []string{"step"}),
		StepValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brightpath_step_validation_failures_total",
			Help: "Total number of rejected advance attempts",
		}, []string{"step"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brightpath_submissions_total",
			Help: "Total number of submission attempts by outcome",
		}, []string{"outcome"}),
		SignLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "brightpath_sign_latency_seconds",
			Help:    "Latency of the full sign-and-submit flow in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		SigningErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "brightpath_signing_errors_total",
			Help: "Total number of document artifact generation failures",
		}),
		IPFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "brightpath_audit_ip_fallbacks_total",
			Help: "Total number of audit trails recorded with an unknown client address",
		}),
		AssistantTokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "brightpath_assistant_tokens_issued_total",
			Help: "Total number of ephemeral realtime credentials issued",
		}),
		AssistantSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "brightpath_assistant_sessions",
			Help: "Current number of connected assistant sessions",
		}),
		AssistantToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brightpath_assistant_tool_calls_total",
			Help: "Total number of assistant tool calls dispatched",
		}, []string{"tool"}),
	}
}

// NewForTest returns metrics on a private registry, safe for parallel tests.
func NewForTest() *Metrics {
	return New(prometheus.NewRegistry())
}
