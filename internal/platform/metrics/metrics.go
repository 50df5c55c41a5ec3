package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	GrievancesSubmitted  prometheus.Counter
	LifecycleTransitions *prometheus.CounterVec
	TransitionRejections *prometheus.CounterVec
	NormalizeFallbacks   prometheus.Counter
	NormalizeDuration    prometheus.Histogram
	StrikesIssued        prometheus.Counter
	FeedClients          prometheus.Gauge
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		GrievancesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusvoice_grievances_submitted_total",
			Help: "Total number of grievances submitted",
		}),
		LifecycleTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campusvoice_lifecycle_transitions_total",
			Help: "Committed lifecycle transitions by action",
		}, []string{"action"}),
		TransitionRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campusvoice_transition_rejections_total",
			Help: "Rejected lifecycle transitions by reason",
		}, []string{"reason"}),
		NormalizeFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusvoice_normalize_fallback_total",
			Help: "Normalization calls that fell back to the original text",
		}),
		NormalizeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "campusvoice_normalize_duration_seconds",
			Help:    "Latency of text normalization calls",
			Buckets: prometheus.DefBuckets,
		}),
		StrikesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusvoice_strikes_issued_total",
			Help: "Strikes issued for abusive submissions",
		}),
		FeedClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "campusvoice_feed_clients",
			Help: "Currently connected live feed clients",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campusvoice_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
