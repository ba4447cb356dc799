package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the workspace service.
type Metrics struct {
	// ExtractionsTotal counts extraction calls.
	// Labels: outcome (success, validation, configuration, busy, upstream)
	ExtractionsTotal *prometheus.CounterVec

	// ExtractionDuration tracks the time spent waiting on the model.
	ExtractionDuration prometheus.Histogram

	// GesturesTotal counts completed gestures.
	// Labels: outcome (moved, connected, disconnected, aborted)
	GesturesTotal *prometheus.CounterVec

	// SessionsActive is the number of open sessions.
	SessionsActive prometheus.Gauge

	// InboxEntries is the number of transcripts waiting in the inbox.
	InboxEntries prometheus.Gauge
}

// NewMetrics registers the collectors with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ExtractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meetingcanvas",
				Subsystem: "extraction",
				Name:      "requests_total",
				Help:      "Total number of extraction requests by outcome",
			},
			[]string{"outcome"},
		),
		ExtractionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "meetingcanvas",
				Subsystem: "extraction",
				Name:      "duration_seconds",
				Help:      "Duration of upstream extraction calls in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		),
		GesturesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meetingcanvas",
				Subsystem: "canvas",
				Name:      "gestures_total",
				Help:      "Total number of completed canvas gestures by outcome",
			},
			[]string{"outcome"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "meetingcanvas",
				Subsystem: "workspace",
				Name:      "sessions_active",
				Help:      "Number of open workspace sessions",
			},
		),
		InboxEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "meetingcanvas",
				Subsystem: "inbox",
				Name:      "entries",
				Help:      "Number of transcripts available in the inbox",
			},
		),
	}
}
