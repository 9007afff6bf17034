package ingest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fliaght/novelmof/internal/diagnostic"
)

// Metrics are the pipeline's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	documents   *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "novelmof_documents_total",
			Help: "Documents processed by the ingest pipeline, by outcome.",
		}, []string{"outcome"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "novelmof_diagnostics_total",
			Help: "Mapping diagnostics emitted, by reason.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "novelmof_document_duration_seconds",
			Help:    "Time spent ingesting one document.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	for _, c := range []prometheus.Collector{m.documents, m.diagnostics, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(outcome Outcome, diags []diagnostic.Diagnostic, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(string(outcome)).Inc()
	for _, d := range diags {
		m.diagnostics.WithLabelValues(string(d.Reason)).Inc()
	}
	m.duration.Observe(elapsed.Seconds())
}
