package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks registration outcomes. An "incomplete" outcome is a user
// created without a business.
type Metrics struct {
	Registrations *prometheus.CounterVec
	Duration      prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "baiki_registrations_total",
			Help: "Registration attempts by outcome (completed, rejected, incomplete)",
		}, []string{"outcome"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "baiki_registration_duration_seconds",
			Help:    "End-to-end registration duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) ObserveOutcome(outcome string, start time.Time) {
	m.Registrations.WithLabelValues(outcome).Inc()
	m.Duration.Observe(time.Since(start).Seconds())
}
