package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Checks          *prometheus.CounterVec
	FallbackActive  prometheus.Gauge
	BackendFailures prometheus.Counter
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "baiki_ratelimit_checks_total",
			Help: "Rate limit checks by endpoint class and outcome (allowed, limited)",
		}, []string{"class", "outcome"}),
		FallbackActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "baiki_ratelimit_fallback_active",
			Help: "1 while rate limiting runs on the in-memory fallback",
		}),
		BackendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "baiki_ratelimit_backend_failures_total",
			Help: "Errors from the shared rate limit backend",
		}),
	}
}

func (m *Metrics) ObserveCheck(class string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "limited"
	}
	m.Checks.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}

func (m *Metrics) IncrementBackendFailures() {
	m.BackendFailures.Inc()
}
