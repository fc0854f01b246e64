package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the tenant module.
// Tracks tenant and membership creation counts and the tenant lookup path.
type Metrics struct {
	TenantCreated      prometheus.Counter
	TenantUserCreated  *prometheus.CounterVec
	ResolveTenantDelay prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TenantCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "baiki_tenants_created_total",
			Help: "Total number of tenants created",
		}),
		TenantUserCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "baiki_tenant_users_created_total",
			Help: "Total number of tenant memberships created by role",
		}, []string{"role"}),
		ResolveTenantDelay: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "baiki_resolve_tenant_duration_seconds",
			Help:    "Duration of tenant lookups by slug or id (page and API gate path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementTenantCreated records a successful tenant creation.
func (m *Metrics) IncrementTenantCreated() {
	m.TenantCreated.Inc()
}

func (m *Metrics) IncrementTenantUserCreated(role string) {
	m.TenantUserCreated.WithLabelValues(role).Inc()
}

// ObserveResolveTenant records the duration of a tenant lookup.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveResolveTenant(start time.Time) {
	m.ResolveTenantDelay.Observe(time.Since(start).Seconds())
}
