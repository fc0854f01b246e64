package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the credential module.
type Metrics struct {
	UsersCreated      prometheus.Counter
	SessionsCreated   prometheus.Counter
	AuthFailures      *prometheus.CounterVec
	PasswordHashDelay prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "baiki_users_created_total",
			Help: "Total number of accounts created",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "baiki_sessions_created_total",
			Help: "Total number of sessions issued",
		}),
		AuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "baiki_auth_failures_total",
			Help: "Rejected credential and session checks by reason",
		}, []string{"reason"}),
		PasswordHashDelay: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "baiki_password_hash_duration_seconds",
			Help:    "Duration of bcrypt hash and compare operations",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) IncrementSessionsCreated() {
	m.SessionsCreated.Inc()
}

func (m *Metrics) IncrementAuthFailure(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}

// ObservePasswordHash records a bcrypt operation started at start.
func (m *Metrics) ObservePasswordHash(start time.Time) {
	m.PasswordHashDelay.Observe(time.Since(start).Seconds())
}
