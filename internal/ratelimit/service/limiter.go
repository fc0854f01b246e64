// Package service checks per-IP request budgets against a shared window store,
// switching to an in-memory window while the shared store is failing.
package service

import (
	"context"
	"log/slog"
	"time"

	"baiki/internal/ratelimit/metrics"
	"baiki/internal/ratelimit/models"
	"baiki/internal/ratelimit/store/window"
	"baiki/pkg/platform/circuit"
)

// Store counts requests in fixed windows.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}

type Limiter struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(l *Limiter) {
		l.breaker = b
	}
}

// WithFallback replaces the in-memory fallback store.
func WithFallback(s Store) Option {
	return func(l *Limiter) {
		l.fallback = s
	}
}

// New creates a Limiter allowing limit requests per window. A nil primary
// means the in-memory store is the only store.
func New(primary Store, limit int, per time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		primary: primary,
		limit:   limit,
		window:  per,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fallback == nil {
		l.fallback = window.New()
	}
	if l.breaker == nil {
		l.breaker = circuit.New("ratelimit")
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Check counts one request from ip against the class budget.
func (l *Limiter) Check(ctx context.Context, class models.EndpointClass, ip string) (*models.Result, error) {
	key := models.NewIPKey(class, ip)

	count, resetAt, degraded, err := l.increment(ctx, key)
	if err != nil {
		return nil, err
	}

	result := &models.Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: max(l.limit-int(count), 0),
		ResetAt:   resetAt,
		Degraded:  degraded,
	}
	if !result.Allowed {
		result.RetryAfter = max(int(time.Until(resetAt).Round(time.Second).Seconds()), 1)
	}
	if l.metrics != nil {
		l.metrics.ObserveCheck(string(class), result.Allowed)
	}
	return result, nil
}

func (l *Limiter) increment(ctx context.Context, key string) (int64, time.Time, bool, error) {
	if l.primary == nil {
		count, resetAt, err := l.fallback.Increment(ctx, key, l.window)
		return count, resetAt, false, err
	}

	count, resetAt, err := l.primary.Increment(ctx, key, l.window)
	if err != nil {
		if l.metrics != nil {
			l.metrics.IncrementBackendFailures()
		}
		_, change := l.breaker.RecordFailure()
		if change.Opened {
			l.logger.WarnContext(ctx, "rate limit backend failing, using in-memory fallback", "error", err)
			l.setFallbackActive(true)
		}
		count, resetAt, err = l.fallback.Increment(ctx, key, l.window)
		return count, resetAt, true, err
	}

	usePrimary, change := l.breaker.RecordSuccess()
	if change.Closed {
		l.logger.InfoContext(ctx, "rate limit backend recovered")
		l.setFallbackActive(false)
	}
	if !usePrimary {
		count, resetAt, err = l.fallback.Increment(ctx, key, l.window)
		return count, resetAt, true, err
	}
	return count, resetAt, false, nil
}

func (l *Limiter) setFallbackActive(active bool) {
	if l.metrics != nil {
		l.metrics.SetFallbackActive(active)
	}
}
