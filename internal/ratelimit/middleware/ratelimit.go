package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"baiki/internal/audit"
	"baiki/internal/ratelimit/models"
	"baiki/pkg/platform/httputil"
	"baiki/pkg/requestcontext"
)

const codeRateLimited = "RATE_LIMIT_EXCEEDED"

type RateLimiter interface {
	Check(ctx context.Context, class models.EndpointClass, ip string) (*models.Result, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type Middleware struct {
	limiter        RateLimiter
	logger         *slog.Logger
	auditPublisher AuditPublisher
	disabled       bool
}

type Option func(*Middleware)

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(m *Middleware) {
		m.auditPublisher = publisher
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit enforces the class budget per client IP. Limiter errors fail open.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.limiter.Check(ctx, class, ip)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class,
					"client_ip", ip,
					"request_id", requestcontext.RequestID(ctx),
				)
				if m.auditPublisher != nil {
					m.auditPublisher.Emit(ctx, audit.Event{
						Action:  audit.EventRateLimitExceeded,
						Subject: ip,
						Reason:  string(class),
					})
				}
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if result.Degraded {
		w.Header().Set("X-RateLimit-Status", "degraded")
	}
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorEnvelope{
		Error: httputil.ErrorBody{
			Name:       "RateLimitError",
			Message:    "Too many requests from this IP address. Please try again later.",
			Code:       codeRateLimited,
			StatusCode: http.StatusTooManyRequests,
			Details:    map[string]int{"retryAfter": result.RetryAfter},
		},
	})
}
