package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baiki/internal/audit"
	auditmemory "baiki/internal/audit/store/memory"
	"baiki/internal/ratelimit/models"
	"baiki/internal/ratelimit/service"
	"baiki/pkg/platform/middleware/metadata"
	"baiki/pkg/testutil"
)

type brokenLimiter struct{}

func (brokenLimiter) Check(context.Context, models.EndpointClass, string) (*models.Result, error) {
	return nil, context.DeadlineExceeded
}

func newHandler(limiter RateLimiter, opts ...Option) http.Handler {
	m := New(limiter, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return metadata.ClientMetadata(m.RateLimit(models.ClassAuth)(ok))
}

func request(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	req.Header.Set("X-Forwarded-For", ip)
	return req
}

func TestRateLimitPerIP(t *testing.T) {
	store := auditmemory.NewInMemoryStore()
	h := newHandler(service.New(nil, 2, time.Minute), WithAuditPublisher(audit.NewPublisher(store, nil)))

	for range 2 {
		rec := testutil.DoRequest(h, request("203.0.113.5"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := testutil.DoRequest(h, request("203.0.113.5"))
	testutil.AssertStatusAndError(t, rec, http.StatusTooManyRequests, codeRateLimited)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, []audit.AuditEvent{audit.EventRateLimitExceeded}, store.Actions())

	rec = testutil.DoRequest(h, request("203.0.113.6"))
	assert.Equal(t, http.StatusOK, rec.Code, "another client is unaffected")
}

func TestRateLimitFailsOpen(t *testing.T) {
	rec := testutil.DoRequest(newHandler(brokenLimiter{}), request("203.0.113.5"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitDisabled(t *testing.T) {
	h := newHandler(service.New(nil, 1, time.Minute), WithDisabled(true))
	for range 3 {
		assert.Equal(t, http.StatusOK, testutil.DoRequest(h, request("203.0.113.5")).Code)
	}
}
