package httptransport

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"baiki/pkg/testutil"
)

func TestHealthHandler(t *testing.T) {
	testutil.Given(t, "no dependency checks", func(t *testing.T) {
		h := healthHandler(nil)

		testutil.When(t, "probing /healthz", func(t *testing.T) {
			rec := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/healthz"))

			testutil.Then(t, "the process reports ok", func(t *testing.T) {
				testutil.AssertStatusOK(t, rec)
				assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
			})
		})
	})

	testutil.Given(t, "a failing dependency", func(t *testing.T) {
		h := healthHandler(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})

		testutil.When(t, "probing /healthz", func(t *testing.T) {
			rec := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/healthz"))

			testutil.Then(t, "the process reports degraded with per-check detail", func(t *testing.T) {
				testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)
				assert.JSONEq(t,
					`{"status":"degraded","checks":{"postgres":"ok","redis":"connection refused"}}`,
					rec.Body.String())
			})
		})
	})
}
