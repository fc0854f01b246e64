// Package httptransport assembles the process router: global middleware, host
// resolution, the /api surface and the tenant page tree.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"baiki/internal/authz"
	authhandler "baiki/internal/auth/handler"
	"baiki/internal/platform/metrics"
	ratelimitmw "baiki/internal/ratelimit/middleware"
	ratelimitmodels "baiki/internal/ratelimit/models"
	reghandler "baiki/internal/registration/handler"
	"baiki/internal/resolver"
	tenanthandler "baiki/internal/tenant/handler"
	tenantmodels "baiki/internal/tenant/models"
	"baiki/internal/user"
	"baiki/pkg/platform/httputil"
	"baiki/pkg/platform/middleware/metadata"
	"baiki/pkg/platform/middleware/request"
	"baiki/pkg/platform/middleware/requesttime"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps carries everything the router mounts. RateLimit is optional.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Resolver       *resolver.Resolver
	TrustedOrigins []string
	HealthChecks   map[string]HealthCheck

	Gate         *authz.Gate
	Auth         *authhandler.Handler
	Registration *reghandler.Handler
	Tenants      *tenanthandler.Handler
	TenantPages  *tenanthandler.Pages
	TenantUsers  *authz.Handler
	User         *user.Handler
	RateLimit    *ratelimitmw.Middleware
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.LatencyMiddleware)
	}
	var observer resolver.DecisionObserver
	if d.Metrics != nil {
		observer = d.Metrics
	}
	r.Use(resolver.Middleware(d.Resolver, d.Logger, observer))

	r.Get("/healthz", healthHandler(d.HealthChecks))
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.TrustedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", request.HeaderRequestID},
			ExposedHeaders:   []string{request.HeaderRequestID, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		api.Use(request.ContentTypeJSON)

		d.Auth.Register(api, limit(d.RateLimit, ratelimitmodels.ClassAuth)...)
		d.Registration.Register(api, limit(d.RateLimit, ratelimitmodels.ClassRegistration)...)
		d.Tenants.Register(api, d.Gate.RequireSession)
		d.TenantUsers.Register(api)
		d.User.Register(api)
	})

	d.TenantPages.Register(r,
		d.Gate.RequireTenantMember(tenanthandler.BusinessSlug),
		authz.RequireRole(tenantmodels.RoleOwner, tenantmodels.RoleAdmin),
	)

	return r
}

func limit(m *ratelimitmw.Middleware, class ratelimitmodels.EndpointClass) []func(http.Handler) http.Handler {
	if m == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{m.RateLimit(class)}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
