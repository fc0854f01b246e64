package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"baiki/internal/tenant/models"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/httputil"
	"baiki/pkg/platform/middleware/request"
)

type tenantKey struct{}

// TenantFromContext returns the tenant loaded by RequireTenant.
func TenantFromContext(ctx context.Context) (*models.Tenant, bool) {
	t, ok := ctx.Value(tenantKey{}).(*models.Tenant)
	return t, ok
}

// Pages guards the tenant page tree /{businessSlug}/...
type Pages struct {
	tenants TenantService
	logger  *slog.Logger
	homeURL func(*http.Request) string
}

// NewPages creates the page gate. homeURL yields the platform root linked from the not-found page.
func NewPages(tenants TenantService, logger *slog.Logger, homeURL func(*http.Request) string) *Pages {
	return &Pages{tenants: tenants, logger: logger, homeURL: homeURL}
}

// Register mounts the page tree. adminGuards wrap /admin and everything below it.
func (p *Pages) Register(r chi.Router, adminGuards ...func(http.Handler) http.Handler) {
	r.Route("/{businessSlug}", func(r chi.Router) {
		r.Use(p.RequireTenant)
		r.Get("/", p.HandleTenantPage)
		r.Get("/*", p.HandleTenantPage)
		r.With(adminGuards...).Get("/admin", p.HandleTenantPage)
		r.With(adminGuards...).Get("/admin/*", p.HandleTenantPage)
	})
}

// BusinessSlug is the tenant slug from the page tree URL.
func BusinessSlug(r *http.Request) string {
	return chi.URLParam(r, "businessSlug")
}

// RequireTenant loads the tenant named by the businessSlug URL parameter and
// renders the not-found page when it does not exist.
func (p *Pages) RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tenant, err := p.tenants.GetTenantBySlug(ctx, BusinessSlug(r))
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				httputil.WriteNotFoundPage(w, p.homeURL(r))
				return
			}
			p.logger.ErrorContext(ctx, "failed to load tenant page", "error", err, "request_id", request.GetRequestID(ctx))
			httputil.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, tenantKey{}, tenant)))
	})
}

type tenantPageResponse struct {
	Tenant models.Summary `json:"tenant"`
	Path   string         `json:"path"`
}

func (p *Pages) HandleTenantPage(w http.ResponseWriter, r *http.Request) {
	tenant, ok := TenantFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "tenant missing from context"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tenantPageResponse{
		Tenant: tenant.Summary(),
		Path:   pagePath(r),
	})
}

func pagePath(r *http.Request) string {
	path := strings.TrimPrefix(r.URL.Path, "/"+BusinessSlug(r))
	if path == "" {
		return "/"
	}
	return path
}
