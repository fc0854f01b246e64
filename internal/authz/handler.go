package authz

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	tenantmodels "baiki/internal/tenant/models"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/httputil"
	"baiki/pkg/platform/middleware/request"
)

// Handler exposes the caller's tenant context.
type Handler struct {
	gate   *Gate
	logger *slog.Logger
}

func NewHandler(gate *Gate, logger *slog.Logger) *Handler {
	return &Handler{gate: gate, logger: logger}
}

// Register mounts GET /tenantUsers/context behind RequireSession.
func (h *Handler) Register(r chi.Router) {
	r.With(h.gate.RequireSession).Get("/tenantUsers/context", h.HandleContext)
}

type contextResponse struct {
	User       tenantmodels.ContextUser `json:"user"`
	Tenant     tenantmodels.Summary     `json:"tenant"`
	RedirectTo string                   `json:"redirectTo"`
}

// HandleContext returns the membership for ?tenantSlug=, or the primary
// membership when the parameter is absent.
func (h *Handler) HandleContext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var (
		tuc *tenantmodels.TenantUserContext
		err error
	)
	if slug := strings.TrimSpace(r.URL.Query().Get("tenantSlug")); slug != "" {
		tuc, err = h.gate.AuthorizeIdentity(ctx, identity, slug)
	} else {
		tuc, err = h.gate.PrimaryContext(ctx, identity)
	}
	if err != nil {
		if httputil.StatusFor(err) >= http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "failed to load tenant context", "error", err, "request_id", request.GetRequestID(ctx))
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, contextResponse{
		User:       tuc.User,
		Tenant:     tuc.Tenant,
		RedirectTo: TenantRedirect(tuc),
	})
}

// TenantRedirect is the absolute path of the member's landing page inside their tenant.
func TenantRedirect(tuc *tenantmodels.TenantUserContext) string {
	route := LandingRoute(tuc.Role())
	if route == "/" {
		return "/" + tuc.Tenant.Slug
	}
	return "/" + tuc.Tenant.Slug + route
}
