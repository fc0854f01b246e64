package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"baiki/internal/tenant/models"
	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/httputil"
	"baiki/pkg/platform/middleware/request"
	"baiki/pkg/requestcontext"
)

type TenantService interface {
	CreateTenant(ctx context.Context, req *models.CreateTenantRequest) (*models.Tenant, error)
	ListTenants(ctx context.Context) ([]*models.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	ResolveTenant(ctx context.Context, ref string) (*models.Tenant, error)
}

type TenantUserService interface {
	CreateTenantUser(ctx context.Context, req *models.CreateTenantUserRequest) (*models.TenantUser, error)
	Membership(ctx context.Context, userID id.UserID, tenantRef string) (*models.Tenant, *models.TenantUser, error)
}

// Handler serves the tenant and membership API.
type Handler struct {
	tenants     TenantService
	tenantUsers TenantUserService
	logger      *slog.Logger
}

func New(tenants TenantService, tenantUsers TenantUserService, logger *slog.Logger) *Handler {
	return &Handler{tenants: tenants, tenantUsers: tenantUsers, logger: logger}
}

// Register mounts the tenant routes. Writes go through requireSession.
func (h *Handler) Register(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Get("/tenants", h.HandleListTenants)
	r.Get("/tenants/{slug}", h.HandleGetTenant)
	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Post("/tenants", h.HandleCreateTenant)
		r.Post("/tenantUsers", h.HandleCreateTenantUser)
	})
}

type tenantListResponse struct {
	Tenants []*models.Tenant `json:"tenants"`
	Total   int              `json:"total"`
}

func (h *Handler) HandleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.ListTenants(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list tenants", err)
		return
	}
	if tenants == nil {
		tenants = []*models.Tenant{}
	}
	httputil.WriteJSON(w, http.StatusOK, tenantListResponse{Tenants: tenants, Total: len(tenants)})
}

func (h *Handler) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.GetTenantBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, "failed to get tenant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tenant)
}

func (h *Handler) HandleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTenantRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req.Normalize()
	if req.CreatedBy == "" {
		req.CreatedBy = userID.String()
	} else if creator, err := id.ParseUserID(req.CreatedBy); err == nil && creator != userID {
		h.fail(w, r, "tenant creator mismatch", dErrors.New(dErrors.CodeForbidden, "tenants can only be created for yourself"))
		return
	}

	tenant, err := h.tenants.CreateTenant(r.Context(), &req)
	if err != nil {
		h.fail(w, r, "failed to create tenant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tenant)
}

func (h *Handler) HandleCreateTenantUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTenantUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := h.authorizeGrant(r.Context(), &req); err != nil {
		h.fail(w, r, "membership grant rejected", err)
		return
	}

	tu, err := h.tenantUsers.CreateTenantUser(r.Context(), &req)
	if err != nil {
		h.fail(w, r, "failed to create tenant user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tu)
}

// authorizeGrant allows OWNER and ADMIN members to add members. Only an OWNER
// may grant OWNER. The tenant's creator counts as its OWNER so a tenant made
// through POST /tenants can take its first member.
func (h *Handler) authorizeGrant(ctx context.Context, req *models.CreateTenantUserRequest) error {
	callerID := requestcontext.UserID(ctx)
	if callerID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := req.Validate(); err != nil {
		return err
	}
	tenant, err := h.tenants.ResolveTenant(ctx, req.TenantID)
	if err != nil {
		return err
	}

	callerRole := models.RoleOwner
	if tenant.CreatedBy != callerID {
		_, tu, err := h.tenantUsers.Membership(ctx, callerID, tenant.ID.String())
		if err != nil {
			return err
		}
		callerRole = tu.Role
	}

	switch {
	case callerRole != models.RoleOwner && callerRole != models.RoleAdmin:
		return dErrors.New(dErrors.CodeForbidden, "only owners and admins can add members")
	case req.Role == models.RoleOwner && callerRole != models.RoleOwner:
		return dErrors.New(dErrors.CodeForbidden, "only owners can grant the OWNER role")
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	if httputil.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", request.GetRequestID(ctx))
	} else if de, ok := dErrors.As(err); ok {
		h.logger.WarnContext(ctx, msg, "code", de.Code, "request_id", request.GetRequestID(ctx))
	}
	httputil.WriteError(w, err)
}
