// Package user serves the signed-in user's profile together with their business.
package user

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmodels "baiki/internal/auth/models"
	"baiki/internal/authz"
	tenantmodels "baiki/internal/tenant/models"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/httputil"
	"baiki/pkg/platform/middleware/request"
)

// MeRequest is the body of POST /user/me.
type MeRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (r *MeRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Email = authmodels.NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

func (r *MeRequest) Validate() error {
	fields := map[string]string{}
	if r.ID == "" {
		fields["id"] = "is required"
	}
	authmodels.ValidateEmail(fields, "email", r.Email)
	if len(fields) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid user request", fields)
	}
	return nil
}

type meUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MeResponse pairs the user with their primary business.
type MeResponse struct {
	User   meUser               `json:"user"`
	Tenant tenantmodels.Summary `json:"tenant"`
}

type Handler struct {
	gate   *authz.Gate
	logger *slog.Logger
}

func NewHandler(gate *authz.Gate, logger *slog.Logger) *Handler {
	return &Handler{gate: gate, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.With(h.gate.RequireSession).Post("/user/me", h.HandleMe)
}

// HandleMe answers for the session user only; a body naming anyone else is forbidden.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := authz.IdentityFromContext(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req MeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.ID != identity.User.ID.String() {
		h.logger.WarnContext(ctx, "profile request for another user",
			"user_id", identity.User.ID.String(),
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "you can only read your own profile"))
		return
	}

	tuc, err := h.gate.PrimaryContext(ctx, identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, MeResponse{
		User: meUser{
			ID:    identity.User.ID.String(),
			Name:  identity.User.Name,
			Email: identity.User.Email,
		},
		Tenant: tuc.Tenant,
	})
}
