package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"baiki/internal/registration/models"
	"baiki/pkg/platform/httputil"
	"baiki/pkg/platform/middleware/auth"
	"baiki/pkg/platform/middleware/request"
)

type Service interface {
	Register(ctx context.Context, req *models.Request) (*models.Result, error)
}

// Handler serves business-owner registration.
type Handler struct {
	service        Service
	logger         *slog.Logger
	cookie         auth.CookieOptions
	trustedOrigins []string
}

func New(service Service, logger *slog.Logger, cookie auth.CookieOptions, trustedOrigins []string) *Handler {
	return &Handler{
		service:        service,
		logger:         logger,
		cookie:         cookie,
		trustedOrigins: trustedOrigins,
	}
}

func (h *Handler) Register(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middlewares...)
		r.Use(auth.RequireTrustedOrigin(h.trustedOrigins))
		r.Post("/registration", h.HandleRegister)
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.Request
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Register(ctx, &req)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, result.ExpiresAt, h.cookie)
	httputil.WriteJSON(w, http.StatusCreated, result.Response())
}
