package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"baiki/internal/auth/models"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/httputil"
	"baiki/pkg/platform/middleware/auth"
	"baiki/pkg/platform/middleware/request"
)

// Service defines the credential operations exposed over HTTP.
type Service interface {
	SignUp(ctx context.Context, req *models.SignUpRequest) (*models.Result, error)
	SignIn(ctx context.Context, req *models.SignInRequest) (*models.Result, error)
	SignOut(ctx context.Context, token string) error
}

// Handler handles sign-up, sign-in and sign-out.
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

// Register mounts the credential routes. Extra middleware (rate limiting) wraps
// the credential-issuing routes only.
func (h *Handler) Register(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middlewares...)
		r.Use(auth.RequireTrustedOrigin(h.trustedOrigins))
		r.Post("/auth/signup", h.HandleSignUp)
		r.Post("/auth/signin", h.HandleSignIn)
	})
	r.Post("/auth/signout", h.HandleSignOut)
}

func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.SignUpRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.SignUp(ctx, &req)
	if err != nil {
		h.logFailure(ctx, "sign-up failed", err)
		httputil.WriteError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, result.ExpiresAt, h.cookie)
	httputil.WriteJSON(w, http.StatusCreated, result.Response())
}

func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.SignInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.SignIn(ctx, &req)
	if err != nil {
		h.logFailure(ctx, "sign-in failed", err)
		httputil.WriteError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, result.ExpiresAt, h.cookie)
	httputil.WriteJSON(w, http.StatusOK, result.Response())
}

func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.SignOut(ctx, auth.TokenFromRequest(r)); err != nil {
		h.logFailure(ctx, "sign-out failed", err)
		httputil.WriteError(w, err)
		return
	}
	auth.ClearSessionCookie(w, h.cookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if httputil.StatusFor(err) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	code := dErrors.CodeInternal
	if de, ok := dErrors.As(err); ok {
		code = de.Code
	}
	h.logger.Log(ctx, level, msg,
		"code", code,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
}
