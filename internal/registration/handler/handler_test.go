package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmodels "baiki/internal/auth/models"
	"baiki/internal/registration/models"
	tenantmodels "baiki/internal/tenant/models"
	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/middleware/auth"
	"baiki/pkg/testutil"
)

type stubService func(ctx context.Context, req *models.Request) (*models.Result, error)

func (f stubService) Register(ctx context.Context, req *models.Request) (*models.Result, error) {
	return f(ctx, req)
}

func newRouter(svc Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, logger, auth.CookieOptions{Domain: ".baiki.test"}, []string{"http://baiki.test"})
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestRegister(t *testing.T) {
	userID := id.UserID(uuid.New())
	tenantID := id.TenantID(uuid.New())
	var received *models.Request
	router := newRouter(stubService(func(_ context.Context, req *models.Request) (*models.Result, error) {
		received = req
		return &models.Result{
			User:      &authmodels.User{ID: userID, Name: req.Name, Email: req.Email},
			Tenant:    &tenantmodels.Tenant{ID: tenantID, Name: req.BusinessName, Slug: "kwame-gadgets"},
			Role:      tenantmodels.RoleOwner,
			Token:     "session-token",
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}))

	req := testutil.NewJSONRequest(t, http.MethodPost, "/registration", map[string]string{
		"name": "Kwame", "email": "kwame@example.com", "password": "hunter22", "businessName": "Kwame Gadgets",
	})
	req.Header.Set("Origin", "http://baiki.test")
	rec := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rec, http.StatusCreated)
	require.NotNil(t, received)
	assert.Equal(t, "Kwame Gadgets", received.BusinessName)

	cookie := testutil.SessionCookie(t, rec)
	assert.Equal(t, "session-token", cookie.Value)
	assert.Equal(t, "baiki.test", cookie.Domain)

	resp := testutil.UnmarshalResponse[models.Response](t, rec)
	assert.Equal(t, userID.String(), resp.User.ID)
	assert.Equal(t, tenantmodels.RoleOwner, resp.User.Role)
	assert.Equal(t, tenantID, resp.Tenant.ID)
	assert.Equal(t, "kwame-gadgets", resp.Tenant.Slug)
}

func TestRegisterErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		origin     string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "email taken",
			err:        dErrors.New(dErrors.CodeConflict, "email is already registered"),
			body:       `{"name":"Kwame","email":"kwame@example.com","password":"hunter22","businessName":"Kwame Gadgets"}`,
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:       "validation",
			err:        dErrors.New(dErrors.CodeValidation, "invalid registration request"),
			body:       `{"name":"K"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "malformed body",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "untrusted origin",
			body:       `{}`,
			origin:     "https://evil.example",
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newRouter(stubService(func(context.Context, *models.Request) (*models.Result, error) {
				return nil, tc.err
			}))
			req := testutil.NewRequestWithBody(t, http.MethodPost, "/registration", tc.body)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := testutil.DoRequest(router, req)

			testutil.AssertStatusAndError(t, rec, tc.wantStatus, tc.wantCode)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}
