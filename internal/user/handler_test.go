package user

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
	"golang.org/x/crypto/bcrypt"

	authmodels "baiki/internal/auth/models"
	authservice "baiki/internal/auth/service"
	rolestore "baiki/internal/auth/store/role"
	sessionstore "baiki/internal/auth/store/session"
	userstore "baiki/internal/auth/store/user"
	"baiki/internal/authz"
	jwttoken "baiki/internal/jwt_token"
	tenantmodels "baiki/internal/tenant/models"
	tenantservice "baiki/internal/tenant/service"
	tenantstore "baiki/internal/tenant/store/tenant"
	tenantuserstore "baiki/internal/tenant/store/tenantuser"
	"baiki/pkg/testutil"
)

func TestMe(t *testing.T) {
	ctx := context.Background()
	auth, err := authservice.New(userstore.New(), sessionstore.New(), rolestore.New(),
		jwttoken.NewJWTService("me-test-key", "baiki", "baiki-web"),
		authservice.Config{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	tenants := tenantservice.NewTenantService(tenantstore.NewInMemory())
	tenantUsers := tenantservice.NewTenantUserService(tenantuserstore.NewInMemory(), tenants)
	gate := authz.NewGate(auth, tenantUsers)

	owner, err := auth.SignUp(ctx, &authmodels.SignUpRequest{Name: "Yaw", Email: "yaw@example.com", Password: "hunter22"})
	require.NoError(t, err)
	loner, err := auth.SignUp(ctx, &authmodels.SignUpRequest{Name: "Abena", Email: "abena@example.com", Password: "hunter22"})
	require.NoError(t, err)

	shop, err := tenants.CreateTenant(ctx, &tenantmodels.CreateTenantRequest{Name: "Yaw Fix", Slug: "yaw-fix", CreatedBy: owner.User.ID.String()})
	require.NoError(t, err)
	_, err = tenantUsers.CreateTenantUser(ctx, &tenantmodels.CreateTenantUserRequest{
		TenantID: shop.ID.String(), UserID: owner.User.ID.String(), Role: tenantmodels.RoleOwner,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(gate, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)

	me := func(token string, body MeRequest) *http.Request {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/user/me", body)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req
	}

	t.Run("own profile with business", func(t *testing.T) {
		rec := testutil.DoRequest(r, me(owner.Token, MeRequest{ID: owner.User.ID.String(), Email: "yaw@example.com", Name: "Yaw"}))
		testutil.AssertStatusOK(t, rec)
		resp := testutil.UnmarshalResponse[MeResponse](t, rec)
		assert.Equal(t, "yaw@example.com", resp.User.Email)
		assert.Equal(t, "yaw-fix", resp.Tenant.Slug)
	})

	t.Run("someone else's id is forbidden", func(t *testing.T) {
		rec := testutil.DoRequest(r, me(owner.Token, MeRequest{ID: uuid.NewString(), Email: "x@example.com", Name: "X"}))
		testutil.AssertStatusAndError(t, rec, http.StatusForbidden, "FORBIDDEN")
	})

	t.Run("no session", func(t *testing.T) {
		rec := testutil.DoRequest(r, me("", MeRequest{ID: owner.User.ID.String(), Email: "yaw@example.com"}))
		testutil.AssertStatusAndError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
	})

	t.Run("user without a business", func(t *testing.T) {
		rec := testutil.DoRequest(r, me(loner.Token, MeRequest{ID: loner.User.ID.String(), Email: "abena@example.com", Name: "Abena"}))
		testutil.AssertStatusAndError(t, rec, http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("malformed email", func(t *testing.T) {
		rec := testutil.DoRequest(r, me(owner.Token, MeRequest{ID: owner.User.ID.String(), Email: "nope"}))
		testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
	})
}
