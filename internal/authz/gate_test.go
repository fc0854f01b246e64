package authz

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	authmodels "baiki/internal/auth/models"
	authservice "baiki/internal/auth/service"
	rolestore "baiki/internal/auth/store/role"
	sessionstore "baiki/internal/auth/store/session"
	userstore "baiki/internal/auth/store/user"
	jwttoken "baiki/internal/jwt_token"
	tenantmodels "baiki/internal/tenant/models"
	tenantservice "baiki/internal/tenant/service"
	tenantstore "baiki/internal/tenant/store/tenant"
	tenantuserstore "baiki/internal/tenant/store/tenantuser"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/testutil"
)

type GateSuite struct {
	suite.Suite
	ctx         context.Context
	gate        *Gate
	tenantUsers *tenantservice.TenantUserService
	acme        *tenantmodels.Tenant
	ownerToken  string
	techToken   string
	outsider    string
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	auth, err := authservice.New(userstore.New(), sessionstore.New(), rolestore.New(),
		jwttoken.NewJWTService("gate-test-key", "baiki", "baiki-web"),
		authservice.Config{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost})
	s.Require().NoError(err)

	tenants := tenantservice.NewTenantService(tenantstore.NewInMemory(), tenantservice.WithUserLookup(auth))
	s.tenantUsers = tenantservice.NewTenantUserService(tenantuserstore.NewInMemory(), tenants, tenantservice.WithUserLookup(auth))
	s.gate = NewGate(auth, s.tenantUsers, WithLogger(logger))

	owner := s.signUp(auth, "Owner", "owner@example.com")
	tech := s.signUp(auth, "Tech", "tech@example.com")
	outsider := s.signUp(auth, "Outsider", "outsider@example.com")
	s.ownerToken, s.techToken, s.outsider = owner.Token, tech.Token, outsider.Token

	s.acme, err = tenants.CreateTenant(s.ctx, &tenantmodels.CreateTenantRequest{
		Name: "Acme Repairs", Slug: "acme", CreatedBy: owner.User.ID.String(),
	})
	s.Require().NoError(err)
	s.addMember(owner.User, tenantmodels.RoleOwner)
	s.addMember(tech.User, tenantmodels.RoleTechnician)
}

func (s *GateSuite) signUp(auth *authservice.Service, name, email string) *authmodels.Result {
	result, err := auth.SignUp(s.ctx, &authmodels.SignUpRequest{Name: name, Email: email, Password: "hunter22"})
	s.Require().NoError(err)
	return result
}

func (s *GateSuite) addMember(user *authmodels.User, role tenantmodels.Role) {
	_, err := s.tenantUsers.CreateTenantUser(s.ctx, &tenantmodels.CreateTenantUserRequest{
		TenantID: s.acme.ID.String(), UserID: user.ID.String(), Role: role,
	})
	s.Require().NoError(err)
}

func (s *GateSuite) TestAuthorizeOrder() {
	cases := []struct {
		name   string
		token  string
		tenant string
		code   dErrors.Code
	}{
		{"no token", "", "acme", dErrors.CodeUnauthorized},
		{"garbage token", "not-a-jwt", "acme", dErrors.CodeUnauthorized},
		{"session is checked before tenant", "", "missing", dErrors.CodeUnauthorized},
		{"unknown tenant", s.ownerToken, "missing", dErrors.CodeNotFound},
		{"tenant exists but caller is not a member", s.outsider, "acme", dErrors.CodeForbidden},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.gate.Authorize(s.ctx, tc.token, tc.tenant)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, tc.code), "want %s, got %v", tc.code, err)
		})
	}
}

func (s *GateSuite) TestAuthorizeMember() {
	s.Run("by slug", func() {
		tuc, err := s.gate.Authorize(s.ctx, s.ownerToken, "acme")
		s.Require().NoError(err)
		s.Equal(tenantmodels.RoleOwner, tuc.Role())
		s.Equal("owner@example.com", tuc.User.Email)
		s.Equal(s.acme.Summary(), tuc.Tenant)
	})

	s.Run("by id", func() {
		tuc, err := s.gate.Authorize(s.ctx, s.techToken, s.acme.ID.String())
		s.Require().NoError(err)
		s.Equal(tenantmodels.RoleTechnician, tuc.Role())
	})
}

func (s *GateSuite) router() http.Handler {
	r := chi.NewRouter()
	NewHandler(s.gate, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	r.Route("/{businessSlug}", func(r chi.Router) {
		r.Use(s.gate.RequireTenantMember(func(r *http.Request) string { return chi.URLParam(r, "businessSlug") }))
		r.Get("/jobs", func(w http.ResponseWriter, r *http.Request) {
			tuc, _ := TenantUserFromContext(r.Context())
			_, _ = w.Write([]byte(tuc.Role()))
		})
		r.With(RequireRole(tenantmodels.RoleOwner, tenantmodels.RoleAdmin)).
			Get("/admin", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	})
	return r
}

func (s *GateSuite) get(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (s *GateSuite) TestMiddleware() {
	router := s.router()

	s.Run("member reaches the page with typed context", func() {
		rec := s.get(router, "/acme/jobs", s.techToken)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("TECHNICIAN", rec.Body.String())
	})

	s.Run("anonymous caller is unauthorized", func() {
		testutil.AssertStatusAndError(s.T(), s.get(router, "/acme/jobs", ""), http.StatusUnauthorized, "UNAUTHORIZED")
	})

	s.Run("role guard rejects technicians from admin", func() {
		testutil.AssertStatusAndError(s.T(), s.get(router, "/acme/admin", s.techToken), http.StatusForbidden, "FORBIDDEN")
	})

	s.Run("role guard admits owners", func() {
		s.Equal(http.StatusNoContent, s.get(router, "/acme/admin", s.ownerToken).Code)
	})

	s.Run("outsider is forbidden", func() {
		testutil.AssertStatusAndError(s.T(), s.get(router, "/acme/jobs", s.outsider), http.StatusForbidden, "FORBIDDEN")
	})
}

func (s *GateSuite) TestContextEndpoint() {
	router := s.router()

	s.Run("primary membership with redirect", func() {
		rec := s.get(router, "/tenantUsers/context", s.ownerToken)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp contextResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal("acme", resp.Tenant.Slug)
		s.Equal(tenantmodels.RoleOwner, resp.User.Role)
		s.Equal("/acme/admin", resp.RedirectTo)
	})

	s.Run("explicit slug", func() {
		rec := s.get(router, "/tenantUsers/context?tenantSlug=acme", s.techToken)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp contextResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal("/acme/jobs", resp.RedirectTo)
	})

	s.Run("user without any business", func() {
		testutil.AssertStatusAndError(s.T(), s.get(router, "/tenantUsers/context", s.outsider), http.StatusNotFound, "NOT_FOUND")
	})

	s.Run("requires a session", func() {
		testutil.AssertStatusAndError(s.T(), s.get(router, "/tenantUsers/context", ""), http.StatusUnauthorized, "UNAUTHORIZED")
	})
}
