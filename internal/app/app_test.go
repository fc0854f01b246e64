package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"baiki/internal/platform/config"
	regmodels "baiki/internal/registration/models"
	"baiki/pkg/platform/middleware/auth"
	"baiki/pkg/testutil"
)

func testConfig() config.Config {
	return config.Config{
		Environment: "test",
		Tenancy: config.Tenancy{
			RootDomain:          "baiki.test",
			PassthroughPrefixes: []string{"/api", "/metrics", "/healthz", "/favicon.ico"},
		},
		Auth: config.Auth{
			JWTSigningKey:  "app-test-key",
			SessionTTL:     time.Hour,
			CookieDomain:   ".baiki.test",
			TrustedOrigins: []string{"http://baiki.test"},
			BcryptCost:     bcrypt.MinCost,
		},
		RateLimit: config.RateLimit{Enabled: true, Requests: 5, Window: time.Minute},
	}
}

type AppSuite struct {
	suite.Suite
	app *App
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := New(context.Background(), testConfig(), logger, prometheus.NewRegistry())
	s.Require().NoError(err)
	s.app = a
}

func (s *AppSuite) TearDownTest() {
	s.Require().NoError(s.app.Close(context.Background()))
}

func (s *AppSuite) do(method, url, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(req)
	}
	return testutil.DoRequest(s.app.Handler, req)
}

func withCookie(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
}

func (s *AppSuite) register(email, business string) regmodels.Response {
	rec := s.do(http.MethodPost, "http://baiki.test/api/registration",
		`{"name":"Kwame Asante","email":"`+email+`","password":"hunter22","businessName":"`+business+`"}`,
		func(r *http.Request) { r.Header.Set("Origin", "http://baiki.test") })
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return *testutil.UnmarshalResponse[regmodels.Response](s.T(), rec)
}

func (s *AppSuite) TestRegistrationToTenantWorkspace() {
	reg := s.register("kwame@example.com", "Kwame Gadgets")
	s.Equal("kwame-gadgets", reg.Tenant.Slug)
	s.Equal("OWNER", string(reg.User.Role))

	s.Run("tenant subdomain serves the tenant tree", func() {
		rec := s.do(http.MethodGet, "http://kwame-gadgets.baiki.test/jobs", "")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"slug":"kwame-gadgets"`)
		s.Contains(rec.Body.String(), `"path":"/jobs"`)
	})

	s.Run("admin pages require a member session", func() {
		rec := s.do(http.MethodGet, "http://kwame-gadgets.baiki.test/admin", "")
		testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, "UNAUTHORIZED")

		rec = s.do(http.MethodGet, "http://kwame-gadgets.baiki.test/admin", "", withCookie(reg.Token))
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"path":"/admin"`)
	})

	s.Run("unknown tenant subdomain renders the not-found page", func() {
		rec := s.do(http.MethodGet, "http://nobody.baiki.test/", "")
		s.Equal(http.StatusNotFound, rec.Code)
		s.Contains(rec.Body.String(), "http://baiki.test/")
	})

	s.Run("context endpoint sends the owner to admin", func() {
		rec := s.do(http.MethodGet, "http://baiki.test/api/tenantUsers/context?tenantSlug=kwame-gadgets", "", withCookie(reg.Token))
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"redirectTo":"/kwame-gadgets/admin"`)
	})

	s.Run("api is reachable from the tenant subdomain", func() {
		rec := s.do(http.MethodGet, "http://kwame-gadgets.baiki.test/api/tenants/kwame-gadgets", "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("me returns the primary business", func() {
		rec := s.do(http.MethodPost, "http://baiki.test/api/user/me",
			`{"id":"`+reg.User.ID+`","email":"kwame@example.com","name":"Kwame Asante"}`, withCookie(reg.Token))
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"slug":"kwame-gadgets"`)
	})

	s.Run("signed-out token no longer resolves", func() {
		rec := s.do(http.MethodPost, "http://baiki.test/api/auth/signout", "", withCookie(reg.Token))
		s.Require().Equal(http.StatusNoContent, rec.Code)
		rec = s.do(http.MethodGet, "http://baiki.test/api/tenantUsers/context", "", withCookie(reg.Token))
		testutil.AssertStatusAndError(s.T(), rec, http.StatusUnauthorized, "UNAUTHORIZED")
	})
}

func (s *AppSuite) TestSecondRegistrationWithSameEmailConflicts() {
	s.register("ama@example.com", "Fix It")

	rec := s.do(http.MethodPost, "http://baiki.test/api/registration",
		`{"name":"Ama","email":"ama@example.com","password":"hunter22","businessName":"Fix It Again"}`)
	testutil.AssertStatusAndError(s.T(), rec, http.StatusConflict, "CONFLICT")

	tenants, err := s.app.Tenants.ListTenants(context.Background())
	s.Require().NoError(err)
	s.Len(tenants, 1)
}

func (s *AppSuite) TestAdminPagesRejectOtherBusinesses() {
	s.register("kwame@example.com", "Kwame Gadgets")
	other := s.register("ama@example.com", "Fix It")

	rec := s.do(http.MethodGet, "http://kwame-gadgets.baiki.test/admin", "", withCookie(other.Token))
	testutil.AssertStatusAndError(s.T(), rec, http.StatusForbidden, "FORBIDDEN")
}

func (s *AppSuite) TestOutsiderCannotGrantThemselvesMembership() {
	victim := s.register("kwame@example.com", "Kwame Gadgets")
	mallory := s.register("ama@example.com", "Fix It")
	origin := func(r *http.Request) { r.Header.Set("Origin", "http://baiki.test") }

	rec := s.do(http.MethodPost, "http://baiki.test/api/tenantUsers",
		`{"tenantId":"`+victim.Tenant.ID.String()+`","userId":"`+mallory.User.ID+`","role":"OWNER"}`,
		withCookie(mallory.Token), origin)
	testutil.AssertStatusAndError(s.T(), rec, http.StatusForbidden, "FORBIDDEN")

	rec = s.do(http.MethodGet, "http://kwame-gadgets.baiki.test/admin", "", withCookie(mallory.Token))
	testutil.AssertStatusAndError(s.T(), rec, http.StatusForbidden, "FORBIDDEN")

	rec = s.do(http.MethodPost, "http://baiki.test/api/tenants",
		`{"name":"Kwame Two","slug":"kwame-two","createdBy":"`+victim.User.ID+`"}`,
		withCookie(mallory.Token), origin)
	testutil.AssertStatusAndError(s.T(), rec, http.StatusForbidden, "FORBIDDEN")
}

func (s *AppSuite) TestUnknownHostRedirectsToPlatform() {
	rec := s.do(http.MethodGet, "http://evil.example/steal", "")
	s.Equal(http.StatusTemporaryRedirect, rec.Code)
	s.Equal("http://baiki.test/", rec.Header().Get("Location"))
}

func (s *AppSuite) TestCredentialRoutesAreRateLimited() {
	var last *httptest.ResponseRecorder
	for range 6 {
		last = s.do(http.MethodPost, "http://baiki.test/api/auth/signin",
			`{"email":"nobody@example.com","password":"wrong-password"}`,
			func(r *http.Request) { r.Header.Set("X-Forwarded-For", "192.0.2.44") })
	}
	testutil.AssertStatusAndError(s.T(), last, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED")
}

func (s *AppSuite) TestOperationalEndpoints() {
	s.register("esi@example.com", "Esi Electronics")

	rec := s.do(http.MethodGet, "http://baiki.test/healthz", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"status":"ok"`)

	rec = s.do(http.MethodGet, "http://baiki.test/metrics", "")
	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, `baiki_registrations_total{outcome="completed"} 1`)
	s.Contains(body, "baiki_tenant_resolver_decisions_total")
}

func TestNewRejectsUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Redis = config.RedisConfig{URL: "redis://127.0.0.1:1/0", DialTimeout: 100 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}
