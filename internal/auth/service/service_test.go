package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"baiki/internal/audit"
	auditmemory "baiki/internal/audit/store/memory"
	"baiki/internal/auth/models"
	"baiki/internal/auth/service/mocks"
	jwttoken "baiki/internal/jwt_token"
	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/sentinel"
	"baiki/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl             *gomock.Controller
	mockUserStore    *mocks.MockUserStore
	mockSessionStore *mocks.MockSessionStore
	mockRoleStore    *mocks.MockRoleStore
	mockTokens       *mocks.MockTokenService
	auditStore       *auditmemory.InMemoryStore
	service          *Service
	now              time.Time
	ctx              context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockUserStore = mocks.NewMockUserStore(s.ctrl)
	s.mockSessionStore = mocks.NewMockSessionStore(s.ctrl)
	s.mockRoleStore = mocks.NewMockRoleStore(s.ctrl)
	s.mockTokens = mocks.NewMockTokenService(s.ctrl)
	s.auditStore = auditmemory.NewInMemoryStore()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := New(s.mockUserStore, s.mockSessionStore, s.mockRoleStore, s.mockTokens,
		Config{SessionTTL: 24 * time.Hour, BcryptCost: bcrypt.MinCost},
		WithLogger(logger),
		WithAuditPublisher(audit.NewPublisher(s.auditStore, logger)),
	)
	s.Require().NoError(err)
	s.service = svc

	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) hashed(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	return string(hash)
}

func (s *ServiceSuite) TestNewRejectsMissingCollaborators() {
	_, err := New(nil, s.mockSessionStore, s.mockRoleStore, s.mockTokens, Config{SessionTTL: time.Hour})
	s.Error(err)

	_, err = New(s.mockUserStore, s.mockSessionStore, s.mockRoleStore, s.mockTokens, Config{})
	s.Error(err, "session TTL is required")
}

func (s *ServiceSuite) TestSignUp() {
	s.Run("invalid input is a validation error with field details", func() {
		_, err := s.service.SignUp(s.ctx, &models.SignUpRequest{Name: "J", Email: "nope", Password: "123"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		de, ok := dErrors.As(err)
		s.Require().True(ok)
		details, ok := de.Details.(map[string]string)
		s.Require().True(ok)
		s.Contains(details, "name")
		s.Contains(details, "email")
		s.Contains(details, "password")
	})

	s.Run("duplicate email is a conflict", func() {
		s.mockUserStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		_, err := s.service.SignUp(s.ctx, &models.SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("store failure is a database error", func() {
		s.mockUserStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := s.service.SignUp(s.ctx, &models.SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
		s.True(dErrors.HasCode(err, dErrors.CodeDatabase))
	})

	s.Run("creates the user, assigns the default role and opens a session", func() {
		roleID := id.RoleID(uuid.New())
		var created *models.User
		s.mockUserStore.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *models.User) error {
				created = u
				return nil
			})
		s.mockRoleStore.EXPECT().EnsureRole(gomock.Any(), models.PlatformRoleCustomer, s.now).
			Return(&models.Role{ID: roleID, Name: models.PlatformRoleCustomer}, nil)
		s.mockRoleStore.EXPECT().AssignToUser(gomock.Any(), gomock.Any(), roleID, s.now).Return(nil)
		s.mockTokens.EXPECT().GenerateSessionToken(gomock.Any(), gomock.Any(), s.now, s.now.Add(24*time.Hour)).
			Return("signed-token", nil)
		s.mockSessionStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		result, err := s.service.SignUp(s.ctx, &models.SignUpRequest{Name: " Jane ", Email: "Jane@Example.com", Password: "secret1"})
		s.Require().NoError(err)
		s.Equal("signed-token", result.Token)
		s.Equal("jane@example.com", result.User.Email)
		s.Equal("Jane", result.User.Name)
		s.Equal(created.ID, result.Session.UserID)
		s.Equal(s.now.Add(24*time.Hour), result.ExpiresAt)
		s.NoError(bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret1")))
		s.Contains(s.auditStore.Actions(), audit.EventUserCreated)
		s.Contains(s.auditStore.Actions(), audit.EventSessionCreated)
	})
}

func (s *ServiceSuite) TestSignIn() {
	user := &models.User{
		ID:           id.UserID(uuid.New()),
		Name:         "Jane",
		Email:        "jane@example.com",
		PasswordHash: s.hashed("secret1"),
	}

	s.Run("unknown email is unauthorized and audited", func() {
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").Return(nil, sentinel.ErrNotFound)

		_, err := s.service.SignIn(s.ctx, &models.SignInRequest{Email: "ghost@example.com", Password: "secret1"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Contains(s.auditStore.Actions(), audit.EventAuthFailed)
	})

	s.Run("wrong password is unauthorized", func() {
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(user, nil)

		_, err := s.service.SignIn(s.ctx, &models.SignInRequest{Email: "jane@example.com", Password: "wrong-one"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("correct password opens a session", func() {
		s.mockUserStore.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(user, nil)
		s.mockTokens.EXPECT().GenerateSessionToken(user.ID, gomock.Any(), s.now, gomock.Any()).Return("tok", nil)
		s.mockSessionStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		result, err := s.service.SignIn(s.ctx, &models.SignInRequest{Email: " JANE@example.com", Password: "secret1"})
		s.Require().NoError(err)
		s.Equal(user.ID, result.User.ID)
		s.Equal("tok", result.Token)
	})
}

func (s *ServiceSuite) TestResolveSession() {
	userID := id.UserID(uuid.New())
	sessionID := id.SessionID(uuid.New())
	claims := &jwttoken.Claims{UserID: userID.String(), SessionID: sessionID.String()}
	live := &models.Session{ID: sessionID, UserID: userID, ExpiresAt: s.now.Add(time.Hour)}

	s.Run("missing token is unauthorized", func() {
		_, err := s.service.ResolveSession(s.ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("invalid token is unauthorized", func() {
		s.mockTokens.EXPECT().ValidateToken("garbage").Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
		_, err := s.service.ResolveSession(s.ctx, "garbage")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("revoked session is unauthorized", func() {
		s.mockTokens.EXPECT().ValidateToken("tok").Return(claims, nil)
		s.mockSessionStore.EXPECT().FindByID(gomock.Any(), sessionID).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.ResolveSession(s.ctx, "tok")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("session owned by someone else is unauthorized", func() {
		s.mockTokens.EXPECT().ValidateToken("tok").Return(claims, nil)
		s.mockSessionStore.EXPECT().FindByID(gomock.Any(), sessionID).
			Return(&models.Session{ID: sessionID, UserID: id.UserID(uuid.New()), ExpiresAt: s.now.Add(time.Hour)}, nil)
		_, err := s.service.ResolveSession(s.ctx, "tok")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("session store outage is internal", func() {
		s.mockTokens.EXPECT().ValidateToken("tok").Return(claims, nil)
		s.mockSessionStore.EXPECT().FindByID(gomock.Any(), sessionID).Return(nil, errors.New("redis down"))
		_, err := s.service.ResolveSession(s.ctx, "tok")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("live session resolves to the user", func() {
		s.mockTokens.EXPECT().ValidateToken("tok").Return(claims, nil)
		s.mockSessionStore.EXPECT().FindByID(gomock.Any(), sessionID).Return(live, nil)
		s.mockUserStore.EXPECT().FindByID(gomock.Any(), userID).Return(&models.User{ID: userID, Name: "Jane"}, nil)

		identity, err := s.service.ResolveSession(s.ctx, "tok")
		s.Require().NoError(err)
		s.Equal(userID, identity.User.ID)
		s.Equal(sessionID, identity.Session.ID)
	})
}

func (s *ServiceSuite) TestSignOut() {
	s.Run("unresolvable token is a no-op", func() {
		s.mockTokens.EXPECT().ValidateToken("stale").Return(nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
		s.NoError(s.service.SignOut(s.ctx, "stale"))
	})
}

func (s *ServiceSuite) TestPrimaryPlatformRole() {
	userID := id.UserID(uuid.New())

	s.Run("defaults to CUSTOMER when nothing is assigned", func() {
		s.mockRoleStore.EXPECT().ListByUser(gomock.Any(), userID).Return(nil, nil)
		role, err := s.service.PrimaryPlatformRole(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(models.PlatformRoleCustomer, role)
	})

	s.Run("returns the earliest assigned role", func() {
		s.mockRoleStore.EXPECT().ListByUser(gomock.Any(), userID).
			Return([]*models.Role{{Name: models.PlatformRoleTenant}, {Name: models.PlatformRoleCustomer}}, nil)
		role, err := s.service.PrimaryPlatformRole(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(models.PlatformRoleTenant, role)
	})
}

func (s *ServiceSuite) TestSeedPlatformRoles() {
	s.mockRoleStore.EXPECT().EnsureRole(gomock.Any(), gomock.Any(), s.now).
		Return(&models.Role{}, nil).Times(len(models.PlatformRoles))
	s.NoError(s.service.SeedPlatformRoles(s.ctx))
}
