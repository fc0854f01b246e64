package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"baiki/internal/audit"
	"baiki/internal/auth/device"
	"baiki/internal/auth/metrics"
	"baiki/internal/auth/models"
	jwttoken "baiki/internal/jwt_token"
	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/sentinel"
	"baiki/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

type RoleStore interface {
	EnsureRole(ctx context.Context, name models.PlatformRoleName, now time.Time) (*models.Role, error)
	AssignToUser(ctx context.Context, userID id.UserID, roleID id.RoleID, now time.Time) error
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Role, error)
}

type TokenService interface {
	GenerateSessionToken(userID id.UserID, sessionID id.SessionID, issuedAt, expiresAt time.Time) (string, error)
	ValidateToken(token string) (*jwttoken.Claims, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type Config struct {
	SessionTTL time.Duration
	BcryptCost int
}

// Service is the credential service: accounts, passwords and sessions.
type Service struct {
	users          UserStore
	sessions       SessionStore
	roles          RoleStore
	tokens         TokenService
	cfg            Config
	dummyHash      []byte
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(users UserStore, sessions SessionStore, roles RoleStore, tokens TokenService, cfg Config, opts ...Option) (*Service, error) {
	if users == nil || sessions == nil || roles == nil || tokens == nil {
		return nil, errors.New("auth service requires user, session and role stores and a token service")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}

	s := &Service{users: users, sessions: sessions, roles: roles, tokens: tokens, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	// Compared against when the email is unknown so both sign-in failures cost a bcrypt round.
	dummy, err := bcrypt.GenerateFromPassword([]byte("baiki-timing-equalizer"), cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	s.dummyHash = dummy
	return s, nil
}

// SignUp creates an account with the platform default role and opens a session.
func (s *Service) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.Result, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	s.observePasswordHash(start)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	user, err := models.NewUser(id.UserID(uuid.New()), req.Name, req.Email, string(hash), now)
	if err != nil {
		return nil, dErrors.InvariantAsValidation(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to create user")
	}

	if err := s.EnsureDefaultRole(ctx, user.ID); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{Action: audit.EventUserCreated, UserID: user.ID.String(), Email: user.Email})
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}

	return s.openSession(ctx, user)
}

// SignIn verifies the password and opens a session.
func (s *Service) SignIn(ctx context.Context, req *models.SignInRequest) (*models.Result, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load user")
	}

	hash := s.dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	start := time.Now()
	compareErr := bcrypt.CompareHashAndPassword(hash, []byte(req.Password))
	s.observePasswordHash(start)

	if user == nil || compareErr != nil {
		reason := "bad_password"
		if user == nil {
			reason = "unknown_email"
		}
		s.authFailure(ctx, reason, audit.Event{Email: req.Email})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	return s.openSession(ctx, user)
}

// ResolveSession maps a session token to the authenticated user. Absent, malformed,
// expired and revoked tokens are all unauthorized.
func (s *Service) ResolveSession(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		s.authFailure(ctx, "invalid_token", audit.Event{})
		return nil, err
	}
	userID, sessionID, err := claims.ParseIDs()
	if err != nil {
		s.authFailure(ctx, "invalid_claims", audit.Event{})
		return nil, err
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			s.authFailure(ctx, "session_inactive", audit.Event{UserID: userID.String()})
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired or revoked")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if session.UserID != userID {
		s.authFailure(ctx, "session_owner_mismatch", audit.Event{UserID: userID.String()})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if session.IsExpired(requestcontext.Now(ctx)) {
		s.authFailure(ctx, "session_expired", audit.Event{UserID: userID.String()})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired or revoked")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "user_missing", audit.Event{UserID: userID.String()})
			return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load user")
	}

	return &models.Identity{User: user, Session: session}, nil
}

// SignOut revokes the session behind the token. Tokens that no longer resolve are ignored.
func (s *Service) SignOut(ctx context.Context, token string) error {
	identity, err := s.ResolveSession(ctx, token)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil
		}
		return err
	}
	if err := s.sessions.Delete(ctx, identity.Session.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	s.emit(ctx, audit.Event{
		Action:  audit.EventSessionRevoked,
		UserID:  identity.User.ID.String(),
		Subject: identity.Session.ID.String(),
		Reason:  "user_initiated",
	})
	return nil
}

// FindUserByEmail looks an account up by its normalized email.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load user")
	}
	return user, nil
}

func (s *Service) FindUserByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load user")
	}
	return user, nil
}

// SeedPlatformRoles makes sure every platform role exists.
func (s *Service) SeedPlatformRoles(ctx context.Context) error {
	now := requestcontext.Now(ctx)
	for _, name := range models.PlatformRoles {
		if _, err := s.roles.EnsureRole(ctx, name, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeDatabase, "failed to seed platform roles")
		}
	}
	return nil
}

// EnsureDefaultRole assigns the default platform role to the user. Repeated calls are no-ops.
func (s *Service) EnsureDefaultRole(ctx context.Context, userID id.UserID) error {
	now := requestcontext.Now(ctx)
	role, err := s.roles.EnsureRole(ctx, models.DefaultPlatformRole, now)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load default role")
	}
	if err := s.roles.AssignToUser(ctx, userID, role.ID, now); err != nil {
		if errors.Is(err, sentinel.ErrInvalidReference) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeDatabase, "failed to assign default role")
	}
	return nil
}

// PrimaryPlatformRole is the user's earliest assigned platform role, or the
// default role when none is assigned.
func (s *Service) PrimaryPlatformRole(ctx context.Context, userID id.UserID) (models.PlatformRoleName, error) {
	roles, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load user roles")
	}
	if len(roles) == 0 {
		return models.DefaultPlatformRole, nil
	}
	return roles[0].Name, nil
}

func (s *Service) openSession(ctx context.Context, user *models.User) (*models.Result, error) {
	now := requestcontext.Now(ctx)
	userAgent := requestcontext.UserAgent(ctx)
	session := &models.Session{
		ID:         id.SessionID(uuid.New()),
		UserID:     user.ID,
		DeviceName: device.ParseUserAgent(userAgent),
		IPAddress:  requestcontext.ClientIP(ctx),
		UserAgent:  userAgent,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.SessionTTL),
	}

	token, err := s.tokens.GenerateSessionToken(user.ID, session.ID, now, session.ExpiresAt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store session")
	}

	s.emit(ctx, audit.Event{
		Action:  audit.EventSessionCreated,
		UserID:  user.ID.String(),
		Subject: session.ID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementSessionsCreated()
	}

	return &models.Result{User: user, Session: session, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *Service) authFailure(ctx context.Context, reason string, event audit.Event) {
	s.logger.WarnContext(ctx, "authentication failed",
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementAuthFailure(reason)
	}
	event.Action = audit.EventAuthFailed
	event.Reason = reason
	s.emit(ctx, event)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	s.auditPublisher.Emit(ctx, event)
}

func (s *Service) observePasswordHash(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObservePasswordHash(start)
	}
}
