package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"baiki/internal/audit"
	authmodels "baiki/internal/auth/models"
	"baiki/internal/registration/metrics"
	"baiki/internal/registration/models"
	tenantmodels "baiki/internal/tenant/models"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

type CredentialService interface {
	SignUp(ctx context.Context, req *authmodels.SignUpRequest) (*authmodels.Result, error)
	FindUserByEmail(ctx context.Context, email string) (*authmodels.User, error)
}

type SlugGenerator interface {
	Generate(ctx context.Context, name string) (string, error)
}

type TenantService interface {
	CreateTenant(ctx context.Context, req *tenantmodels.CreateTenantRequest) (*tenantmodels.Tenant, error)
}

type TenantUserService interface {
	CreateTenantUser(ctx context.Context, req *tenantmodels.CreateTenantUserRequest) (*tenantmodels.TenantUser, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service registers a business owner: account, business and owner membership.
// The steps run strictly in order and are not compensated: a failure after the
// account exists leaves the account without a business.
type Service struct {
	credentials    CredentialService
	slugs          SlugGenerator
	tenants        TenantService
	tenantUsers    TenantUserService
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

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

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(credentials CredentialService, slugs SlugGenerator, tenants TenantService, tenantUsers TenantUserService, opts ...Option) *Service {
	s := &Service{
		credentials: credentials,
		slugs:       slugs,
		tenants:     tenants,
		tenantUsers: tenantUsers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("baiki/registration")
	}
	return s
}

// Register runs sign-up, user lookup, slug generation, tenant creation and
// owner membership. Typed errors from each step are returned unchanged.
func (s *Service) Register(ctx context.Context, req *models.Request) (*models.Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "registration.Register")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.finish(span, "rejected", start, err)
		return nil, err
	}

	signedUp, err := step(ctx, s.tracer, "sign_up", func(ctx context.Context) (*authmodels.Result, error) {
		return s.credentials.SignUp(ctx, &authmodels.SignUpRequest{Name: req.Name, Email: req.Email, Password: req.Password})
	})
	if err != nil {
		s.finish(span, "rejected", start, err)
		return nil, err
	}

	// From here on the account exists; every failure leaves it without a business.
	user, err := step(ctx, s.tracer, "find_user", func(ctx context.Context) (*authmodels.User, error) {
		return s.credentials.FindUserByEmail(ctx, req.Email)
	})
	if err != nil {
		return nil, s.incomplete(ctx, span, start, "find_user", signedUp.User.ID.String(), err)
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	slug, err := step(ctx, s.tracer, "generate_slug", func(ctx context.Context) (string, error) {
		return s.slugs.Generate(ctx, req.BusinessName)
	})
	if err != nil {
		return nil, s.incomplete(ctx, span, start, "generate_slug", user.ID.String(), err)
	}

	tenant, err := step(ctx, s.tracer, "create_tenant", func(ctx context.Context) (*tenantmodels.Tenant, error) {
		return s.tenants.CreateTenant(ctx, &tenantmodels.CreateTenantRequest{
			Name:      req.BusinessName,
			Slug:      slug,
			CreatedBy: user.ID.String(),
		})
	})
	if err != nil {
		return nil, s.incomplete(ctx, span, start, "create_tenant", user.ID.String(), err)
	}
	span.SetAttributes(attribute.String("tenant.id", tenant.ID.String()), attribute.String("tenant.slug", tenant.Slug))

	membership, err := step(ctx, s.tracer, "create_owner", func(ctx context.Context) (*tenantmodels.TenantUser, error) {
		return s.tenantUsers.CreateTenantUser(ctx, &tenantmodels.CreateTenantUserRequest{
			TenantID: tenant.ID.String(),
			UserID:   user.ID.String(),
			Role:     tenantmodels.RoleOwner,
		})
	})
	if err != nil {
		return nil, s.incomplete(ctx, span, start, "create_owner", user.ID.String(), err)
	}

	s.logger.InfoContext(ctx, "registration completed",
		"user_id", user.ID.String(),
		"tenant_id", tenant.ID.String(),
		"tenant_slug", tenant.Slug,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:   audit.EventRegistrationCompleted,
		UserID:   user.ID.String(),
		TenantID: tenant.ID.String(),
		Email:    user.Email,
		Subject:  tenant.Slug,
	})
	s.finish(span, "completed", start, nil)

	return &models.Result{
		User:      user,
		Tenant:    tenant,
		Role:      membership.Role,
		Token:     signedUp.Token,
		ExpiresAt: signedUp.ExpiresAt,
	}, nil
}

// step runs one registration step in its own span and normalizes untyped errors.
func step[T any](ctx context.Context, tracer trace.Tracer, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, "registration."+name)
	defer span.End()

	out, err := fn(ctx)
	if err != nil {
		if !dErrors.IsTyped(err) {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "registration failed")
		}
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func (s *Service) incomplete(ctx context.Context, span trace.Span, start time.Time, failedStep, userID string, err error) error {
	s.logger.WarnContext(ctx, "registration incomplete: account created without a business",
		"registration_incomplete", true,
		"failed_step", failedStep,
		"user_id", userID,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action: audit.EventRegistrationIncomplete,
		UserID: userID,
		Reason: failedStep,
	})
	span.SetAttributes(attribute.Bool("registration.incomplete", true))
	s.finish(span, "incomplete", start, err)
	return err
}

func (s *Service) finish(span trace.Span, outcome string, start time.Time, err error) {
	span.SetAttributes(attribute.String("registration.outcome", outcome))
	if err != nil {
		span.SetStatus(codes.Error, outcome)
	}
	if s.metrics != nil {
		s.metrics.ObserveOutcome(outcome, start)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher != nil {
		s.auditPublisher.Emit(ctx, event)
	}
}
