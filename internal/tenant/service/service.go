package service

import (
	"context"
	"errors"
	"log/slog"

	"baiki/internal/audit"
	authmodels "baiki/internal/auth/models"
	tenantmetrics "baiki/internal/tenant/metrics"
	"baiki/internal/tenant/models"
	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]*models.Tenant, error)
}

type TenantUserStore interface {
	Create(ctx context.Context, tenantUser *models.TenantUser) error
	FindByUserAndTenant(ctx context.Context, userID id.UserID, tenantID id.TenantID) (*models.TenantUser, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.TenantUser, error)
}

// UserLookup resolves account ids. Errors are already domain errors (NOT_FOUND on miss).
type UserLookup interface {
	FindUserByID(ctx context.Context, userID id.UserID) (*authmodels.User, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *tenantmetrics.Metrics
	users          UserLookup
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *tenantmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithUserLookup enables user existence checks before rows referencing a user are written.
func WithUserLookup(users UserLookup) Option {
	return func(c *serviceConfig) {
		c.users = users
	}
}

func newConfig(opts []Option) *serviceConfig {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}

func (c *serviceConfig) emit(ctx context.Context, event audit.Event) {
	if c.auditPublisher != nil {
		c.auditPublisher.Emit(ctx, event)
	}
}

func (c *serviceConfig) requireUser(ctx context.Context, userID id.UserID) error {
	if c.users == nil {
		return nil
	}
	_, err := c.users.FindUserByID(ctx, userID)
	return err
}

func wrapTenantErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "tenant not found")
	}
	if dErrors.IsTyped(err) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load tenant")
}
