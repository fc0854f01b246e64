package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"baiki/internal/audit"
	tenantmetrics "baiki/internal/tenant/metrics"
	"baiki/internal/tenant/models"
	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/sentinel"
	"baiki/pkg/requestcontext"
)

// TenantService manages businesses hosted on the platform.
type TenantService struct {
	tenants TenantStore
	cfg     *serviceConfig
	metrics *tenantmetrics.Metrics
}

func NewTenantService(tenants TenantStore, opts ...Option) *TenantService {
	cfg := newConfig(opts)
	return &TenantService{tenants: tenants, cfg: cfg, metrics: cfg.metrics}
}

// CreateTenant inserts a tenant. The slug must be unused; a collision is a conflict
// and is never retried with another slug.
func (s *TenantService) CreateTenant(ctx context.Context, req *models.CreateTenantRequest) (*models.Tenant, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	createdBy, err := id.ParseUserID(req.CreatedBy)
	if err != nil {
		return nil, err
	}
	if err := s.cfg.requireUser(ctx, createdBy); err != nil {
		return nil, err
	}

	t, err := models.NewTenant(id.TenantID(uuid.New()), req.Name, req.Slug, req.Type, req.Status, createdBy, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.InvariantAsValidation(err)
	}

	if err := s.tenants.Create(ctx, t); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeConflict, "tenant slug is already taken")
		case errors.Is(err, sentinel.ErrInvalidReference):
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to create tenant")
	}

	s.cfg.emit(ctx, audit.Event{
		Action:   audit.EventTenantCreated,
		UserID:   createdBy.String(),
		TenantID: t.ID.String(),
		Subject:  t.Slug,
	})
	s.incrementTenantCreated()
	return t, nil
}

// ListTenants returns every tenant, oldest first.
func (s *TenantService) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to list tenants")
	}
	return tenants, nil
}

func (s *TenantService) GetTenant(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, wrapTenantErr(err)
	}
	return tenant, nil
}

func (s *TenantService) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant slug is required")
	}
	tenant, err := s.tenants.FindBySlug(ctx, slug)
	if err != nil {
		return nil, wrapTenantErr(err)
	}
	return tenant, nil
}

// ResolveTenant finds a tenant by UUID id when ref parses as one, else by slug.
func (s *TenantService) ResolveTenant(ctx context.Context, ref string) (*models.Tenant, error) {
	start := time.Now()
	defer s.observeResolveTenant(start)

	ref = strings.TrimSpace(ref)
	if u, err := uuid.Parse(ref); err == nil && u != uuid.Nil {
		return s.GetTenant(ctx, id.TenantID(u))
	}
	return s.GetTenantBySlug(ctx, ref)
}

// SlugExists reports whether a tenant already uses slug.
func (s *TenantService) SlugExists(ctx context.Context, slug string) (bool, error) {
	exists, err := s.tenants.SlugExists(ctx, slug)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to check slug")
	}
	return exists, nil
}

func (s *TenantService) incrementTenantCreated() {
	if s.metrics != nil {
		s.metrics.IncrementTenantCreated()
	}
}

func (s *TenantService) observeResolveTenant(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveResolveTenant(start)
	}
}
