package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"baiki/internal/audit"
	"baiki/internal/tenant/models"
	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/sentinel"
	"baiki/pkg/requestcontext"
)

// TenantUserService manages tenant memberships.
type TenantUserService struct {
	tenantUsers TenantUserStore
	tenants     *TenantService
	cfg         *serviceConfig
}

func NewTenantUserService(tenantUsers TenantUserStore, tenants *TenantService, opts ...Option) *TenantUserService {
	return &TenantUserService{tenantUsers: tenantUsers, tenants: tenants, cfg: newConfig(opts)}
}

// CreateTenantUser links a user to a tenant. The (user, tenant) pair is unique.
func (s *TenantUserService) CreateTenantUser(ctx context.Context, req *models.CreateTenantUserRequest) (*models.TenantUser, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	tenantID, err := id.ParseTenantID(req.TenantID)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.tenants.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	if err := s.cfg.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	tu, err := models.NewTenantUser(id.TenantUserID(uuid.New()), tenantID, userID, req.Role, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.InvariantAsValidation(err)
	}

	if err := s.tenantUsers.Create(ctx, tu); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeConflict, "user is already a member of this tenant")
		case errors.Is(err, sentinel.ErrInvalidReference):
			return nil, dErrors.New(dErrors.CodeNotFound, "tenant or user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to create tenant user")
	}

	s.cfg.emit(ctx, audit.Event{
		Action:   audit.EventTenantUserCreated,
		UserID:   userID.String(),
		TenantID: tenantID.String(),
		Subject:  string(tu.Role),
	})
	if s.cfg.metrics != nil {
		s.cfg.metrics.IncrementTenantUserCreated(string(tu.Role))
	}
	return tu, nil
}

// Membership resolves tenantRef (id or slug) and the user's membership in it.
// A missing tenant is NOT_FOUND; an existing tenant without membership is FORBIDDEN.
func (s *TenantUserService) Membership(ctx context.Context, userID id.UserID, tenantRef string) (*models.Tenant, *models.TenantUser, error) {
	tenant, err := s.tenants.ResolveTenant(ctx, tenantRef)
	if err != nil {
		return nil, nil, err
	}

	tu, err := s.tenantUsers.FindByUserAndTenant(ctx, userID, tenant.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.cfg.emit(ctx, audit.Event{
				Action:   audit.EventAccessDenied,
				UserID:   userID.String(),
				TenantID: tenant.ID.String(),
				Reason:   "not_a_member",
			})
			return nil, nil, dErrors.New(dErrors.CodeForbidden, "you do not have access to this business")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load tenant membership")
	}
	return tenant, tu, nil
}

// PrimaryMembership returns the user's preferred membership: highest role first,
// then the oldest. A user without memberships is NOT_FOUND.
func (s *TenantUserService) PrimaryMembership(ctx context.Context, userID id.UserID) (*models.Tenant, *models.TenantUser, error) {
	memberships, err := s.tenantUsers.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load tenant memberships")
	}
	if len(memberships) == 0 {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "user does not belong to any business")
	}
	tu := memberships[0]
	tenant, err := s.tenants.GetTenant(ctx, tu.TenantID)
	if err != nil {
		return nil, nil, err
	}
	return tenant, tu, nil
}
