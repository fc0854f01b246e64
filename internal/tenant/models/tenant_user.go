package models

import (
	"time"

	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
)

// Role is a user's role within one tenant.
type Role string

const (
	RoleOwner      Role = "OWNER"
	RoleAdmin      Role = "ADMIN"
	RoleStaff      Role = "STAFF"
	RoleTechnician Role = "TECHNICIAN"
)

// rolePriority orders memberships when a user belongs to several tenants.
var rolePriority = map[Role]int{
	RoleOwner:      0,
	RoleAdmin:      1,
	RoleStaff:      2,
	RoleTechnician: 3,
}

func (r Role) IsValid() bool {
	_, ok := rolePriority[r]
	return ok
}

// Outranks reports whether r is preferred over other as a primary membership.
func (r Role) Outranks(other Role) bool {
	rp, ok := rolePriority[r]
	if !ok {
		return false
	}
	op, ok := rolePriority[other]
	if !ok {
		return true
	}
	return rp < op
}

// TenantUser links a user to a tenant with a role. (UserID, TenantID) is unique.
type TenantUser struct {
	ID        id.TenantUserID `json:"id"`
	TenantID  id.TenantID     `json:"tenantId"`
	UserID    id.UserID       `json:"userId"`
	Role      Role            `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func NewTenantUser(tenantUserID id.TenantUserID, tenantID id.TenantID, userID id.UserID, role Role, now time.Time) (*TenantUser, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant id is required")
	}
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user id is required")
	}
	if !role.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown tenant role %q", role)
	}
	return &TenantUser{
		ID:        tenantUserID,
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ContextUser is the user half of a TenantUserContext.
type ContextUser struct {
	ID    id.UserID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  Role      `json:"role"`
}

// TenantUserContext is a verified membership: who the user is, in which tenant, with which role.
type TenantUserContext struct {
	User   ContextUser `json:"user"`
	Tenant Summary     `json:"tenant"`
}

// Role is shorthand for the member's role in the tenant.
func (c *TenantUserContext) Role() Role {
	return c.User.Role
}
