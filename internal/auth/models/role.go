package models

import (
	"time"

	id "baiki/pkg/domain"
)

// PlatformRoleName is a platform-wide role, distinct from a per-tenant role.
type PlatformRoleName string

const (
	PlatformRolePlatform   PlatformRoleName = "PLATFORM"
	PlatformRoleCustomer   PlatformRoleName = "CUSTOMER"
	PlatformRoleTenant     PlatformRoleName = "TENANT"
	PlatformRoleOutlet     PlatformRoleName = "OUTLET"
	PlatformRoleTechnician PlatformRoleName = "TECHNICIAN"
	PlatformRolePOS        PlatformRoleName = "POS"
)

// DefaultPlatformRole is assigned to every new account.
const DefaultPlatformRole = PlatformRoleCustomer

// PlatformRoles lists every role seeded at startup.
var PlatformRoles = []PlatformRoleName{
	PlatformRolePlatform,
	PlatformRoleCustomer,
	PlatformRoleTenant,
	PlatformRoleOutlet,
	PlatformRoleTechnician,
	PlatformRolePOS,
}

type Role struct {
	ID        id.RoleID        `json:"id"`
	Name      PlatformRoleName `json:"name"`
	CreatedAt time.Time        `json:"createdAt"`
}
