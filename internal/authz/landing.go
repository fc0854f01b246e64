package authz

import (
	authmodels "baiki/internal/auth/models"
	tenantmodels "baiki/internal/tenant/models"
)

var tenantLanding = map[tenantmodels.Role]string{
	tenantmodels.RoleOwner:      "/admin",
	tenantmodels.RoleAdmin:      "/admin",
	tenantmodels.RoleStaff:      "/",
	tenantmodels.RoleTechnician: "/jobs",
}

// LandingRoute is the tenant-relative path a member lands on. Unknown roles land on "/".
func LandingRoute(role tenantmodels.Role) string {
	if route, ok := tenantLanding[role]; ok {
		return route
	}
	return "/"
}

var platformLanding = map[authmodels.PlatformRoleName]string{
	authmodels.PlatformRolePlatform:   "/platform/dashboard",
	authmodels.PlatformRoleCustomer:   "/customer/home",
	authmodels.PlatformRoleTenant:     "/tenant/dashboard",
	authmodels.PlatformRoleOutlet:     "/outlet/dashboard",
	authmodels.PlatformRoleTechnician: "/technician/jobs",
	authmodels.PlatformRolePOS:        "/pos/sales",
}

// PlatformLandingRoute is where a platform role lands after sign-in.
func PlatformLandingRoute(role authmodels.PlatformRoleName) string {
	if route, ok := platformLanding[role]; ok {
		return route
	}
	return platformLanding[authmodels.DefaultPlatformRole]
}
