package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
)

// TenantStatus is the lifecycle state of a business.
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "ACTIVE"
	TenantStatusInactive TenantStatus = "INACTIVE"
)

func (s TenantStatus) IsValid() bool {
	return s == TenantStatusActive || s == TenantStatusInactive
}

// TenantType is the kind of repair business.
type TenantType string

const (
	TenantTypeRepairShop  TenantType = "REPAIR_SHOP"
	TenantTypeElectronics TenantType = "ELECTRONICS"
	TenantTypeAutomotive  TenantType = "AUTOMOTIVE"
	TenantTypeAppliance   TenantType = "APPLIANCE"
	TenantTypeOther       TenantType = "OTHER"
)

func (t TenantType) IsValid() bool {
	switch t {
	case TenantTypeRepairShop, TenantTypeElectronics, TenantTypeAutomotive, TenantTypeAppliance, TenantTypeOther:
		return true
	}
	return false
}

// Tenant is a business hosted on the platform, addressed by its slug.
//
// Invariants:
//   - Name is 2..128 characters after trimming
//   - Slug is non-empty and unique platform-wide (enforced by the store)
//   - CreatedBy references the user who registered the business
type Tenant struct {
	ID          id.TenantID  `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Type        TenantType   `json:"type"`
	Status      TenantStatus `json:"status"`
	CreatedBy   id.UserID    `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	OnboardedAt *time.Time   `json:"onboardedAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Summary is the tenant shape embedded in registration and context responses.
type Summary struct {
	ID   id.TenantID `json:"id"`
	Name string      `json:"name"`
	Slug string      `json:"slug"`
}

func (t *Tenant) Summary() Summary {
	return Summary{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

// Name bounds, counted in runes.
const (
	MinNameLength = 2
	MaxNameLength = 128
)

// NewTenant builds a tenant, defaulting type to REPAIR_SHOP and status to ACTIVE.
func NewTenant(tenantID id.TenantID, name, slug string, tenantType TenantType, status TenantStatus, createdBy id.UserID, now time.Time) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < MinNameLength {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "tenant name must be at least %d characters", MinNameLength)
	} else if n > MaxNameLength {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "tenant name must be %d characters or less", MaxNameLength)
	}
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant slug cannot be empty")
	}
	if createdBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant creator is required")
	}
	if tenantType == "" {
		tenantType = TenantTypeRepairShop
	}
	if !tenantType.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown tenant type %q", tenantType)
	}
	if status == "" {
		status = TenantStatusActive
	}
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown tenant status %q", status)
	}
	return &Tenant{
		ID:        tenantID,
		Name:      name,
		Slug:      slug,
		Type:      tenantType,
		Status:    status,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
