package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"baiki/internal/slug"
	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
)

// FieldErrors maps request field names to validation messages.
type FieldErrors map[string]string

// Err returns a VALIDATION_ERROR carrying the field messages, or nil when empty.
func (f FieldErrors) Err(msg string) error {
	if len(f) == 0 {
		return nil
	}
	return dErrors.WithDetails(dErrors.CodeValidation, msg, map[string]string(f))
}

// CreateTenantRequest is the body of POST /tenants.
type CreateTenantRequest struct {
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Type      TenantType   `json:"type,omitempty"`
	Status    TenantStatus `json:"status,omitempty"`
	CreatedBy string       `json:"createdBy"`
}

func (r *CreateTenantRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	r.CreatedBy = strings.TrimSpace(r.CreatedBy)
}

func (r *CreateTenantRequest) Validate() error {
	fields := FieldErrors{}
	switch n := utf8.RuneCountInString(r.Name); {
	case n < MinNameLength:
		fields["name"] = fmt.Sprintf("must be at least %d characters", MinNameLength)
	case n > MaxNameLength:
		fields["name"] = fmt.Sprintf("must be %d characters or less", MaxNameLength)
	}
	switch {
	case r.Slug == "":
		fields["slug"] = "is required"
	case !slug.Valid(r.Slug):
		fields["slug"] = "must be lowercase letters and digits separated by single hyphens"
	}
	if r.Type != "" && !r.Type.IsValid() {
		fields["type"] = "is not a known tenant type"
	}
	if r.Status != "" && !r.Status.IsValid() {
		fields["status"] = "is not a known tenant status"
	}
	if _, err := id.ParseUserID(r.CreatedBy); err != nil {
		fields["createdBy"] = "must be a valid user id"
	}
	return fields.Err("invalid tenant request")
}

// CreateTenantUserRequest is the body of POST /tenantUsers.
type CreateTenantUserRequest struct {
	TenantID string `json:"tenantId"`
	UserID   string `json:"userId"`
	Role     Role   `json:"role"`
}

func (r *CreateTenantUserRequest) Normalize() {
	r.TenantID = strings.TrimSpace(r.TenantID)
	r.UserID = strings.TrimSpace(r.UserID)
	r.Role = Role(strings.ToUpper(strings.TrimSpace(string(r.Role))))
}

func (r *CreateTenantUserRequest) Validate() error {
	fields := FieldErrors{}
	if _, err := id.ParseTenantID(r.TenantID); err != nil {
		fields["tenantId"] = "must be a valid tenant id"
	}
	if _, err := id.ParseUserID(r.UserID); err != nil {
		fields["userId"] = "must be a valid user id"
	}
	if !r.Role.IsValid() {
		fields["role"] = "must be one of OWNER, ADMIN, STAFF, TECHNICIAN"
	}
	return fields.Err("invalid tenant user request")
}
