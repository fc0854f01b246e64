package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	authmodels "baiki/internal/auth/models"
	"baiki/internal/slug"
	tenantmodels "baiki/internal/tenant/models"
	dErrors "baiki/pkg/domain-errors"
)

// Business name bounds mirror the tenant name bounds.
const (
	MinBusinessNameLength = tenantmodels.MinNameLength
	MaxBusinessNameLength = tenantmodels.MaxNameLength
)

// Request is the body of POST /registration.
type Request struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	BusinessName string `json:"businessName"`
}

func (r *Request) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = authmodels.NormalizeEmail(r.Email)
	r.BusinessName = strings.TrimSpace(r.BusinessName)
}

func (r *Request) Validate() error {
	fields := map[string]string{}
	authmodels.ValidateName(fields, "name", r.Name)
	authmodels.ValidateEmail(fields, "email", r.Email)
	authmodels.ValidatePassword(fields, "password", r.Password)
	switch n := utf8.RuneCountInString(r.BusinessName); {
	case n < MinBusinessNameLength:
		fields["businessName"] = fmt.Sprintf("must be at least %d characters", MinBusinessNameLength)
	case n > MaxBusinessNameLength:
		fields["businessName"] = fmt.Sprintf("must be %d characters or less", MaxBusinessNameLength)
	case slug.Normalize(r.BusinessName) == "":
		fields["businessName"] = "must contain at least one letter or digit"
	}
	if len(fields) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid registration request", fields)
	}
	return nil
}

// Result is a completed registration: the new owner, their business and session.
type Result struct {
	User      *authmodels.User
	Tenant    *tenantmodels.Tenant
	Role      tenantmodels.Role
	Token     string
	ExpiresAt time.Time
}

type UserView struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Email string            `json:"email"`
	Role  tenantmodels.Role `json:"role"`
}

type Response struct {
	User   UserView             `json:"user"`
	Tenant tenantmodels.Summary `json:"tenant"`
	Token  string               `json:"token"`
}

func (r *Result) Response() Response {
	return Response{
		User: UserView{
			ID:    r.User.ID.String(),
			Name:  r.User.Name,
			Email: r.User.Email,
			Role:  r.Role,
		},
		Tenant: r.Tenant.Summary(),
		Token:  r.Token,
	}
}
