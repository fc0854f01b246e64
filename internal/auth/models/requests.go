package models

import (
	"strings"
	"time"

	dErrors "baiki/pkg/domain-errors"
)

const (
	MinNameLength     = 2
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit.
	MaxPasswordLength = 72
)

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignUpRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

func (r *SignUpRequest) Validate() error {
	fields := map[string]string{}
	ValidateName(fields, "name", r.Name)
	ValidateEmail(fields, "email", r.Email)
	ValidatePassword(fields, "password", r.Password)
	if len(fields) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid sign-up request", fields)
	}
	return nil
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignInRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *SignInRequest) Validate() error {
	fields := map[string]string{}
	ValidateEmail(fields, "email", r.Email)
	if r.Password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return dErrors.WithDetails(dErrors.CodeValidation, "invalid sign-in request", fields)
	}
	return nil
}

// ValidateName records a message under field when name is too short.
func ValidateName(fields map[string]string, field, name string) {
	if len([]rune(name)) < MinNameLength {
		fields[field] = "must be at least 2 characters"
	}
}

// ValidateEmail records a message under field when email is malformed.
func ValidateEmail(fields map[string]string, field, email string) {
	if !ValidEmail(email) {
		fields[field] = "must be a valid email address"
	}
}

// ValidatePassword records a message under field when password is out of bounds.
func ValidatePassword(fields map[string]string, field, password string) {
	switch {
	case len(password) < MinPasswordLength:
		fields[field] = "must be at least 6 characters"
	case len(password) > MaxPasswordLength:
		fields[field] = "must be at most 72 bytes"
	}
}

// AuthResponse is returned by sign-up and sign-in.
type AuthResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Result is a successful credential operation.
type Result struct {
	User      *User
	Session   *Session
	Token     string
	ExpiresAt time.Time
}

func (r *Result) Response() AuthResponse {
	return AuthResponse{
		ID:        r.User.ID.String(),
		Name:      r.User.Name,
		Email:     r.User.Email,
		Token:     r.Token,
		CreatedAt: r.User.CreatedAt,
		UpdatedAt: r.User.UpdatedAt,
	}
}
