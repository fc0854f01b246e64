package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"jane@example.com", "a.b+c@sub.example.co"}
	invalid := []string{"", "jane", "jane@", "@example.com", "Jane <jane@example.com>", "jane@localhost"}
	for _, e := range valid {
		assert.True(t, ValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, ValidEmail(e), e)
	}
}

func TestSignUpRequestValidate(t *testing.T) {
	req := &SignUpRequest{Name: " J ", Email: " JANE@Example.com ", Password: "12345"}
	req.Normalize()
	assert.Equal(t, "jane@example.com", req.Email)

	err := req.Validate()
	require.Error(t, err)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, dErrors.CodeValidation, de.Code)
	assert.Equal(t, map[string]string{
		"name":     "must be at least 2 characters",
		"password": "must be at least 6 characters",
	}, de.Details)

	ok2 := &SignUpRequest{Name: "Jane", Email: "jane@example.com", Password: "secret"}
	assert.NoError(t, ok2.Validate())
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(id.UserID(uuid.New()), " Jane ", "Jane@Example.com", "hash", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)
	assert.Equal(t, "jane@example.com", u.Email)

	_, err = NewUser(id.UserID(uuid.New()), "Jane", "nope", "hash", time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestSessionExpiry(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, s.IsExpired(now))
	assert.True(t, s.IsExpired(now.Add(time.Minute)))
}
