package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
)

func TestNewTenant(t *testing.T) {
	now := time.Now()
	owner := id.UserID(uuid.New())

	t.Run("defaults type and status", func(t *testing.T) {
		tenant, err := NewTenant(id.TenantID(uuid.New()), "  Acme Repairs ", "acme-repairs", "", "", owner, now)
		require.NoError(t, err)
		assert.Equal(t, "Acme Repairs", tenant.Name)
		assert.Equal(t, TenantTypeRepairShop, tenant.Type)
		assert.Equal(t, TenantStatusActive, tenant.Status)
		assert.True(t, tenant.IsActive())
		assert.Equal(t, Summary{ID: tenant.ID, Name: "Acme Repairs", Slug: "acme-repairs"}, tenant.Summary())
	})

	t.Run("name bounds count runes", func(t *testing.T) {
		for _, name := range []string{"Éa", "日本", strings.Repeat("é", MaxNameLength)} {
			_, err := NewTenant(id.TenantID(uuid.New()), name, "ok", "", "", owner, now)
			assert.NoError(t, err, name)

			req := &CreateTenantRequest{Name: name, Slug: "ok", CreatedBy: owner.String()}
			req.Normalize()
			assert.NoError(t, req.Validate(), name)
		}
	})

	invalid := []struct {
		name    string
		tname   string
		slug    string
		ttype   TenantType
		creator id.UserID
	}{
		{name: "short name", tname: "A", slug: "a", creator: owner},
		{name: "single multibyte rune", tname: "é", slug: "e", creator: owner},
		{name: "long multibyte name", tname: strings.Repeat("é", MaxNameLength+1), slug: "e", creator: owner},
		{name: "empty slug", tname: "Acme", slug: "", creator: owner},
		{name: "missing creator", tname: "Acme", slug: "acme"},
		{name: "unknown type", tname: "Acme", slug: "acme", ttype: "SPACESHIP", creator: owner},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTenant(id.TenantID(uuid.New()), tc.tname, tc.slug, tc.ttype, "", tc.creator, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestRoleOutranks(t *testing.T) {
	assert.True(t, RoleOwner.Outranks(RoleAdmin))
	assert.True(t, RoleAdmin.Outranks(RoleTechnician))
	assert.False(t, RoleStaff.Outranks(RoleAdmin))
	assert.False(t, RoleOwner.Outranks(RoleOwner))
	assert.True(t, RoleTechnician.Outranks(Role("GUEST")))
	assert.False(t, Role("GUEST").Outranks(RoleTechnician))
}

func TestCreateTenantUserRequestValidate(t *testing.T) {
	req := &CreateTenantUserRequest{TenantID: "nope", UserID: uuid.NewString(), Role: " owner "}
	req.Normalize()
	assert.Equal(t, RoleOwner, req.Role)

	err := req.Validate()
	require.Error(t, err)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, dErrors.CodeValidation, de.Code)
	assert.Equal(t, map[string]string{"tenantId": "must be a valid tenant id"}, de.Details)
}

func TestCreateTenantRequestValidate(t *testing.T) {
	req := &CreateTenantRequest{Name: "Acme", Slug: " ACME ", CreatedBy: uuid.NewString()}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "acme", req.Slug)

	bad := &CreateTenantRequest{Name: "A", Type: "BOAT"}
	err := bad.Validate()
	require.Error(t, err)
	de, _ := dErrors.As(err)
	assert.Len(t, de.Details, 4)
}
