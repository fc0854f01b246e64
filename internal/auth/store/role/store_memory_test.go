package role

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baiki/internal/auth/models"
	id "baiki/pkg/domain"
	"baiki/pkg/platform/sentinel"
)

func TestInMemoryRoleStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("EnsureRole is idempotent", func(t *testing.T) {
		store := New()
		first, err := store.EnsureRole(ctx, models.PlatformRoleCustomer, now)
		require.NoError(t, err)
		second, err := store.EnsureRole(ctx, models.PlatformRoleCustomer, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, now, second.CreatedAt)
	})

	t.Run("FindByName misses unknown roles", func(t *testing.T) {
		_, err := New().FindByName(ctx, models.PlatformRolePOS)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("assignments are idempotent and ordered", func(t *testing.T) {
		store := New()
		userID := id.UserID(uuid.New())
		customer, err := store.EnsureRole(ctx, models.PlatformRoleCustomer, now)
		require.NoError(t, err)
		tenant, err := store.EnsureRole(ctx, models.PlatformRoleTenant, now)
		require.NoError(t, err)

		require.NoError(t, store.AssignToUser(ctx, userID, customer.ID, now))
		require.NoError(t, store.AssignToUser(ctx, userID, tenant.ID, now.Add(time.Minute)))
		require.NoError(t, store.AssignToUser(ctx, userID, customer.ID, now.Add(2*time.Minute)))

		roles, err := store.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, roles, 2)
		assert.Equal(t, models.PlatformRoleCustomer, roles[0].Name)
		assert.Equal(t, models.PlatformRoleTenant, roles[1].Name)
	})

	t.Run("assigning an unknown role is an invalid reference", func(t *testing.T) {
		err := New().AssignToUser(ctx, id.UserID(uuid.New()), id.RoleID(uuid.New()), now)
		assert.ErrorIs(t, err, sentinel.ErrInvalidReference)
	})
}
