package tenantuser

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"baiki/internal/tenant/models"
	id "baiki/pkg/domain"
	"baiki/pkg/platform/sentinel"
)

type TenantUserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestTenantUserStoreSuite(t *testing.T) {
	suite.Run(t, new(TenantUserStoreSuite))
}

func (s *TenantUserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func membership(userID id.UserID, tenantID id.TenantID, role models.Role, at time.Time) *models.TenantUser {
	return &models.TenantUser{
		ID:        id.TenantUserID(uuid.New()),
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func (s *TenantUserStoreSuite) TestPairUniqueness() {
	userID, tenantID := id.UserID(uuid.New()), id.TenantID(uuid.New())
	s.Require().NoError(s.store.Create(s.ctx, membership(userID, tenantID, models.RoleOwner, time.Now())))

	err := s.store.Create(s.ctx, membership(userID, tenantID, models.RoleStaff, time.Now()))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	s.Run("same user in another tenant is allowed", func() {
		s.NoError(s.store.Create(s.ctx, membership(userID, id.TenantID(uuid.New()), models.RoleStaff, time.Now())))
	})
}

func (s *TenantUserStoreSuite) TestFindByUserAndTenant() {
	userID, tenantID := id.UserID(uuid.New()), id.TenantID(uuid.New())
	s.Require().NoError(s.store.Create(s.ctx, membership(userID, tenantID, models.RoleAdmin, time.Now())))

	found, err := s.store.FindByUserAndTenant(s.ctx, userID, tenantID)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, found.Role)

	_, err = s.store.FindByUserAndTenant(s.ctx, userID, id.TenantID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *TenantUserStoreSuite) TestListByUserOrdersByRole() {
	userID := id.UserID(uuid.New())
	base := time.Now()
	s.Require().NoError(s.store.Create(s.ctx, membership(userID, id.TenantID(uuid.New()), models.RoleTechnician, base)))
	s.Require().NoError(s.store.Create(s.ctx, membership(userID, id.TenantID(uuid.New()), models.RoleOwner, base.Add(time.Hour))))
	s.Require().NoError(s.store.Create(s.ctx, membership(userID, id.TenantID(uuid.New()), models.RoleStaff, base.Add(-time.Hour))))

	list, err := s.store.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]models.Role{models.RoleOwner, models.RoleStaff, models.RoleTechnician},
		[]models.Role{list[0].Role, list[1].Role, list[2].Role})

	empty, err := s.store.ListByUser(s.ctx, id.UserID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *TenantUserStoreSuite) TestCountByTenant() {
	tenantID := id.TenantID(uuid.New())
	for range 3 {
		s.Require().NoError(s.store.Create(s.ctx, membership(id.UserID(uuid.New()), tenantID, models.RoleStaff, time.Now())))
	}
	n, err := s.store.CountByTenant(s.ctx, tenantID)
	s.Require().NoError(err)
	s.Equal(3, n)
}
