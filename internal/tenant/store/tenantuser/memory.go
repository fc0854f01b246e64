package tenantuser

import (
	"context"
	"sort"
	"sync"

	"baiki/internal/tenant/models"
	id "baiki/pkg/domain"
	"baiki/pkg/platform/sentinel"
)

type membershipKey struct {
	userID   id.UserID
	tenantID id.TenantID
}

// InMemory stores tenant memberships in process memory.
type InMemory struct {
	mu     sync.RWMutex
	byPair map[membershipKey]*models.TenantUser
	byUser map[id.UserID][]membershipKey
}

func NewInMemory() *InMemory {
	return &InMemory{
		byPair: make(map[membershipKey]*models.TenantUser),
		byUser: make(map[id.UserID][]membershipKey),
	}
}

// Create inserts the membership; a second row for the same (user, tenant) pair is rejected.
func (s *InMemory) Create(_ context.Context, tu *models.TenantUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey{userID: tu.UserID, tenantID: tu.TenantID}
	if _, exists := s.byPair[key]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *tu
	s.byPair[key] = &cp
	s.byUser[tu.UserID] = append(s.byUser[tu.UserID], key)
	return nil
}

func (s *InMemory) FindByUserAndTenant(_ context.Context, userID id.UserID, tenantID id.TenantID) (*models.TenantUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tu, ok := s.byPair[membershipKey{userID: userID, tenantID: tenantID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *tu
	return &cp, nil
}

// ListByUser returns the user's memberships, highest role first, then oldest first.
func (s *InMemory) ListByUser(_ context.Context, userID id.UserID) ([]*models.TenantUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.byUser[userID]
	out := make([]*models.TenantUser, 0, len(keys))
	for _, key := range keys {
		cp := *s.byPair[key]
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role.Outranks(out[j].Role)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) CountByTenant(_ context.Context, tenantID id.TenantID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for key := range s.byPair {
		if key.tenantID == tenantID {
			n++
		}
	}
	return n, nil
}
