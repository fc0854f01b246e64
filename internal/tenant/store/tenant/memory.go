package tenant

import (
	"context"
	"sort"
	"sync"

	"baiki/internal/tenant/models"
	id "baiki/pkg/domain"
	"baiki/pkg/platform/sentinel"
)

// InMemory stores tenants in process memory, indexed by ID and slug.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[id.TenantID]*models.Tenant
	bySlug map[string]id.TenantID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[id.TenantID]*models.Tenant),
		bySlug: make(map[string]id.TenantID),
	}
}

// Create inserts the tenant. The slug check and insert happen under one lock,
// matching the unique constraint of the Postgres store.
func (s *InMemory) Create(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.bySlug[t.Slug]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.byID[t.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *t
	s.byID[t.ID] = &cp
	s.bySlug[t.Slug] = t.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemory) FindBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenantID, ok := s.bySlug[slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[tenantID]
	return &cp, nil
}

func (s *InMemory) SlugExists(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bySlug[slug]
	return ok, nil
}

// List returns all tenants, oldest first.
func (s *InMemory) List(_ context.Context) ([]*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Tenant, 0, len(s.byID))
	for _, t := range s.byID {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Slug < out[j].Slug
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}
