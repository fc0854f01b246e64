package role

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"baiki/internal/auth/models"
	id "baiki/pkg/domain"
	"baiki/pkg/platform/sentinel"
)

type assignment struct {
	roleID    id.RoleID
	createdAt time.Time
}

// InMemoryRoleStore holds platform roles and user-role assignments.
type InMemoryRoleStore struct {
	mu          sync.RWMutex
	roles       map[models.PlatformRoleName]*models.Role
	assignments map[id.UserID][]assignment
}

func New() *InMemoryRoleStore {
	return &InMemoryRoleStore{
		roles:       make(map[models.PlatformRoleName]*models.Role),
		assignments: make(map[id.UserID][]assignment),
	}
}

// EnsureRole returns the named role, creating it if absent.
func (s *InMemoryRoleStore) EnsureRole(_ context.Context, name models.PlatformRoleName, now time.Time) (*models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.roles[name]; ok {
		cp := *r
		return &cp, nil
	}
	r := &models.Role{ID: id.RoleID(uuid.New()), Name: name, CreatedAt: now}
	s.roles[name] = r
	cp := *r
	return &cp, nil
}

func (s *InMemoryRoleStore) FindByName(_ context.Context, name models.PlatformRoleName) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// AssignToUser links the role to the user. Assigning twice is a no-op.
func (s *InMemoryRoleStore) AssignToUser(_ context.Context, userID id.UserID, roleID id.RoleID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := false
	for _, r := range s.roles {
		if r.ID == roleID {
			known = true
			break
		}
	}
	if !known {
		return sentinel.ErrInvalidReference
	}
	for _, a := range s.assignments[userID] {
		if a.roleID == roleID {
			return nil
		}
	}
	s.assignments[userID] = append(s.assignments[userID], assignment{roleID: roleID, createdAt: now})
	return nil
}

// ListByUser returns the user's roles, earliest assignment first.
func (s *InMemoryRoleStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	links := append([]assignment(nil), s.assignments[userID]...)
	sort.SliceStable(links, func(i, j int) bool { return links[i].createdAt.Before(links[j].createdAt) })

	byID := make(map[id.RoleID]*models.Role, len(s.roles))
	for _, r := range s.roles {
		byID[r.ID] = r
	}
	out := make([]*models.Role, 0, len(links))
	for _, a := range links {
		if r, ok := byID[a.roleID]; ok {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}
