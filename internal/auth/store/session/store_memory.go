package session

import (
	"context"
	"sync"
	"time"

	"baiki/internal/auth/models"
	id "baiki/pkg/domain"
	"baiki/pkg/platform/sentinel"
)

// InMemorySessionStore keeps sessions in process memory. Expired sessions are
// reported as sentinel.ErrExpired and removed on read.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
	now      func() time.Time
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[id.SessionID]*models.Session),
		now:      time.Now,
	}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if session.IsExpired(s.now()) {
		delete(s.sessions, sessionID)
		return nil, sentinel.ErrExpired
	}
	cp := *session
	return &cp, nil
}

// Delete revokes the session. Deleting an unknown session is not an error.
func (s *InMemorySessionStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// ListByUser returns the user's live sessions.
func (s *InMemorySessionStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	var out []*models.Session
	for _, session := range s.sessions {
		if session.UserID == userID && !session.IsExpired(now) {
			cp := *session
			out = append(out, &cp)
		}
	}
	return out, nil
}
