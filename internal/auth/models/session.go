package models

import (
	"time"

	id "baiki/pkg/domain"
)

// Session is a server-side login record. A session token is only honored while
// its session exists and has not expired.
type Session struct {
	ID         id.SessionID `json:"id"`
	UserID     id.UserID    `json:"userId"`
	DeviceName string       `json:"deviceName"`
	IPAddress  string       `json:"ipAddress,omitempty"`
	UserAgent  string       `json:"userAgent,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	ExpiresAt  time.Time    `json:"expiresAt"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity is a resolved session: the user and the session that authenticated them.
type Identity struct {
	User    *User
	Session *Session
}
