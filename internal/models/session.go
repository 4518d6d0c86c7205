package models

import "time"

// Session is a server-side login session (PostgreSQL)
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:24;index"` // hex ObjectID of the user
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is no longer valid at t
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
