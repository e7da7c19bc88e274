// Package models contains the models for the SSQ API
package models

import (
	"time"
)

const SessionsTableName = "sessions"

// SessionModel is one login. A user may hold several live sessions.
type SessionModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionToken string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	User         UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	ExpiresAt    time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SessionModel) TableName() string {
	return SessionsTableName
}

// IsExpired reports whether the session is past its expiry at now
func (s *SessionModel) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
