// Package repository contains the repository layer for the SSQ API
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nsvirk/ssqapi/internal/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

// NewSessionRepository creates a new repository for sessions
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// CreateSession inserts a new session row
func (r *SessionRepository) CreateSession(ctx context.Context, session *models.SessionModel) error {
	return r.DB.WithContext(ctx).Omit("User").Create(session).Error
}

// GetSessionByToken gets a session and its user by token
func (r *SessionRepository) GetSessionByToken(ctx context.Context, token string) (*models.SessionModel, error) {
	var session models.SessionModel
	err := r.DB.WithContext(ctx).
		Preload("User").
		Where("session_token = ?", token).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// DeleteSession deletes the session matching token
func (r *SessionRepository) DeleteSession(ctx context.Context, token string) (int64, error) {
	result := r.DB.WithContext(ctx).Where("session_token = ?", token).Delete(&models.SessionModel{})
	return result.RowsAffected, result.Error
}

// DeleteExpiredSessions removes sessions that expired before now
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.SessionModel{})
	return result.RowsAffected, result.Error
}
