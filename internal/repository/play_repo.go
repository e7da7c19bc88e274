// Package repository contains the repository layer for the SSQ API
package repository

import (
	"context"

	"github.com/nsvirk/ssqapi/internal/models"
	"gorm.io/gorm"
)

type PlayRepository struct {
	DB *gorm.DB
}

// NewPlayRepository creates a new repository for generated plays
func NewPlayRepository(db *gorm.DB) *PlayRepository {
	return &PlayRepository{DB: db}
}

// InsertPlay records a play handed out to a user
func (r *PlayRepository) InsertPlay(ctx context.Context, play *models.PlayModel) error {
	return r.DB.WithContext(ctx).Create(play).Error
}

// ListPlaysByUser returns the latest plays of a user
func (r *PlayRepository) ListPlaysByUser(ctx context.Context, userID uint, limit int) ([]models.PlayModel, error) {
	var plays []models.PlayModel
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("generated_at DESC, id DESC").
		Limit(limit).
		Find(&plays).Error
	return plays, err
}
