// Package repository contains the repository layer for the SSQ API
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryChannel is the Postgres NOTIFY channel for history changes
const HistoryChannel = "ssq_history_changed"

// DrawRepository is the database repository for historical draws
type DrawRepository struct {
	DB *gorm.DB
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(db *gorm.DB) *DrawRepository {
	return &DrawRepository{DB: db}
}

// DrawExists reports whether a draw with exactly these sorted reds and blue is recorded
func (r *DrawRepository) DrawExists(ctx context.Context, play lottery.Play) (bool, error) {
	if len(play.Reds) != lottery.RedCount {
		return false, fmt.Errorf("play has %d reds, want %d", len(play.Reds), lottery.RedCount)
	}
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.DrawModel{}).
		Where("red_1 = ? AND red_2 = ? AND red_3 = ? AND red_4 = ? AND red_5 = ? AND red_6 = ? AND blue = ?",
			play.Reds[0], play.Reds[1], play.Reds[2], play.Reds[3], play.Reds[4], play.Reds[5], play.Blue).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertDraws inserts draws, ignoring issue numbers that already exist.
// It returns how many rows were actually inserted.
func (r *DrawRepository) InsertDraws(ctx context.Context, draws []models.DrawModel) (int64, error) {
	if len(draws) == 0 {
		return 0, nil
	}
	result := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "issue_number"}},
			DoNothing: true,
		}).
		CreateInBatches(draws, 200)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to insert batch into %s: %v", models.DrawsTableName, result.Error)
	}
	return result.RowsAffected, nil
}

// ExistingIssues returns which of the given issue numbers are already stored
func (r *DrawRepository) ExistingIssues(ctx context.Context, issues []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(issues))
	if len(issues) == 0 {
		return existing, nil
	}
	var found []string
	err := r.DB.WithContext(ctx).Model(&models.DrawModel{}).
		Where("issue_number IN ?", issues).
		Pluck("issue_number", &found).Error
	if err != nil {
		return nil, err
	}
	for _, issue := range found {
		existing[issue] = true
	}
	return existing, nil
}

// CountDraws returns the number of recorded draws
func (r *DrawRepository) CountDraws(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.DrawModel{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count draws: %v", err)
	}
	return count, nil
}

// ListDraws returns draws by issue number descending
func (r *DrawRepository) ListDraws(ctx context.Context, limit, offset int) ([]models.DrawModel, error) {
	var draws []models.DrawModel
	q := r.DB.WithContext(ctx).Order("issue_number DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&draws).Error; err != nil {
		return nil, fmt.Errorf("failed to list draws: %v", err)
	}
	return draws, nil
}

// ListDrawsInRange returns draws with issue numbers in [start, end], ascending
func (r *DrawRepository) ListDrawsInRange(ctx context.Context, start, end string) ([]models.DrawModel, error) {
	var draws []models.DrawModel
	err := r.DB.WithContext(ctx).
		Where("issue_number >= ? AND issue_number <= ?", start, end).
		Order("issue_number ASC").
		Find(&draws).Error
	return draws, err
}

// UpdateDrawDates sets draw_date per id in one transaction
func (r *DrawRepository) UpdateDrawDates(ctx context.Context, dates map[uint]time.Time) (int64, error) {
	var updated int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, date := range dates {
			result := tx.Model(&models.DrawModel{}).Where("id = ?", id).Update("draw_date", date)
			if result.Error != nil {
				return result.Error
			}
			updated += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// NotifyHistoryChanged emits a NOTIFY on HistoryChannel. It is a no-op on
// databases other than Postgres.
func (r *DrawRepository) NotifyHistoryChanged(ctx context.Context, payload string) error {
	if !IsPostgres(r.DB) {
		return nil
	}
	return r.DB.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", HistoryChannel, payload).Error
}
