// Package service contains the service layer for the SSQ API
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/models"
	"github.com/nsvirk/ssqapi/internal/repository"
	"github.com/nsvirk/ssqapi/internal/spreadsheet"
	"github.com/nsvirk/ssqapi/pkg/utils/audit"
	"gorm.io/gorm"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// HistoryPage is one page of draws
type HistoryPage struct {
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	Items  []models.DrawModel `json:"items"`
}

// HistoryService reads and corrects the draw history
type HistoryService struct {
	draws *repository.DrawRepository
	audit *audit.Logger
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(db *gorm.DB, auditLog *audit.Logger) *HistoryService {
	return &HistoryService{
		draws: repository.NewDrawRepository(db),
		audit: auditLog,
	}
}

// List returns the most recent draws, newest issue first
func (s *HistoryService) List(ctx context.Context, limit, offset int) (*HistoryPage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.draws.CountDraws(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.draws.ListDraws(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{Total: total, Limit: limit, Offset: offset, Items: items}, nil
}

// Export writes every draw as a workbook
func (s *HistoryService) Export(ctx context.Context, w io.Writer) error {
	draws, err := s.draws.ListDraws(ctx, 0, 0)
	if err != nil {
		return err
	}
	return spreadsheet.WriteDraws(w, draws)
}

// FixDrawDatesRequest names a run of issues and a known good anchor
type FixDrawDatesRequest struct {
	StartIssue  string `json:"start_issue" form:"start_issue"`
	EndIssue    string `json:"end_issue" form:"end_issue"`
	AnchorIssue string `json:"anchor_issue" form:"anchor_issue"`
	AnchorDate  string `json:"anchor_date" form:"anchor_date"`
}

// FixDrawDatesResult reports what was changed
type FixDrawDatesResult struct {
	Matched int   `json:"matched"`
	Updated int64 `json:"updated"`
}

// FixDrawDates recomputes draw_date for stored issues in [start, end] by
// stepping through the weekly draw days from the anchor issue.
func (s *HistoryService) FixDrawDates(ctx context.Context, actor string, req FixDrawDatesRequest) (*FixDrawDatesResult, error) {
	start, err := lottery.NormalizeIssue(req.StartIssue)
	if err != nil {
		return nil, fmt.Errorf("%w: `start_issue`: %v", ErrInvalidInput, err)
	}
	end, err := lottery.NormalizeIssue(req.EndIssue)
	if err != nil {
		return nil, fmt.Errorf("%w: `end_issue`: %v", ErrInvalidInput, err)
	}
	anchor, err := lottery.NormalizeIssue(req.AnchorIssue)
	if err != nil {
		return nil, fmt.Errorf("%w: `anchor_issue`: %v", ErrInvalidInput, err)
	}
	anchorDate, err := time.Parse("2006-01-02", req.AnchorDate)
	if err != nil {
		return nil, fmt.Errorf("%w: `anchor_date` must be yyyy-mm-dd", ErrInvalidInput)
	}
	if start > end {
		return nil, fmt.Errorf("%w: `start_issue` is after `end_issue`", ErrInvalidInput)
	}
	if start[:4] != anchor[:4] || end[:4] != anchor[:4] {
		return nil, fmt.Errorf("%w: the range and the anchor must be in the same year", ErrInvalidInput)
	}
	if !lottery.IsDrawDay(anchorDate) {
		return nil, fmt.Errorf("%w: `anchor_date` is not a draw day", ErrInvalidInput)
	}

	draws, err := s.draws.ListDrawsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	dates := make(map[uint]time.Time, len(draws))
	for _, d := range draws {
		date, err := lottery.DrawDateFor(anchor, anchorDate, d.IssueNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		dates[d.ID] = date
	}

	updated, err := s.draws.UpdateDrawDates(ctx, dates)
	if err != nil {
		return nil, err
	}

	s.audit.Info(actor, "fix-draw-dates", map[string]interface{}{
		"start_issue":  start,
		"end_issue":    end,
		"anchor_issue": anchor,
		"anchor_date":  req.AnchorDate,
		"updated":      updated,
	})
	return &FixDrawDatesResult{Matched: len(draws), Updated: updated}, nil
}
