// Package service contains the service layer for the SSQ API
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/models"
	"github.com/nsvirk/ssqapi/internal/repository"
	"github.com/nsvirk/ssqapi/internal/spreadsheet"
	"github.com/nsvirk/ssqapi/pkg/utils/audit"
	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

const maxReportedRowErrors = 20

// ImportSummary is the outcome of an import or crawl
type ImportSummary struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func (s *ImportSummary) addError(msg string) {
	if len(s.Errors) < maxReportedRowErrors {
		s.Errors = append(s.Errors, msg)
	}
}

// ImportService loads historical draws into the database
type ImportService struct {
	draws *repository.DrawRepository
	audit *audit.Logger
}

// NewImportService creates a new ImportService
func NewImportService(db *gorm.DB, auditLog *audit.Logger) *ImportService {
	return &ImportService{
		draws: repository.NewDrawRepository(db),
		audit: auditLog,
	}
}

// ImportFile parses an uploaded workbook and imports its rows
func (s *ImportService) ImportFile(ctx context.Context, actor string, r io.Reader, filename string) (*ImportSummary, error) {
	rows, err := spreadsheet.ReadRows(r, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	summary := &ImportSummary{}
	results := make([]lottery.Result, 0, len(rows))
	for _, row := range rows {
		if spreadsheet.IsHeader(row) {
			continue
		}
		summary.Total++
		res, err := spreadsheet.ParseRow(row)
		if err != nil {
			summary.Skipped++
			summary.addError(err.Error())
			continue
		}
		results = append(results, res)
	}

	if err := s.store(ctx, results, summary); err != nil {
		return nil, err
	}

	s.audit.Info(actor, "import", map[string]interface{}{
		"file":     filename,
		"total":    summary.Total,
		"imported": summary.Imported,
		"skipped":  summary.Skipped,
	})
	zaplogger.Info("History import finished", zaplogger.Fields{
		"file":     filename,
		"imported": summary.Imported,
		"skipped":  summary.Skipped,
	})
	return summary, nil
}

// ImportResults stores already parsed results. Invalid results and known issue
// numbers are counted as skipped.
func (s *ImportService) ImportResults(ctx context.Context, results []lottery.Result) (*ImportSummary, error) {
	summary := &ImportSummary{Total: len(results)}
	valid := make([]lottery.Result, 0, len(results))
	for _, r := range results {
		if err := r.Validate(); err != nil {
			summary.Skipped++
			summary.addError(fmt.Sprintf("issue %s: %v", r.Issue, err))
			continue
		}
		valid = append(valid, r)
	}
	if err := s.store(ctx, valid, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// store inserts results, skipping duplicates within the batch and issues that
// already exist. summary is updated in place.
func (s *ImportService) store(ctx context.Context, results []lottery.Result, summary *ImportSummary) error {
	seen := make(map[string]bool, len(results))
	rows := make([]models.DrawModel, 0, len(results))
	for _, r := range results {
		if seen[r.Issue] {
			summary.Skipped++
			continue
		}
		seen[r.Issue] = true
		rows = append(rows, models.NewDrawModel(r))
	}

	inserted, err := s.draws.InsertDraws(ctx, rows)
	if err != nil {
		return err
	}
	summary.Imported += int(inserted)
	summary.Skipped += len(rows) - int(inserted)

	if inserted > 0 {
		s.notify(ctx, summary)
	}
	return nil
}

func (s *ImportService) notify(ctx context.Context, summary *ImportSummary) {
	payload, _ := json.Marshal(map[string]interface{}{
		"imported": summary.Imported,
		"at":       time.Now().Format(time.RFC3339),
	})
	if err := s.draws.NotifyHistoryChanged(ctx, string(payload)); err != nil {
		zaplogger.Warn("Failed to notify history change", zaplogger.Fields{"error": err.Error()})
	}
}
