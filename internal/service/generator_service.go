// Package service contains the service layer for the SSQ API
package service

import (
	"context"
	"fmt"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/models"
	"github.com/nsvirk/ssqapi/internal/repository"
	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

const (
	MinPlayCount = 1
	MaxPlayCount = 10
)

// GeneratorService hands out plays that were never drawn
type GeneratorService struct {
	generator *lottery.Generator
	plays     *repository.PlayRepository
}

// GeneratorOption customises a GeneratorService
type GeneratorOption func(*GeneratorService)

// WithGenerator replaces the generator built over the draw history
func WithGenerator(g *lottery.Generator) GeneratorOption {
	return func(s *GeneratorService) {
		s.generator = g
	}
}

// NewGeneratorService creates a GeneratorService checking against the draw history in db
func NewGeneratorService(db *gorm.DB, opts ...GeneratorOption) *GeneratorService {
	s := &GeneratorService{
		generator: lottery.NewGenerator(repository.NewDrawRepository(db)),
		plays:     repository.NewPlayRepository(db),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerationError reports the play that failed and the plays accepted before it
type GenerationError struct {
	Index    int
	Attempts int
	Accepted []lottery.Play
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("play %d failed after %d attempts: %v", e.Index+1, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Generate produces count plays for userID, one at a time. Each accepted play
// is recorded; a failed record is logged and the play is still returned.
func (s *GeneratorService) Generate(ctx context.Context, userID uint, count int) ([]lottery.Play, error) {
	if count < MinPlayCount || count > MaxPlayCount {
		return nil, fmt.Errorf("%w: `count` must be between %d and %d", ErrInvalidInput, MinPlayCount, MaxPlayCount)
	}

	plays := make([]lottery.Play, 0, count)
	for i := 0; i < count; i++ {
		play, attempts, err := s.generator.Next(ctx)
		if err != nil {
			zaplogger.Warn("Play generation failed", zaplogger.Fields{
				"user_id":  userID,
				"index":    i,
				"attempts": attempts,
				"error":    err.Error(),
			})
			return plays, &GenerationError{Index: i, Attempts: attempts, Accepted: plays, Err: err}
		}

		s.record(ctx, userID, play)
		plays = append(plays, play)
	}
	return plays, nil
}

func (s *GeneratorService) record(ctx context.Context, userID uint, play lottery.Play) {
	row, err := models.NewPlayModel(userID, play)
	if err == nil {
		err = s.plays.InsertPlay(ctx, &row)
	}
	if err != nil {
		zaplogger.Error("Failed to record generated play", zaplogger.Fields{
			"user_id": userID,
			"play":    play.Key(),
			"error":   err.Error(),
		})
	}
}

// RecentPlays returns the latest plays generated for userID
func (s *GeneratorService) RecentPlays(ctx context.Context, userID uint, limit int) ([]models.PlayModel, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.plays.ListPlaysByUser(ctx, userID, limit)
}
