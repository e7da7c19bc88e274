package lottery

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

// MaxAttempts bounds the search for a never-drawn play
const MaxAttempts = 1000

// ErrExhausted is returned when no never-drawn play was found within the attempt bound
var ErrExhausted = errors.New("could not find a combination that was never drawn; the combination space may be fully drawn")

// HistoryChecker reports whether a play equals a recorded draw
type HistoryChecker interface {
	DrawExists(ctx context.Context, play Play) (bool, error)
}

// Generator produces plays that do not match any recorded draw
type Generator struct {
	Domain      Domain
	Checker     HistoryChecker
	IntN        IntN
	MaxAttempts int
}

// NewGenerator returns a Generator over the standard domain
func NewGenerator(checker HistoryChecker) *Generator {
	return &Generator{
		Domain:      Standard,
		Checker:     checker,
		IntN:        rand.IntN,
		MaxAttempts: MaxAttempts,
	}
}

// Next draws candidates until one is not in the history. It returns the play
// and the number of attempts used. A failed history check aborts the search.
func (g *Generator) Next(ctx context.Context) (Play, int, error) {
	maxAttempts := g.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = MaxAttempts
	}
	intn := g.IntN
	if intn == nil {
		intn = rand.IntN
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Play{}, attempt - 1, err
		}
		candidate := g.Domain.Draw(intn)
		exists, err := g.Checker.DrawExists(ctx, candidate)
		if err != nil {
			return Play{}, attempt, fmt.Errorf("history check failed: %w", err)
		}
		if !exists {
			return candidate, attempt, nil
		}
	}
	return Play{}, maxAttempts, ErrExhausted
}
