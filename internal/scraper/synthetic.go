package scraper

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
)

// SyntheticSource makes up placeholder draws. Its results are never real and
// must not be stored as history.
type SyntheticSource struct {
	Now  func() time.Time
	IntN lottery.IntN
}

func NewSyntheticSource() *SyntheticSource {
	return &SyntheticSource{Now: time.Now, IntN: rand.IntN}
}

func (s *SyntheticSource) Name() string { return "synthetic" }

// Fetch returns limit placeholder draws on the most recent draw days, newest first
func (s *SyntheticSource) Fetch(_ context.Context, limit int) ([]lottery.Result, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	day := s.Now().UTC().Truncate(24 * time.Hour)
	for !lottery.IsDrawDay(day) {
		day = day.AddDate(0, 0, -1)
	}

	results := make([]lottery.Result, 0, limit)
	for i := 0; i < limit; i++ {
		d := lottery.StepDrawDays(day, -i)
		play := lottery.Standard.Draw(s.IntN)
		var reds [lottery.RedCount]int
		for j, r := range play.Reds {
			reds[j], _ = strconv.Atoi(r)
		}
		blue, _ := strconv.Atoi(play.Blue)
		results = append(results, lottery.Result{
			Issue:     fmt.Sprintf("%04d%03d", d.Year(), 900+limit-i),
			DrawDate:  d,
			OrderReds: reds,
			Blue:      blue,
		})
	}
	return results, nil
}
