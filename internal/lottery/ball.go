// Package lottery holds the Double Color Ball domain: balls, plays, draws,
// issue numbers and the draw calendar.
package lottery

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	RedMax   = 33
	RedCount = 6
	BlueMax  = 16
)

var (
	ErrMalformedIssue = errors.New("malformed issue number")
	ErrBallRange      = errors.New("ball out of range")
	ErrDuplicateRed   = errors.New("duplicate red ball")
)

// FormatBall renders a ball as a two digit zero padded string
func FormatBall(n int) string {
	return fmt.Sprintf("%02d", n)
}

// ParseBall parses a ball value ("7", "07", "7.0") and checks it against [1,max]
func ParseBall(s string, max int) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid ball %q", s)
	}
	if n < 1 || n > max {
		return 0, fmt.Errorf("%w: %d not in [1,%d]", ErrBallRange, n, max)
	}
	return n, nil
}

// NormalizeIssue returns the canonical 7 digit issue number.
// 7 digits are kept as is; 5 or 6 digits get a "20" century prefix.
func NormalizeIssue(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".0")
	if s == "" {
		return "", ErrMalformedIssue
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrMalformedIssue, raw)
		}
	}
	switch len(s) {
	case 7:
		return s, nil
	case 5, 6:
		return "20" + s, nil
	default:
		return "", fmt.Errorf("%w: %q has %d digits", ErrMalformedIssue, raw, len(s))
	}
}

// Result is one historical draw as reported by a spreadsheet or a results page
type Result struct {
	Issue     string
	DrawDate  time.Time
	OrderReds [RedCount]int // order the balls were drawn in
	Blue      int
}

// SortedReds returns the red balls in ascending order
func (r Result) SortedReds() [RedCount]int {
	sorted := r.OrderReds
	sort.Ints(sorted[:])
	return sorted
}

// Validate checks ranges, distinctness and the issue format
func (r Result) Validate() error {
	if len(r.Issue) != 7 {
		return fmt.Errorf("%w: %q", ErrMalformedIssue, r.Issue)
	}
	seen := make(map[int]bool, RedCount)
	for _, n := range r.OrderReds {
		if n < 1 || n > RedMax {
			return fmt.Errorf("%w: red %d", ErrBallRange, n)
		}
		if seen[n] {
			return fmt.Errorf("%w: %d", ErrDuplicateRed, n)
		}
		seen[n] = true
	}
	if r.Blue < 1 || r.Blue > BlueMax {
		return fmt.Errorf("%w: blue %d", ErrBallRange, r.Blue)
	}
	return nil
}

// Play returns the canonical sorted play of the draw
func (r Result) Play() Play {
	sorted := r.SortedReds()
	return NewPlay(sorted[:], r.Blue)
}
