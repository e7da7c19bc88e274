package lottery

import (
	"sort"
	"strings"
)

// Domain describes the number space a play is drawn from
type Domain struct {
	RedMax   int
	RedCount int
	BlueMax  int
}

// Standard is the real game: 6 of 33 red, 1 of 16 blue
var Standard = Domain{RedMax: RedMax, RedCount: RedCount, BlueMax: BlueMax}

// Play is one ticket line. Reds are ascending.
type Play struct {
	Reds []string `json:"reds"`
	Blue string   `json:"blue"`
}

// NewPlay formats reds (sorted ascending) and blue
func NewPlay(reds []int, blue int) Play {
	sorted := append([]int(nil), reds...)
	sort.Ints(sorted)
	p := Play{Reds: make([]string, len(sorted)), Blue: FormatBall(blue)}
	for i, n := range sorted {
		p.Reds[i] = FormatBall(n)
	}
	return p
}

// Key is a stable string identity of the play, e.g. "01,02,03,04,05,06+07"
func (p Play) Key() string {
	return strings.Join(p.Reds, ",") + "+" + p.Blue
}

// IntN returns a uniform integer in [0,n)
type IntN func(n int) int

// Draw picks RedCount distinct reds by rejection into a set, and one blue
func (d Domain) Draw(intn IntN) Play {
	set := make(map[int]struct{}, d.RedCount)
	reds := make([]int, 0, d.RedCount)
	for len(reds) < d.RedCount {
		n := intn(d.RedMax) + 1
		if _, ok := set[n]; ok {
			continue
		}
		set[n] = struct{}{}
		reds = append(reds, n)
	}
	blue := intn(d.BlueMax) + 1
	return NewPlay(reds, blue)
}
