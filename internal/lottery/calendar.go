package lottery

import (
	"fmt"
	"strconv"
	"time"
)

// DrawWeekdays are the weekly draw days
var DrawWeekdays = []time.Weekday{time.Tuesday, time.Thursday, time.Sunday}

// IsDrawDay reports whether t falls on a draw day
func IsDrawDay(t time.Time) bool {
	for _, wd := range DrawWeekdays {
		if t.Weekday() == wd {
			return true
		}
	}
	return false
}

// StepDrawDays moves from a draw day by n draws (n may be negative)
func StepDrawDays(from time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	t := from
	for n > 0 {
		t = t.AddDate(0, 0, step)
		if IsDrawDay(t) {
			n--
		}
	}
	return t
}

// IssueSequence splits a 7 digit issue into year and sequence
func IssueSequence(issue string) (year, seq int, err error) {
	if len(issue) != 7 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedIssue, issue)
	}
	year, err = strconv.Atoi(issue[:4])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedIssue, issue)
	}
	seq, err = strconv.Atoi(issue[4:])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedIssue, issue)
	}
	return year, seq, nil
}

// DrawDateFor computes the draw date of issue from a known anchor issue and date.
// Both issues must belong to the same year and the anchor date must be a draw day.
func DrawDateFor(anchorIssue string, anchorDate time.Time, issue string) (time.Time, error) {
	ay, aseq, err := IssueSequence(anchorIssue)
	if err != nil {
		return time.Time{}, err
	}
	y, seq, err := IssueSequence(issue)
	if err != nil {
		return time.Time{}, err
	}
	if ay != y {
		return time.Time{}, fmt.Errorf("issue %s is not in anchor year %d", issue, ay)
	}
	if !IsDrawDay(anchorDate) {
		return time.Time{}, fmt.Errorf("anchor date %s is not a draw day", anchorDate.Format("2006-01-02"))
	}
	return StepDrawDays(anchorDate, seq-aseq), nil
}
