package rewards

import (
	"fmt"
	"slices"
	"time"

	"github.com/julianstephens/streaklit/internal/constants"
)

// ParseDay parses a YYYY-MM-DD string into midnight UTC of that calendar day
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDay, day)
	}
	return t, nil
}

// ParseDays parses, deduplicates and sorts a set of day strings ascending
func ParseDays(days []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(days))
	for _, d := range days {
		t, err := ParseDay(d)
		if err != nil {
			return nil, err
		}
		dates = append(dates, t)
	}
	return calendarDays(dates), nil
}

// NormalizeDays returns the canonical form of a completed-day set:
// unique YYYY-MM-DD strings in ascending order.
func NormalizeDays(days []string) ([]string, error) {
	dates, err := ParseDays(days)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(constants.DateFormat)
	}
	return out, nil
}

// calendarDays truncates each instant to its calendar date (in the instant's
// own location), then sorts and deduplicates.
func calendarDays(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	for i, t := range dates {
		y, m, d := t.Date()
		out[i] = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(out, func(a, b time.Time) bool { return a.Equal(b) })
}

// ComputeStreak counts the consecutive calendar days ending at the latest
// date in the set. The latest date is not required to be today, so a stale
// run still reports its length.
func ComputeStreak(dates []time.Time) int {
	days := calendarDays(dates)
	if len(days) == 0 {
		return 0
	}

	streak := 1
	current := days[len(days)-1]
	for i := len(days) - 2; i >= 0; i-- {
		if !days[i].Equal(current.AddDate(0, 0, -1)) {
			break
		}
		streak++
		current = days[i]
	}
	return streak
}

// StreakFromDays is ComputeStreak over YYYY-MM-DD strings
func StreakFromDays(days []string) (int, error) {
	dates, err := ParseDays(days)
	if err != nil {
		return 0, err
	}
	return ComputeStreak(dates), nil
}
