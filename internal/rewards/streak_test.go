package rewards

import (
	"errors"
	"testing"
	"time"
)

func TestStreakFromDays(t *testing.T) {
	tests := []struct {
		name string
		days []string
		want int
	}{
		{"empty", nil, 0},
		{"single day", []string{"2024-01-01"}, 1},
		{"three consecutive", []string{"2024-01-01", "2024-01-02", "2024-01-03"}, 3},
		{"gap breaks streak", []string{"2024-01-01", "2024-01-03"}, 1},
		{"unsorted input", []string{"2024-01-03", "2024-01-01", "2024-01-02"}, 3},
		{"trailing run after gap", []string{"2024-01-01", "2024-01-02", "2024-01-05", "2024-01-06"}, 2},
		{"duplicates ignored", []string{"2024-01-01", "2024-01-02", "2024-01-02"}, 2},
		{"month boundary", []string{"2024-01-30", "2024-01-31", "2024-02-01"}, 3},
		{"leap day", []string{"2024-02-28", "2024-02-29", "2024-03-01"}, 3},
		{"year boundary", []string{"2023-12-31", "2024-01-01"}, 2},
		{"stale run still counted", []string{"2001-05-01", "2001-05-02"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StreakFromDays(tt.days)
			if err != nil {
				t.Fatalf("StreakFromDays() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("StreakFromDays(%v) = %d, want %d", tt.days, got, tt.want)
			}
		})
	}
}

func TestStreakFromDaysInvalid(t *testing.T) {
	for _, day := range []string{"", "2024-1-1", "2024-02-30", "yesterday"} {
		_, err := StreakFromDays([]string{"2024-01-01", day})
		if !errors.Is(err, ErrInvalidDay) {
			t.Errorf("StreakFromDays with %q: expected ErrInvalidDay, got %v", day, err)
		}
	}
}

func TestComputeStreakUsesCalendarDays(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	dates := []time.Time{
		time.Date(2024, 1, 1, 23, 59, 0, 0, est),
		time.Date(2024, 1, 2, 0, 1, 0, 0, est),
		time.Date(2024, 1, 2, 18, 0, 0, 0, est),
	}
	if got := ComputeStreak(dates); got != 2 {
		t.Errorf("ComputeStreak() = %d, want 2", got)
	}
}

func TestComputeStreakAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	dates := []time.Time{
		time.Date(2024, 3, 9, 12, 0, 0, 0, loc),
		time.Date(2024, 3, 10, 12, 0, 0, 0, loc),
		time.Date(2024, 3, 11, 12, 0, 0, 0, loc),
	}
	if got := ComputeStreak(dates); got != 3 {
		t.Errorf("ComputeStreak() across DST = %d, want 3", got)
	}
}

func TestNormalizeDays(t *testing.T) {
	got, err := NormalizeDays([]string{"2024-01-03", "2024-01-01", "2024-01-03"})
	if err != nil {
		t.Fatalf("NormalizeDays() unexpected error: %v", err)
	}
	want := []string{"2024-01-01", "2024-01-03"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeDays() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeDays()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
