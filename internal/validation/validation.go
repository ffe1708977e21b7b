package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/rewards"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateName     ConflictType = "duplicate_practice_name"
	ConflictInvalidDay        ConflictType = "invalid_day"
	ConflictTooManyDays       ConflictType = "too_many_completed_days"
	ConflictDayOutsideWindow  ConflictType = "day_outside_challenge"
	ConflictStaleProgress     ConflictType = "stale_progress"
	ConflictInvalidTotalDays  ConflictType = "invalid_total_days"
	ConflictCompletionMissing ConflictType = "completion_flag_mismatch"
)

// Conflict represents a detected problem with a stored practice
type Conflict struct {
	Type        ConflictType
	Description string
	PracticeIDs []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(t ConflictType, ids []string, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		PracticeIDs: ids,
	})
}

// ValidatePracticeName checks a practice name before it is stored
func ValidatePracticeName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("practice name cannot be empty")
	}
	if utf8.RuneCountInString(name) > constants.MaxPracticeNameLength {
		return fmt.Errorf("practice name must be at most %d characters", constants.MaxPracticeNameLength)
	}
	return nil
}

// ValidateTotalDays checks a practice's day target
func ValidateTotalDays(days int) error {
	if days < 1 {
		return fmt.Errorf("%w: got %d", rewards.ErrInvalidTotalDays, days)
	}
	if days > constants.MaxPracticeDays {
		return fmt.Errorf("total days must be at most %d, got %d", constants.MaxPracticeDays, days)
	}
	return nil
}

// Validator checks stored practices for invariant violations
type Validator struct {
	cfg rewards.Config
}

// New creates a validator using the default reward tables
func New() *Validator {
	return &Validator{cfg: rewards.DefaultConfig()}
}

// ValidatePractices reports duplicate names and per-practice problems.
// The points check assumes unlocked achievement points are in AchievementPoints.
func (v *Validator) ValidatePractices(practices []models.Practice) ValidationResult {
	var result ValidationResult

	byName := make(map[string][]string)
	for _, p := range practices {
		byName[nameKey(p)] = append(byName[nameKey(p)], p.ID)
	}
	for _, p := range practices {
		ids := byName[nameKey(p)]
		if len(ids) > 1 && ids[0] == p.ID {
			result.add(ConflictDuplicateName, ids, "Duplicate practice name %q (%d practices)", p.Name, len(ids))
		}
		v.validatePractice(&result, p)
	}

	return result
}

func nameKey(p models.Practice) string {
	return p.UserID + "\x00" + strings.ToLower(strings.TrimSpace(p.Name))
}

func (v *Validator) validatePractice(result *ValidationResult, p models.Practice) {
	ids := []string{p.ID}
	if p.TotalDays < 1 {
		result.add(ConflictInvalidTotalDays, ids, "Practice %q has invalid total days %d", p.Name, p.TotalDays)
		return
	}

	days, err := rewards.NormalizeDays(p.CompletedDays)
	if err != nil {
		result.add(ConflictInvalidDay, ids, "Practice %q: %v", p.Name, err)
		return
	}

	if len(days) > p.TotalDays {
		result.add(ConflictTooManyDays, ids, "Practice %q has %d completed days but only %d total", p.Name, len(days), p.TotalDays)
	}

	start := p.CreatedAt.Format(constants.DateFormat)
	end := p.CreatedAt.AddDate(0, 0, p.TotalDays-1).Format(constants.DateFormat)
	for _, d := range days {
		if d < start || d > end {
			result.add(ConflictDayOutsideWindow, ids, "Practice %q: day %s is outside %s..%s", p.Name, d, start, end)
		}
	}

	streak, _ := rewards.StreakFromDays(days)
	points := v.cfg.TotalPoints(p.TotalDays, len(days)) + p.AchievementPoints
	if p.CurrentStreak != streak || p.Points != points || p.LongestStreak < p.CurrentStreak {
		result.add(ConflictStaleProgress, ids,
			"Practice %q progress is stale (streak %d, expected %d; points %d, expected %d)",
			p.Name, p.CurrentStreak, streak, p.Points, points)
	}

	if p.IsCompleted != (len(days) == p.TotalDays) {
		result.add(ConflictCompletionMissing, ids, "Practice %q completion flag is %v with %d/%d days", p.Name, p.IsCompleted, len(days), p.TotalDays)
	}
}
