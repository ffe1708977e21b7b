package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/rewards"
)

func hasConflict(result ValidationResult, t ConflictType) bool {
	for _, c := range result.Conflicts {
		if c.Type == t {
			return true
		}
	}
	return false
}

func consistentPractice(id, name string, days []string) models.Practice {
	p := models.Practice{
		ID:        id,
		UserID:    "u1",
		Name:      name,
		TotalDays: 5,
		CreatedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
	p, err := rewards.DefaultConfig().Recompute(p, days, nil, time.Now())
	if err != nil {
		panic(err)
	}
	return p
}

func TestValidatePractices_Clean(t *testing.T) {
	validator := New()
	practices := []models.Practice{
		consistentPractice("1", "Meditate", []string{"2024-01-01", "2024-01-02"}),
		consistentPractice("2", "Run", nil),
	}

	result := validator.ValidatePractices(practices)
	if result.HasConflicts() {
		t.Errorf("expected no conflicts, got:\n%s", result.FormatReport())
	}
	if result.FormatReport() != "No conflicts detected." {
		t.Errorf("unexpected report %q", result.FormatReport())
	}
}

func TestValidatePractices_DuplicateNames(t *testing.T) {
	validator := New()
	practices := []models.Practice{
		consistentPractice("1", "Meditate", nil),
		consistentPractice("2", "meditate ", nil),
	}

	result := validator.ValidatePractices(practices)
	if !hasConflict(result, ConflictDuplicateName) {
		t.Error("Expected ConflictDuplicateName conflict type")
	}
	if len(result.Conflicts) != 1 {
		t.Errorf("expected exactly one conflict, got %d", len(result.Conflicts))
	}
}

func TestValidatePractices_InvariantViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Practice)
		want   ConflictType
	}{
		{"invalid day", func(p *models.Practice) { p.CompletedDays = []string{"2024-99-01"} }, ConflictInvalidDay},
		{"too many days", func(p *models.Practice) { p.TotalDays = 1 }, ConflictTooManyDays},
		{"day outside window", func(p *models.Practice) { p.CompletedDays = append(p.CompletedDays, "2023-12-31") }, ConflictDayOutsideWindow},
		{"stale points", func(p *models.Practice) { p.Points += 5 }, ConflictStaleProgress},
		{"stale streak", func(p *models.Practice) { p.CurrentStreak = 9 }, ConflictStaleProgress},
		{"zero total days", func(p *models.Practice) { p.TotalDays = 0 }, ConflictInvalidTotalDays},
		{"completion flag", func(p *models.Practice) { p.IsCompleted = true }, ConflictCompletionMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := consistentPractice("1", "Meditate", []string{"2024-01-01", "2024-01-02"})
			tt.mutate(&p)
			result := New().ValidatePractices([]models.Practice{p})
			if !hasConflict(result, tt.want) {
				t.Errorf("expected %s conflict, got:\n%s", tt.want, result.FormatReport())
			}
			if !strings.Contains(result.FormatReport(), "Meditate") {
				t.Errorf("report should name the practice:\n%s", result.FormatReport())
			}
		})
	}
}

func TestValidatePracticeName(t *testing.T) {
	if err := ValidatePracticeName("Morning pages"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidatePracticeName("   "); err == nil {
		t.Error("expected error for blank name")
	}
	if err := ValidatePracticeName(strings.Repeat("x", 101)); err == nil {
		t.Error("expected error for long name")
	}
}

func TestValidateTotalDays(t *testing.T) {
	if err := ValidateTotalDays(30); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTotalDays(0); !errors.Is(err, rewards.ErrInvalidTotalDays) {
		t.Errorf("expected ErrInvalidTotalDays, got %v", err)
	}
	if err := ValidateTotalDays(100000); err == nil {
		t.Error("expected error for excessive total days")
	}
}
