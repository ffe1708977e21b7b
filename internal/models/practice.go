package models

import "time"

// AchievementType classifies how an achievement was earned
type AchievementType string

const (
	AchievementStreak     AchievementType = "streak"
	AchievementCompletion AchievementType = "completion"
	AchievementMilestone  AchievementType = "milestone"
)

// Practice is a user-defined challenge of TotalDays days.
//
// CompletedDays holds unique YYYY-MM-DD strings and is kept sorted ascending.
// CurrentStreak, LongestStreak, Points and IsCompleted are derived from
// CompletedDays and are recomputed in full on every toggle.
type Practice struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Name              string     `json:"practice_name"`
	TotalDays         int        `json:"total_days"`
	CompletedDays     []string   `json:"completed_days"`
	CurrentStreak     int        `json:"current_streak"`
	LongestStreak     int        `json:"longest_streak"`
	Points            int        `json:"points"`
	AchievementPoints int        `json:"achievement_points"`
	IsCompleted       bool       `json:"is_completed"`
	LastPracticeDate  *time.Time `json:"last_practice_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// HasDay reports whether day is among the completed days
func (p Practice) HasDay(day string) bool {
	for _, d := range p.CompletedDays {
		if d == day {
			return true
		}
	}
	return false
}

// CompletionPercent returns completed/total as a percentage, 0 when TotalDays is not positive
func (p Practice) CompletionPercent() float64 {
	if p.TotalDays <= 0 {
		return 0
	}
	return float64(len(p.CompletedDays)) / float64(p.TotalDays) * 100
}

// Achievement is an immutable unlock record. Title is unique per practice.
type Achievement struct {
	ID          string          `json:"id"`
	PracticeID  string          `json:"practice_id"`
	UserID      string          `json:"user_id"`
	Type        AchievementType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Points      int             `json:"points"`
	UnlockedAt  time.Time       `json:"unlocked_at"`
}
