// Package rewards computes streaks, points and achievement unlocks for a
// practice. Every function here is a pure computation over its inputs; the
// only external dependency is the ExistenceChecker consulted by Evaluator.
package rewards

import "errors"

var (
	// ErrInvalidDay is returned when a completed day is not a YYYY-MM-DD date
	ErrInvalidDay = errors.New("invalid day")
	// ErrInvalidTotalDays is returned when a practice has no positive day target
	ErrInvalidTotalDays = errors.New("total days must be positive")
	// ErrNoChecker is returned by Evaluate on an evaluator built without a checker
	ErrNoChecker = errors.New("no achievement existence checker")
)

// Tier is a streak threshold and the bonus points it grants per day
type Tier struct {
	Days  int
	Bonus int
}

// StreakAchievement unlocks once a streak reaches Days
type StreakAchievement struct {
	Days   int
	Points int
	Title  string
}

// MilestoneAchievement unlocks once completion reaches Percent of the challenge
type MilestoneAchievement struct {
	Percent int
	Points  int
	Title   string
}

// Config holds the reward tables. Tier slices must be sorted ascending.
type Config struct {
	BasePoints            int
	StreakBonuses         []Tier
	CompletionBonus       int
	StreakAchievements    []StreakAchievement
	MilestoneAchievements []MilestoneAchievement
}

// DefaultConfig returns the standard reward tables
func DefaultConfig() Config {
	return Config{
		BasePoints: 10,
		StreakBonuses: []Tier{
			{Days: 7, Bonus: 20},
			{Days: 30, Bonus: 50},
			{Days: 100, Bonus: 100},
		},
		CompletionBonus: 100,
		StreakAchievements: []StreakAchievement{
			{Days: 7, Points: 20, Title: "Week Warrior"},
			{Days: 30, Points: 50, Title: "Monthly Master"},
			{Days: 100, Points: 100, Title: "Century Champion"},
		},
		MilestoneAchievements: []MilestoneAchievement{
			{Percent: 25, Points: 20, Title: "Quarter Way"},
			{Percent: 50, Points: 30, Title: "Halfway Hero"},
			{Percent: 75, Points: 40, Title: "Almost There"},
			{Percent: 100, Points: 50, Title: "Challenge Champion"},
		},
	}
}
