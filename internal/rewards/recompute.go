package rewards

import (
	"time"

	"github.com/julianstephens/streaklit/internal/models"
)

// Recompute derives a practice's cached progress fields from completedDays.
//
// Points is a cache with this rule as its invalidation contract: it always
// equals TotalPoints over the completed days plus the running
// AchievementPoints, which grows by the points of each newly unlocked
// achievement. LongestStreak never decreases.
func (c Config) Recompute(p models.Practice, completedDays []string, unlocked []models.Achievement, now time.Time) (models.Practice, error) {
	if p.TotalDays <= 0 {
		return p, ErrInvalidTotalDays
	}
	days, err := NormalizeDays(completedDays)
	if err != nil {
		return p, err
	}
	streak, err := StreakFromDays(days)
	if err != nil {
		return p, err
	}

	achievementPoints := p.AchievementPoints
	for _, a := range unlocked {
		achievementPoints += a.Points
	}

	p.CompletedDays = days
	p.CurrentStreak = streak
	p.LongestStreak = max(streak, p.LongestStreak)
	p.AchievementPoints = achievementPoints
	p.Points = c.TotalPoints(p.TotalDays, len(days)) + achievementPoints
	p.IsCompleted = len(days) == p.TotalDays
	p.LastPracticeDate = &now
	return p, nil
}
