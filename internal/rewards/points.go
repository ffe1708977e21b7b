package rewards

// Two point formulas exist and they disagree whenever completed days are not
// contiguous:
//
//   - DailyPoints takes a real streak length and stacks every tier reached
//     (7+ days earns +20, 30+ earns +20+50, 100+ earns +20+50+100).
//   - TotalPoints uses the running count of completed days as a stand-in for
//     the streak and grants only the highest tier reached for each day.
//
// Practice.Points is derived from TotalPoints, so NextDayPoints (the
// TotalPoints delta) is what checking one more day actually adds.
// DailyPoints is the per-day rate of a real streak.

// DailyPoints returns the points a single day earns at the given streak length
func DailyPoints(streak int) int {
	return DefaultConfig().DailyPoints(streak)
}

// TotalPoints returns the points earned by a practice's completed days
func TotalPoints(totalDays int, completedDays []string) int {
	return DefaultConfig().TotalPoints(totalDays, len(completedDays))
}

// NextDayPoints returns how much Practice.Points grows when one more day is
// completed, completion bonus included
func NextDayPoints(totalDays, completed int) int {
	return DefaultConfig().NextDayPoints(totalDays, completed)
}

func (c Config) NextDayPoints(totalDays, completed int) int {
	if completed >= totalDays {
		return 0
	}
	return c.TotalPoints(totalDays, completed+1) - c.TotalPoints(totalDays, completed)
}

// DailyPoints adds the bonus of every tier whose threshold the streak meets
func (c Config) DailyPoints(streak int) int {
	if streak < 0 {
		streak = 0
	}
	points := c.BasePoints
	for _, tier := range c.StreakBonuses {
		if streak >= tier.Days {
			points += tier.Bonus
		}
	}
	return points
}

// TotalPoints sums per-day points over completed days counted in order,
// where the k-th day earns the base plus the single highest tier with
// Days <= k. The completion bonus is added when completed == totalDays.
// A non-positive totalDays yields 0.
func (c Config) TotalPoints(totalDays, completed int) int {
	if totalDays <= 0 || completed <= 0 {
		return 0
	}

	total := 0
	for k := 1; k <= completed; k++ {
		total += c.BasePoints + c.highestTierBonus(k)
	}
	if completed == totalDays {
		total += c.CompletionBonus
	}
	return total
}

func (c Config) highestTierBonus(count int) int {
	for i := len(c.StreakBonuses) - 1; i >= 0; i-- {
		if count >= c.StreakBonuses[i].Days {
			return c.StreakBonuses[i].Bonus
		}
	}
	return 0
}
