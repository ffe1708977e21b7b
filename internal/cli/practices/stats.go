package practices

import (
	"github.com/julianstephens/streaklit/internal/cli"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Practices.Summary(ctx.Ctx(), ctx.UserID)
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render("Progress"))
	ctx.Printf("  Coins:                %d\n", s.TotalCoins)
	ctx.Printf("  Practices:            %d\n", s.Practices)
	ctx.Printf("  Completed challenges: %d\n", s.CompletedChallenges)
	ctx.Printf("  Days completed:       %d/%d (%.0f%%)\n", s.TotalCompletedDays, s.TotalDays, s.CompletionRate)
	ctx.Printf("  Longest streak:       %d\n", s.LongestStreak)
	return nil
}
