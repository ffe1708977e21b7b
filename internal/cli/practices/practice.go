package practices

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/practice"
	"github.com/julianstephens/streaklit/internal/rewards"
	"github.com/julianstephens/streaklit/internal/tui"
	"github.com/julianstephens/streaklit/internal/tui/components/grid"
)

type PracticeCmd struct {
	New          PracticeNewCmd          `cmd:"" help:"Start a new practice challenge."`
	List         PracticeListCmd         `cmd:"" help:"List practices."`
	Show         PracticeShowCmd         `cmd:"" help:"Show a practice's progress grid."`
	Mark         PracticeMarkCmd         `cmd:"" help:"Check or uncheck a day (defaults to today)."`
	Rename       PracticeRenameCmd       `cmd:"" help:"Rename a practice."`
	Delete       PracticeDeleteCmd       `cmd:"" help:"Delete a practice and its achievements."`
	Achievements PracticeAchievementsCmd `cmd:"" help:"List a practice's unlocked achievements."`
}

type PracticeNewCmd struct {
	Name string `arg:"" optional:"" help:"Practice name."`
	Days int    `help:"Number of days in the challenge." short:"d"`
}

func (c *PracticeNewCmd) Run(ctx *cli.Context) error {
	name, days := strings.TrimSpace(c.Name), c.Days
	if name == "" || days == 0 {
		fm := &tui.PracticeForm{Name: name}
		if days != 0 {
			fm.Days = fmt.Sprint(days)
		}
		if err := tui.NewPracticeForm(fm).Run(); err != nil {
			return err
		}
		n, err := fm.TotalDays()
		if err != nil {
			return err
		}
		name, days = fm.Name, n
	}

	p, err := ctx.Practices.Create(ctx.Ctx(), ctx.UserID, name, days)
	if err != nil {
		return err
	}

	ctx.Printf("Started %s: %d days from %s\n", cli.TitleStyle.Render(p.Name), p.TotalDays, ctx.Practices.Dates(p)[0])
	return nil
}

type PracticeListCmd struct{}

func (c *PracticeListCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Practices.List(ctx.Ctx(), ctx.UserID)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		ctx.Println("No practices found.")
		return nil
	}

	for _, p := range list {
		status := ""
		if p.IsCompleted {
			status = cli.SuccessStyle.Render(" [COMPLETED]")
		}
		ctx.Printf("%s%s  %d/%d days  streak %d  %d points  %s\n",
			p.Name, status, len(p.CompletedDays), p.TotalDays,
			p.CurrentStreak, p.Points, cli.MutedStyle.Render(p.ID))
	}
	return nil
}

type PracticeShowCmd struct {
	Practice string `arg:"" help:"Practice name or ID."`
}

func (c *PracticeShowCmd) Run(ctx *cli.Context) error {
	p, err := ctx.ResolvePractice(c.Practice)
	if err != nil {
		return err
	}
	achievements, err := ctx.Practices.Achievements(ctx.Ctx(), p.ID)
	if err != nil {
		return err
	}

	cells := grid.Cells(p, ctx.Practices.Dates(p), ctx.Practices.Today())
	ctx.Println(grid.Header(p))
	ctx.Println()
	ctx.Println(grid.Render(cells, grid.DefaultColumns, -1))
	ctx.Println()
	ctx.Println(grid.Achievements(achievements))
	return nil
}

type PracticeMarkCmd struct {
	Practice string `arg:"" help:"Practice name or ID."`
	Day      *int   `help:"Day index, starting at 0." xor:"when"`
	Date     string `help:"Calendar date (YYYY-MM-DD)." xor:"when"`
}

func (c *PracticeMarkCmd) Run(ctx *cli.Context) error {
	p, err := ctx.ResolvePractice(c.Practice)
	if err != nil {
		return err
	}

	stop := ctx.Notify()
	defer stop()

	var result practice.ToggleResult
	switch {
	case c.Day != nil:
		result, err = ctx.Practices.ToggleDay(ctx.Ctx(), p.ID, *c.Day)
	case c.Date != "":
		result, err = ctx.Practices.ToggleDate(ctx.Ctx(), p.ID, c.Date)
	default:
		result, err = ctx.Practices.ToggleDate(ctx.Ctx(), p.ID, ctx.Practices.Today())
		if errors.Is(err, practice.ErrDayOutOfRange) {
			return fmt.Errorf("today is not part of %q, pass --day or --date: %w", p.Name, err)
		}
	}
	if err != nil {
		return err
	}

	verb := "Unchecked"
	if result.Checked {
		verb = "Checked"
	}
	updated := result.Practice
	ctx.Printf("%s %s for %s\n", verb, result.Date, updated.Name)
	ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("%d/%d days  streak %d  best %d  %d points",
		len(updated.CompletedDays), updated.TotalDays,
		updated.CurrentStreak, updated.LongestStreak, updated.Points)))
	if result.Checked && !updated.IsCompleted {
		ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("Keep going: the next day is worth %d points",
			rewards.NextDayPoints(updated.TotalDays, len(updated.CompletedDays)))))
	}
	return nil
}

type PracticeRenameCmd struct {
	Practice string `arg:"" help:"Practice name or ID."`
	Name     string `arg:"" help:"New name."`
}

func (c *PracticeRenameCmd) Run(ctx *cli.Context) error {
	p, err := ctx.ResolvePractice(c.Practice)
	if err != nil {
		return err
	}
	renamed, err := ctx.Practices.Rename(ctx.Ctx(), p.ID, c.Name)
	if err != nil {
		return err
	}
	ctx.Printf("Renamed %s to %s\n", p.Name, renamed.Name)
	return nil
}

type PracticeDeleteCmd struct {
	Practice string `arg:"" help:"Practice name or ID."`
	Yes      bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *PracticeDeleteCmd) Run(ctx *cli.Context) error {
	p, err := ctx.ResolvePractice(c.Practice)
	if err != nil {
		return err
	}

	if !c.Yes {
		fm := &tui.ConfirmForm{}
		form := tui.NewConfirmForm(fmt.Sprintf("Delete %s?", p.Name), "Its progress and achievements are removed too.", fm)
		if err := form.Run(); err != nil {
			return err
		}
		if !fm.Confirmed {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Practices.Delete(ctx.Ctx(), p.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted practice: %s\n", p.Name)
	return nil
}

type PracticeAchievementsCmd struct {
	Practice string `arg:"" help:"Practice name or ID."`
}

func (c *PracticeAchievementsCmd) Run(ctx *cli.Context) error {
	p, err := ctx.ResolvePractice(c.Practice)
	if err != nil {
		return err
	}
	achievements, err := ctx.Practices.Achievements(ctx.Ctx(), p.ID)
	if err != nil {
		return err
	}

	if len(achievements) == 0 {
		ctx.Println("No achievements yet.")
		return nil
	}
	for _, a := range achievements {
		ctx.Printf("%s  %-10s +%-4d %s  %s\n",
			a.UnlockedAt.Format("2006-01-02"), a.Type, a.Points,
			cli.NoticeStyle.Render(a.Title), cli.MutedStyle.Render(a.Description))
	}
	return nil
}
