package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streaklit/internal/validation"
)

// PracticeForm holds the new-practice form fields
type PracticeForm struct {
	Name string
	Days string
}

// TotalDays parses the day count entered in the form
func (fm *PracticeForm) TotalDays() (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(fm.Days))
	if err != nil {
		return 0, fmt.Errorf("number of days must be a whole number")
	}
	return days, nil
}

// ConfirmForm holds the answer to a yes/no prompt
type ConfirmForm struct {
	Confirmed bool
}

// NewPracticeForm creates the form for starting a new challenge
func NewPracticeForm(fm *PracticeForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Practice Name").
				Placeholder("Morning meditation").
				Value(&fm.Name).
				Validate(validation.ValidatePracticeName),
			huh.NewInput().
				Title("Number of Days").
				Placeholder("30").
				Value(&fm.Days).
				Validate(func(s string) error {
					days, err := (&PracticeForm{Days: s}).TotalDays()
					if err != nil {
						return err
					}
					return validation.ValidateTotalDays(days)
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewConfirmForm creates a yes/no prompt
func NewConfirmForm(title, description string, fm *ConfirmForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&fm.Confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}
