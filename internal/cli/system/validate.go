package system

import (
	"errors"
	"strings"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/validation"
)

// ValidateCmd reports stored practices whose cached progress no longer
// matches their completed days
type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	practices, err := ctx.Practices.List(ctx.Ctx(), ctx.UserID)
	if err != nil {
		return err
	}

	result := validation.New().ValidatePractices(practices)
	ctx.Println(strings.TrimRight(result.FormatReport(), "\n"))
	if result.HasConflicts() {
		return errors.New("validation failed")
	}
	return nil
}
