package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/migration"
	"github.com/julianstephens/streaklit/internal/practice"
	"github.com/julianstephens/streaklit/internal/rewards"
	"github.com/julianstephens/streaklit/internal/shop"
	"github.com/julianstephens/streaklit/internal/storage"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a short suggestion for errors the user can act on, or "" if none applies
func Hint(err error) string {
	switch {
	case stderrors.Is(err, storage.ErrNotInitialized):
		return "run 'streaklit init' first"
	case stderrors.Is(err, migration.ErrSchemaBehind):
		return "run 'streaklit migrate' to upgrade the database"
	case stderrors.Is(err, storage.ErrNotFound):
		return "run 'streaklit practice list' to see available practices"
	case stderrors.Is(err, rewards.ErrInvalidDay):
		return "dates use the YYYY-MM-DD format"
	case stderrors.Is(err, practice.ErrDayOutOfRange):
		return "day indexes start at 0 and must be below the practice's total days"
	case stderrors.Is(err, shop.ErrInsufficientCoins):
		return "complete more practice days to earn coins"
	default:
		return ""
	}
}

// Report logs err and writes it to w with a hint when one applies
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintf(w, "%s\n", Format(err))
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}

// Fatal reports err on stderr and exits the program with exit code 1.
// Deferred calls do not run; main should prefer Report and return.
func Fatal(err error) {
	if err != nil {
		Report(os.Stderr, err)
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
