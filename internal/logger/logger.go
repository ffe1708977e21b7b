// Package logger is the process-wide structured logger. Until Init (or Use)
// is called every helper is a no-op, so packages can log unconditionally.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/streaklit/internal/constants"
)

var current atomic.Pointer[log.Logger]

type Config struct {
	// Debug tees output to stderr, reports callers and forces DebugLevel
	Debug     bool
	ConfigDir string
	// Level is a charmbracelet/log level name, Warn when empty
	Level string
}

func (c Config) level() (log.Level, error) {
	if c.Debug {
		return log.DebugLevel, nil
	}
	if c.Level == "" {
		return log.WarnLevel, nil
	}
	lvl, err := log.ParseLevel(c.Level)
	if err != nil {
		return log.WarnLevel, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return lvl, nil
}

// Init writes to a rotating file under <ConfigDir>/logs. The returned closer
// releases the file and should be deferred by main.
func Init(cfg Config) (io.Closer, error) {
	lvl, err := cfg.level()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cfg.ConfigDir, constants.LogDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, constants.LogFileName),
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   true,
	}

	var w io.Writer = file
	if cfg.Debug {
		w = io.MultiWriter(os.Stderr, file)
	}

	Use(log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           lvl,
		Prefix:          constants.AppName,
	}))
	return file, nil
}

// NewWriterLogger builds an unrotated logger on w, for tests and for
// commands that run before a config directory exists
func NewWriterLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: constants.AppName,
	})
}

// Use swaps the process logger; nil silences logging
func Use(l *log.Logger) {
	current.Store(l)
}

// Get returns the process logger, or nil before Init
func Get() *log.Logger {
	return current.Load()
}

func Debug(msg string, keyvals ...any) {
	if l := current.Load(); l != nil {
		l.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if l := current.Load(); l != nil {
		l.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if l := current.Load(); l != nil {
		l.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if l := current.Load(); l != nil {
		l.Error(msg, keyvals...)
	}
}

// Fatal logs at error level and exits with status 1
func Fatal(msg string, keyvals ...any) {
	Error(msg, keyvals...)
	os.Exit(1)
}
