package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/streaklit/internal/backup"
	"github.com/julianstephens/streaklit/internal/clock"
	"github.com/julianstephens/streaklit/internal/events"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/practice"
	"github.com/julianstephens/streaklit/internal/shop"
	"github.com/julianstephens/streaklit/internal/storage"
	"github.com/julianstephens/streaklit/internal/storage/sqlite"
)

var ErrBackupUnsupported = errors.New("backups are only available for SQLite storage, use pg_dump for PostgreSQL")

type Context struct {
	Store     storage.Provider
	Practices *practice.Service
	Shop      *shop.Service
	Bus       *events.Bus
	UserID    string
	Clock     clock.Clock
	Out       io.Writer

	ctx context.Context
}

// NewContext wires the services every command shares. A nil clock uses the system time.
func NewContext(ctx context.Context, store storage.Provider, userID string, c clock.Clock) *Context {
	if c == nil {
		c = clock.System{}
	}
	bus := events.NewBus()
	practices := practice.New(store, nil, bus, c)
	return &Context{
		Store:     store,
		Practices: practices,
		Shop:      shop.New(store, practices, c),
		Bus:       bus,
		UserID:    userID,
		Clock:     c,
		Out:       os.Stdout,
		ctx:       ctx,
	}
}

func (c *Context) Ctx() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// Notify prints reward events as they are published until stop is called
func (c *Context) Notify() (stop func()) {
	return c.Bus.Subscribe(func(evt events.Event) {
		title, msg := events.Describe(evt)
		if title == "" {
			return
		}
		c.Printf("%s %s\n", NoticeStyle.Render(title), msg)
	})
}

// ResolvePractice looks up one of the current user's practices by name or ID
func (c *Context) ResolvePractice(ref string) (models.Practice, error) {
	return c.Practices.Resolve(c.Ctx(), c.UserID, ref)
}

// Backups returns the snapshot manager for the SQLite database
func (c *Context) Backups() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, ErrBackupUnsupported
	}
	return backup.NewManager(c.Store.GetConfigPath(), c.Clock), nil
}

// AutoBackup snapshots the database, logging instead of failing
func (c *Context) AutoBackup() {
	mgr, err := c.Backups()
	if err != nil {
		logger.Debug("Automatic backup skipped", "error", err)
		return
	}
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
