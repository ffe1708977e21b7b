package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/storage"
	"github.com/julianstephens/streaklit/internal/storage/postgres"
	"github.com/julianstephens/streaklit/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy the current user's data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(storage.ExpandPath(c.Source))
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized streaklit storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx, c.Source); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Println("Copy completed successfully!")
	}

	return nil
}

func openSource(source string) (storage.Provider, error) {
	if storage.IsPostgres(source) {
		if valid, err := postgres.ValidateConnString(source); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	}
	return sqlite.NewStore(storage.ExpandPath(source)), nil
}

// copyData copies the current user's practices, achievements, wallet and
// owned items from source into the freshly initialized store
func (c *InitCmd) copyData(ctx *cli.Context, source string) error {
	src, err := openSource(source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	cctx := ctx.Ctx()

	ctx.Println("  Copying practices...")
	practices, err := src.ListPractices(cctx, ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to get practices from source: %w", err)
	}
	achievementCount := 0
	// oldest first, so newest-first listing order survives the copy
	for i := len(practices) - 1; i >= 0; i-- {
		p := practices[i]
		if err := ctx.Store.AddPractice(cctx, p); err != nil {
			return fmt.Errorf("failed to add practice %s: %w", p.ID, err)
		}
		achievements, err := src.ListAchievements(cctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to get achievements for %s: %w", p.ID, err)
		}
		for _, a := range achievements {
			inserted, err := ctx.Store.InsertAchievementIfAbsent(cctx, a)
			if err != nil {
				return fmt.Errorf("failed to add achievement %s: %w", a.ID, err)
			}
			if inserted {
				achievementCount++
			}
		}
	}
	ctx.Printf("    Copied %d practices\n", len(practices))
	ctx.Printf("    Copied %d achievements\n", achievementCount)

	ctx.Println("  Copying wallet...")
	profile, err := src.GetProfile(cctx, ctx.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		ctx.Println("    No wallet to copy")
		return nil
	case err != nil:
		return fmt.Errorf("failed to get wallet from source: %w", err)
	}
	if err := ctx.Store.SaveProfile(cctx, profile); err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}

	ctx.Println("  Copying owned items...")
	items, err := src.ListUserItems(cctx, ctx.UserID)
	if err != nil {
		return fmt.Errorf("failed to get owned items from source: %w", err)
	}
	for _, ui := range items {
		// already paid for in the source wallet
		if err := ctx.Store.PurchaseItem(cctx, ui, 0); err != nil && !errors.Is(err, storage.ErrDuplicate) {
			return fmt.Errorf("failed to add owned item %s: %w", ui.ItemID, err)
		}
	}
	ctx.Printf("    Copied %d owned items\n", len(items))

	return nil
}
