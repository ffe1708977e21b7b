package system

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/clock"
	"github.com/julianstephens/streaklit/internal/storage/sqlite"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupTestInitDB(t *testing.T) (*cli.Context, string, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	ctx := cli.NewContext(context.Background(), store, "u1", clock.Fixed(testNow))
	ctx.Out = &bytes.Buffer{}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, dbPath, cleanup
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	err := cmd.Run(ctx)

	if err != nil {
		t.Errorf("init command failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}

	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}

	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	if _, err := ctx.Practices.Create(ctx.Ctx(), ctx.UserID, "Meditate", 7); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("force init failed: %v", err)
	}

	practices, err := ctx.Practices.List(ctx.Ctx(), ctx.UserID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(practices) != 0 {
		t.Errorf("expected an empty database after --force, got %d practices", len(practices))
	}
	if out := ctx.Out.(*bytes.Buffer).String(); !strings.Contains(out, "Deleted existing database") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "same") {
		t.Errorf("expected same source error, got %v", err)
	}
}

func TestInitCmd_CopiesFromSource(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "source.db")
	src := sqlite.NewStore(srcPath)
	srcCtx := cli.NewContext(context.Background(), src, "u1", clock.Fixed(testNow))
	if err := src.Init(); err != nil {
		t.Fatalf("failed to init source: %v", err)
	}

	p, err := srcCtx.Practices.Create(srcCtx.Ctx(), "u1", "Run", 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := srcCtx.Practices.ToggleDay(srcCtx.Ctx(), p.ID, i); err != nil {
			t.Fatalf("ToggleDay failed: %v", err)
		}
	}
	if _, err := srcCtx.Shop.Purchase(srcCtx.Ctx(), "u1", "streak-flame"); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	srcAchievements, _ := srcCtx.Practices.Achievements(srcCtx.Ctx(), p.ID)
	srcProfile, _ := src.GetProfile(srcCtx.Ctx(), "u1")
	srcPractice, _ := src.GetPractice(srcCtx.Ctx(), p.ID)
	if err := src.Close(); err != nil {
		t.Fatalf("failed to close source: %v", err)
	}

	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()
	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	got, err := ctx.ResolvePractice("Run")
	if err != nil {
		t.Fatalf("copied practice not found: %v", err)
	}
	if len(got.CompletedDays) != 4 || !got.IsCompleted || got.Points != srcPractice.Points {
		t.Errorf("unexpected copied practice %+v", got)
	}
	achievements, err := ctx.Practices.Achievements(ctx.Ctx(), got.ID)
	if err != nil || len(achievements) != len(srcAchievements) {
		t.Errorf("achievements = %d, %v; want %d", len(achievements), err, len(srcAchievements))
	}
	profile, err := ctx.Store.GetProfile(ctx.Ctx(), "u1")
	if err != nil || profile.TotalCoins != srcProfile.TotalCoins || profile.SpentCoins != srcProfile.SpentCoins {
		t.Errorf("wallet = %+v, %v; want %+v", profile, err, srcProfile)
	}
	owned, err := ctx.Shop.Owned(ctx.Ctx(), "u1")
	if err != nil || len(owned) != 1 || owned[0].ItemID != "streak-flame" {
		t.Errorf("owned = %+v, %v", owned, err)
	}
}
