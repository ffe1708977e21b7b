package practice

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/streaklit/internal/clock"
	"github.com/julianstephens/streaklit/internal/events"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/rewards"
	"github.com/julianstephens/streaklit/internal/storage"
	"github.com/julianstephens/streaklit/internal/storage/sqlite"
)

var testNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func setupTestSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func setupTestService(t *testing.T) (*Service, *sqlite.Store, *events.Bus) {
	t.Helper()
	store := setupTestSQLiteStore(t)
	bus := events.NewBus()
	return New(store, nil, bus, clock.Fixed(testNow)), store, bus
}

func toggleDays(t *testing.T, svc *Service, id string, indexes ...int) ToggleResult {
	t.Helper()
	var last ToggleResult
	for _, i := range indexes {
		res, err := svc.ToggleDay(context.Background(), id, i)
		if err != nil {
			t.Fatalf("ToggleDay(%d) failed: %v", i, err)
		}
		last = res
	}
	return last
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	if _, err := svc.Create(ctx, "u1", "  ", 30); err == nil {
		t.Error("expected error for blank name")
	}
	if _, err := svc.Create(ctx, "u1", "Run", 0); !errors.Is(err, rewards.ErrInvalidTotalDays) {
		t.Errorf("expected ErrInvalidTotalDays, got %v", err)
	}

	p, err := svc.Create(ctx, "u1", "  Run  ", 30)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name != "Run" || !p.CreatedAt.Equal(testNow) || p.ID == "" {
		t.Errorf("unexpected practice %+v", p)
	}
	if _, err := svc.Create(ctx, "u1", "run", 10); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestDayDate(t *testing.T) {
	svc, _, _ := setupTestService(t)
	p := models.Practice{TotalDays: 3, CreatedAt: testNow}

	tests := []struct {
		index   int
		want    string
		wantErr bool
	}{
		{0, "2024-03-01", false},
		{2, "2024-03-03", false},
		{3, "", true},
		{-1, "", true},
	}
	for _, tt := range tests {
		got, err := svc.DayDate(p, tt.index)
		if tt.wantErr {
			if !errors.Is(err, ErrDayOutOfRange) {
				t.Errorf("DayDate(%d) error = %v, want ErrDayOutOfRange", tt.index, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("DayDate(%d) = %q, %v; want %q", tt.index, got, err, tt.want)
		}
		back, err := svc.DayIndex(p, got)
		if err != nil || back != tt.index {
			t.Errorf("DayIndex(%q) = %d, %v; want %d", got, back, err, tt.index)
		}
	}

	dates := svc.Dates(p)
	if len(dates) != 3 || dates[0] != "2024-03-01" || dates[2] != "2024-03-03" {
		t.Errorf("Dates() = %v", dates)
	}
}

func TestToggleDayFullChallenge(t *testing.T) {
	ctx := context.Background()
	svc, store, bus := setupTestService(t)

	var unlocked []string
	var completed, earned int
	unsubscribe := bus.Subscribe(func(evt events.Event) {
		switch e := evt.(type) {
		case events.AchievementUnlocked:
			unlocked = append(unlocked, e.Achievement.Title)
		case events.PracticeCompleted:
			completed++
			if e.CompletionBonus != 100 {
				t.Errorf("completion bonus = %d, want 100", e.CompletionBonus)
			}
		case events.PointsEarned:
			earned += e.Delta
		}
	})
	defer unsubscribe()

	p, err := svc.Create(ctx, "u1", "Meditate", 7)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	res := toggleDays(t, svc, p.ID, 0, 1, 2, 3, 4, 5, 6)
	got := res.Practice

	if !got.IsCompleted || got.CurrentStreak != 7 || got.LongestStreak != 7 {
		t.Errorf("unexpected progress %+v", got)
	}
	// 190 base (6x10 + 30 + 100 completion) plus 160 achievement points
	if got.AchievementPoints != 160 {
		t.Errorf("achievement points = %d, want 160", got.AchievementPoints)
	}
	if got.Points != 350 {
		t.Errorf("points = %d, want 350", got.Points)
	}
	if got.LastPracticeDate == nil || !got.LastPracticeDate.Equal(testNow) {
		t.Errorf("last practice date = %v", got.LastPracticeDate)
	}

	want := []string{"Quarter Way", "Halfway Hero", "Almost There", "Week Warrior", "Challenge Champion"}
	if len(unlocked) != len(want) {
		t.Fatalf("unlocked %v, want %v", unlocked, want)
	}
	for i := range want {
		if unlocked[i] != want[i] {
			t.Errorf("unlock %d = %q, want %q", i, unlocked[i], want[i])
		}
	}
	if completed != 1 {
		t.Errorf("expected one completion event, got %d", completed)
	}
	if earned != 350 {
		t.Errorf("points earned events sum to %d, want 350", earned)
	}

	stored, err := store.GetPractice(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPractice failed: %v", err)
	}
	if stored.Points != 350 || len(stored.CompletedDays) != 7 {
		t.Errorf("stored snapshot out of date: %+v", stored)
	}

	profile, err := store.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.TotalCoins != 350 {
		t.Errorf("wallet = %d, want 350", profile.TotalCoins)
	}
}

func TestToggleOffAndOnDoesNotReaward(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setupTestService(t)

	p, err := svc.Create(ctx, "u1", "Read", 8)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	first := toggleDays(t, svc, p.ID, 0, 1)
	if len(first.Achievements) != 1 || first.Achievements[0].Title != "Quarter Way" {
		t.Fatalf("expected Quarter Way on day 2, got %+v", first.Achievements)
	}

	off := toggleDays(t, svc, p.ID, 1)
	if off.Checked {
		t.Error("second toggle of a day should uncheck it")
	}
	if off.PointsEarned >= 0 {
		t.Errorf("unchecking should lose points, got %+d", off.PointsEarned)
	}
	if off.Practice.AchievementPoints != 20 {
		t.Errorf("achievement points must be kept, got %d", off.Practice.AchievementPoints)
	}

	on := toggleDays(t, svc, p.ID, 1)
	if len(on.Achievements) != 0 {
		t.Errorf("Quarter Way re-awarded: %+v", on.Achievements)
	}
	if on.Practice.Points != first.Practice.Points {
		t.Errorf("points drifted: %d then %d", first.Practice.Points, on.Practice.Points)
	}

	list, err := store.ListAchievements(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListAchievements failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected one stored achievement, got %d", len(list))
	}
}

func TestToggleLostInsertRaceIsNotCounted(t *testing.T) {
	ctx := context.Background()
	store := setupTestSQLiteStore(t)

	// the checker always answers "not yet awarded", as if another writer
	// inserted between the check and our insert
	blind := rewards.ExistenceFunc(func(context.Context, string, string) (bool, error) { return false, nil })
	eval := rewards.NewEvaluator(blind, rewards.WithClock(clock.Fixed(testNow)))
	svc := New(store, eval, nil, clock.Fixed(testNow))

	p, err := svc.Create(ctx, "u1", "Write", 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	first := toggleDays(t, svc, p.ID, 0)
	if len(first.Achievements) != 1 {
		t.Fatalf("expected Quarter Way, got %+v", first.Achievements)
	}

	second := toggleDays(t, svc, p.ID, 1)
	for _, a := range second.Achievements {
		if a.Title == "Quarter Way" {
			t.Error("lost race achievement reported as unlocked")
		}
	}
	if second.Practice.AchievementPoints != 20+30 {
		t.Errorf("achievement points = %d, want 50", second.Practice.AchievementPoints)
	}
}

var errDiskFull = errors.New("disk full")

// flakyStore fails the next n snapshot writes made inside UpdatePracticeFunc
type flakyStore struct {
	storage.Provider
	failures int
}

func (f *flakyStore) UpdatePracticeFunc(ctx context.Context, id string, fn func(storage.PracticeTx, models.Practice) error) error {
	return f.Provider.UpdatePracticeFunc(ctx, id, func(tx storage.PracticeTx, p models.Practice) error {
		return fn(flakyTx{PracticeTx: tx, store: f}, p)
	})
}

type flakyTx struct {
	storage.PracticeTx
	store *flakyStore
}

func (t flakyTx) UpdatePractice(ctx context.Context, p models.Practice) error {
	if t.store.failures > 0 {
		t.store.failures--
		return errDiskFull
	}
	return t.PracticeTx.UpdatePractice(ctx, p)
}

func TestToggleFailedSaveKeepsNoAchievements(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Provider: setupTestSQLiteStore(t)}
	svc := New(store, nil, nil, clock.Fixed(testNow))

	p, err := svc.Create(ctx, "u1", "Write", 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	store.failures = 1
	if _, err := svc.ToggleDay(ctx, p.ID, 0); !errors.Is(err, errDiskFull) {
		t.Fatalf("expected errDiskFull, got %v", err)
	}
	list, err := store.ListAchievements(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListAchievements failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("failed save left achievements behind: %+v", list)
	}
	stored, err := store.GetPractice(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPractice failed: %v", err)
	}
	if len(stored.CompletedDays) != 0 || stored.Points != 0 {
		t.Fatalf("failed save changed the practice: %+v", stored)
	}

	res, err := svc.ToggleDay(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(res.Achievements) != 1 || res.Achievements[0].Title != "Quarter Way" {
		t.Fatalf("retry should unlock Quarter Way, got %+v", res.Achievements)
	}
	wantPoints := rewards.DefaultConfig().TotalPoints(4, 1) + 20
	if res.Practice.AchievementPoints != 20 || res.Practice.Points != wantPoints {
		t.Errorf("achievement points = %d, points = %d, want 20 and %d",
			res.Practice.AchievementPoints, res.Practice.Points, wantPoints)
	}
	list, err = store.ListAchievements(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListAchievements failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected one stored achievement, got %d", len(list))
	}
}

func TestToggleConcurrentDaysAllKept(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setupTestService(t)

	const total = 10
	p, err := svc.Create(ctx, "u1", "Row", total)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, total)
	for i := range total {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ToggleDay(ctx, p.ID, i); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("ToggleDay failed: %v", err)
	}

	got, err := store.GetPractice(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPractice failed: %v", err)
	}
	if len(got.CompletedDays) != total || !got.IsCompleted {
		t.Fatalf("expected all %d days kept, got %v", total, got.CompletedDays)
	}

	list, err := store.ListAchievements(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListAchievements failed: %v", err)
	}
	sum := 0
	for _, a := range list {
		sum += a.Points
	}
	if got.AchievementPoints != sum {
		t.Errorf("achievement points = %d, stored achievements sum to %d", got.AchievementPoints, sum)
	}
	if want := rewards.DefaultConfig().TotalPoints(total, total) + sum; got.Points != want {
		t.Errorf("points = %d, want %d", got.Points, want)
	}
}

func TestRenameKeepsConcurrentToggle(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setupTestService(t)

	p, err := svc.Create(ctx, "u1", "Draw", 5)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := svc.ToggleDay(ctx, p.ID, 0); err != nil {
			t.Errorf("ToggleDay failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := svc.Rename(ctx, p.ID, "Sketch"); err != nil {
			t.Errorf("Rename failed: %v", err)
		}
	}()
	wg.Wait()

	got, err := store.GetPractice(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPractice failed: %v", err)
	}
	if got.Name != "Sketch" || len(got.CompletedDays) != 1 {
		t.Errorf("got name %q days %v, want Sketch with one day", got.Name, got.CompletedDays)
	}
}

func TestToggleDateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	p, err := svc.Create(ctx, "u1", "Stretch", 5)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.ToggleDate(ctx, p.ID, "2024-02-29"); !errors.Is(err, ErrDayOutOfRange) {
		t.Errorf("expected ErrDayOutOfRange before start, got %v", err)
	}
	if _, err := svc.ToggleDate(ctx, p.ID, "2024-03-06"); !errors.Is(err, ErrDayOutOfRange) {
		t.Errorf("expected ErrDayOutOfRange after end, got %v", err)
	}
	if _, err := svc.ToggleDate(ctx, p.ID, "March 3"); !errors.Is(err, rewards.ErrInvalidDay) {
		t.Errorf("expected ErrInvalidDay, got %v", err)
	}

	res, err := svc.ToggleDate(ctx, p.ID, "2024-03-03")
	if err != nil {
		t.Fatalf("ToggleDate failed: %v", err)
	}
	if !res.Checked || res.Date != "2024-03-03" || res.Practice.CurrentStreak != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestResolveRenameDelete(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setupTestService(t)

	p, err := svc.Create(ctx, "u1", "Journal", 10)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, "u2", "Other", 10); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byName, err := svc.Resolve(ctx, "u1", "journal")
	if err != nil || byName.ID != p.ID {
		t.Fatalf("Resolve by name = %+v, %v", byName, err)
	}
	byID, err := svc.Resolve(ctx, "u1", p.ID)
	if err != nil || byID.ID != p.ID {
		t.Fatalf("Resolve by id = %+v, %v", byID, err)
	}
	if _, err := svc.Resolve(ctx, "u1", "Other"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("other users' practices must not resolve, got %v", err)
	}

	renamed, err := svc.Rename(ctx, p.ID, "Morning pages")
	if err != nil || renamed.Name != "Morning pages" {
		t.Fatalf("Rename = %+v, %v", renamed, err)
	}

	toggleDays(t, svc, p.ID, 0, 1, 2)
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	profile, err := store.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.TotalCoins != 0 {
		t.Errorf("wallet should drop with the deleted practice, got %d", profile.TotalCoins)
	}
}

func TestSyncCoinsKeepsSpending(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setupTestService(t)

	p, err := svc.Create(ctx, "u1", "Walk", 30)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	toggleDays(t, svc, p.ID, 0, 1, 2)

	profile, err := store.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	profile.SpentCoins = 15
	profile.TotalCoins -= 15
	if err := store.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	synced, err := svc.SyncCoins(ctx, "u1")
	if err != nil {
		t.Fatalf("SyncCoins failed: %v", err)
	}
	if synced.TotalCoins != profile.TotalCoins {
		t.Errorf("sync refunded spending: %d, want %d", synced.TotalCoins, profile.TotalCoins)
	}
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	empty, err := svc.Summary(ctx, "u1")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if empty.CompletionRate != 0 || empty.Practices != 0 {
		t.Errorf("unexpected empty summary %+v", empty)
	}

	a, _ := svc.Create(ctx, "u1", "A", 2)
	b, _ := svc.Create(ctx, "u1", "B", 8)
	toggleDays(t, svc, a.ID, 0, 1)
	toggleDays(t, svc, b.ID, 0, 1, 3, 4, 5)

	s, err := svc.Summary(ctx, "u1")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if s.Practices != 2 || s.TotalDays != 10 || s.TotalCompletedDays != 7 {
		t.Errorf("unexpected totals %+v", s)
	}
	if math.Abs(s.CompletionRate-70) > 1e-9 {
		t.Errorf("completion rate = %v, want 70", s.CompletionRate)
	}
	if s.LongestStreak != 3 || s.CompletedChallenges != 1 {
		t.Errorf("unexpected streak/completions %+v", s)
	}
	if s.TotalCoins <= 0 {
		t.Errorf("expected coins, got %d", s.TotalCoins)
	}
}
