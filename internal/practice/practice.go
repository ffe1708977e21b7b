// Package practice runs the practice challenge lifecycle: creating
// challenges, toggling days, awarding achievements and keeping the coin
// wallet in step with earned points.
package practice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/streaklit/internal/clock"
	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/events"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/rewards"
	"github.com/julianstephens/streaklit/internal/storage"
	"github.com/julianstephens/streaklit/internal/validation"
)

var ErrDayOutOfRange = errors.New("day is outside the challenge")

type Service struct {
	store storage.Provider
	eval  *rewards.Evaluator
	bus   *events.Bus
	clock clock.Clock
	newID func() string
}

// ToggleResult describes the outcome of checking or unchecking one day
type ToggleResult struct {
	Practice     models.Practice
	Date         string
	Checked      bool
	Achievements []models.Achievement
	PointsEarned int
}

// New wires a Service. A nil evaluator checks existence inside the toggle's
// transaction, a nil bus drops events and a nil clock uses the system time.
func New(store storage.Provider, eval *rewards.Evaluator, bus *events.Bus, c clock.Clock) *Service {
	if c == nil {
		c = clock.System{}
	}
	if eval == nil {
		eval = rewards.NewEvaluator(nil, rewards.WithClock(c))
	}
	if bus == nil {
		bus = events.NewBus()
	}
	return &Service{
		store: store,
		eval:  eval,
		bus:   bus,
		clock: c,
		newID: func() string { return uuid.New().String() },
	}
}

func (s *Service) Create(ctx context.Context, userID, name string, totalDays int) (models.Practice, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidatePracticeName(name); err != nil {
		return models.Practice{}, err
	}
	if err := validation.ValidateTotalDays(totalDays); err != nil {
		return models.Practice{}, err
	}

	p := models.Practice{
		ID:            s.newID(),
		UserID:        userID,
		Name:          name,
		TotalDays:     totalDays,
		CompletedDays: []string{},
		CreatedAt:     s.clock.Now(),
	}
	if err := s.store.AddPractice(ctx, p); err != nil {
		return models.Practice{}, err
	}

	logger.Info("Created practice", "id", p.ID, "name", p.Name, "total_days", totalDays)
	return p, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Practice, error) {
	return s.store.ListPractices(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id string) (models.Practice, error) {
	return s.store.GetPractice(ctx, id)
}

// Resolve finds one of the user's practices by name, falling back to its ID
func (s *Service) Resolve(ctx context.Context, userID, ref string) (models.Practice, error) {
	ref = strings.TrimSpace(ref)
	p, err := s.store.GetPracticeByName(ctx, userID, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Practice{}, err
	}

	p, err = s.store.GetPractice(ctx, ref)
	if err != nil {
		return models.Practice{}, fmt.Errorf("practice %q: %w", ref, storage.ErrNotFound)
	}
	if p.UserID != userID {
		return models.Practice{}, fmt.Errorf("practice %q: %w", ref, storage.ErrNotFound)
	}
	return p, nil
}

func (s *Service) Rename(ctx context.Context, id, name string) (models.Practice, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidatePracticeName(name); err != nil {
		return models.Practice{}, err
	}
	var renamed models.Practice
	err := s.store.UpdatePracticeFunc(ctx, id, func(tx storage.PracticeTx, p models.Practice) error {
		p.Name = name
		renamed = p
		return tx.UpdatePractice(ctx, p)
	})
	if err != nil {
		return models.Practice{}, err
	}
	return renamed, nil
}

// Delete removes a practice together with its completed days and achievements
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.store.GetPractice(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePractice(ctx, id); err != nil {
		return err
	}
	logger.Info("Deleted practice", "id", id, "name", p.Name)

	if _, err := s.SyncCoins(ctx, p.UserID); err != nil {
		logger.Warn("Failed to sync coins after delete", "user", p.UserID, "error", err)
	}
	return nil
}

func (s *Service) Achievements(ctx context.Context, id string) ([]models.Achievement, error) {
	return s.store.ListAchievements(ctx, id)
}

// DayDate returns the calendar date of day index i, counted from the day the
// practice was created in the service clock's location
func (s *Service) DayDate(p models.Practice, i int) (string, error) {
	if i < 0 || i >= p.TotalDays {
		return "", fmt.Errorf("%w: index %d, practice has %d days", ErrDayOutOfRange, i, p.TotalDays)
	}
	start := p.CreatedAt.In(s.clock.Now().Location())
	return start.AddDate(0, 0, i).Format(constants.DateFormat), nil
}

// Dates lists every calendar day of the challenge in order
func (s *Service) Dates(p models.Practice) []string {
	dates := make([]string, 0, max(p.TotalDays, 0))
	for i := 0; i < p.TotalDays; i++ {
		d, _ := s.DayDate(p, i)
		dates = append(dates, d)
	}
	return dates
}

// DayIndex is the inverse of DayDate
func (s *Service) DayIndex(p models.Practice, day string) (int, error) {
	date, err := rewards.ParseDay(day)
	if err != nil {
		return 0, err
	}
	first, err := s.DayDate(p, 0)
	if err != nil {
		return 0, err
	}
	start, _ := rewards.ParseDay(first)
	i := int(date.Sub(start).Hours() / 24)
	if i < 0 || i >= p.TotalDays {
		return 0, fmt.Errorf("%w: %s", ErrDayOutOfRange, day)
	}
	return i, nil
}

// Today returns the current date in the service clock's location
func (s *Service) Today() string {
	return clock.Today(s.clock, constants.DateFormat)
}

func (s *Service) ToggleDay(ctx context.Context, id string, dayIndex int) (ToggleResult, error) {
	return s.toggle(ctx, id, func(p models.Practice) (string, error) {
		return s.DayDate(p, dayIndex)
	})
}

func (s *Service) ToggleDate(ctx context.Context, id, day string) (ToggleResult, error) {
	return s.toggle(ctx, id, func(p models.Practice) (string, error) {
		if _, err := s.DayIndex(p, day); err != nil {
			return "", err
		}
		return day, nil
	})
}

// toggle flips one day of practice id. The day is resolved against the
// snapshot read under the store's write lock, and the achievement inserts
// commit together with the new snapshot or not at all.
func (s *Service) toggle(ctx context.Context, id string, resolve func(models.Practice) (string, error)) (ToggleResult, error) {
	var before models.Practice
	var result ToggleResult

	err := s.store.UpdatePracticeFunc(ctx, id, func(tx storage.PracticeTx, p models.Practice) error {
		day, err := resolve(p)
		if err != nil {
			return err
		}
		checked := !p.HasDay(day)

		var days []string
		if checked {
			days = append(slices.Clone(p.CompletedDays), day)
		} else {
			days = slices.DeleteFunc(slices.Clone(p.CompletedDays), func(d string) bool { return d == day })
		}
		days, err = rewards.NormalizeDays(days)
		if err != nil {
			return err
		}

		// an injected checker wins; otherwise look inside the transaction
		checker := s.eval.Checker()
		if checker == nil {
			checker = tx
		}
		candidates, err := s.eval.EvaluateIn(ctx, checker, p, days)
		if err != nil {
			return fmt.Errorf("failed to evaluate achievements: %w", err)
		}

		var unlocked []models.Achievement
		for _, a := range candidates {
			inserted, err := tx.InsertAchievementIfAbsent(ctx, a)
			if err != nil {
				return err
			}
			if !inserted {
				logger.Debug("Achievement already awarded", "practice", p.ID, "title", a.Title)
				continue
			}
			unlocked = append(unlocked, a)
		}

		updated, err := s.eval.Config().Recompute(p, days, unlocked, s.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.UpdatePractice(ctx, updated); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}

		before = p
		result = ToggleResult{
			Practice:     updated,
			Date:         day,
			Checked:      checked,
			Achievements: unlocked,
			PointsEarned: updated.Points - p.Points,
		}
		return nil
	})
	if err != nil {
		return ToggleResult{}, err
	}

	updated := result.Practice
	logger.Debug("Toggled practice day",
		"practice", id, "date", result.Date, "checked", result.Checked,
		"streak", updated.CurrentStreak, "points", updated.Points, "unlocked", len(result.Achievements))

	if _, err := s.SyncCoins(ctx, updated.UserID); err != nil {
		logger.Warn("Failed to sync coins", "user", updated.UserID, "error", err)
	}

	s.publish(result, before)
	return result, nil
}

func (s *Service) publish(result ToggleResult, before models.Practice) {
	if result.PointsEarned > 0 {
		s.bus.Publish(events.PointsEarned{Practice: result.Practice, Delta: result.PointsEarned})
	}
	for _, a := range result.Achievements {
		s.bus.Publish(events.AchievementUnlocked{Achievement: a})
	}
	if result.Practice.IsCompleted && !before.IsCompleted {
		s.bus.Publish(events.PracticeCompleted{
			Practice:        result.Practice,
			CompletionBonus: s.eval.Config().CompletionBonus,
		})
	}
}

// SyncCoins corrects the wallet balance to earned points minus spent coins
func (s *Service) SyncCoins(ctx context.Context, userID string) (models.Profile, error) {
	practices, err := s.store.ListPractices(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	earned := 0
	for _, p := range practices {
		earned += p.Points
	}

	profile, err := s.store.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		profile = models.Profile{UserID: userID, TotalCoins: -1}
	case err != nil:
		return models.Profile{}, err
	}

	balance := max(earned-profile.SpentCoins, 0)
	if profile.TotalCoins == balance {
		return profile, nil
	}

	logger.Debug("Syncing coins", "user", userID, "from", profile.TotalCoins, "to", balance)
	profile.TotalCoins = balance
	profile.UpdatedAt = s.clock.Now()
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// Summary aggregates the dashboard figures across the user's practices
func (s *Service) Summary(ctx context.Context, userID string) (models.Summary, error) {
	profile, err := s.SyncCoins(ctx, userID)
	if err != nil {
		return models.Summary{}, err
	}
	practices, err := s.store.ListPractices(ctx, userID)
	if err != nil {
		return models.Summary{}, err
	}

	summary := models.Summary{
		TotalCoins: profile.TotalCoins,
		Practices:  len(practices),
	}
	for _, p := range practices {
		summary.TotalCompletedDays += len(p.CompletedDays)
		summary.TotalDays += p.TotalDays
		summary.LongestStreak = max(summary.LongestStreak, p.LongestStreak)
		if p.IsCompleted {
			summary.CompletedChallenges++
		}
	}
	if summary.TotalDays > 0 {
		summary.CompletionRate = float64(summary.TotalCompletedDays) / float64(summary.TotalDays) * 100
	}
	return summary, nil
}
