package rewards

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/streaklit/internal/clock"
	"github.com/julianstephens/streaklit/internal/models"
)

// ExistenceChecker reports whether an achievement title was already awarded
// for a practice.
type ExistenceChecker interface {
	AchievementExists(ctx context.Context, practiceID, title string) (bool, error)
}

// ExistenceFunc adapts a function to ExistenceChecker
type ExistenceFunc func(ctx context.Context, practiceID, title string) (bool, error)

func (f ExistenceFunc) AchievementExists(ctx context.Context, practiceID, title string) (bool, error) {
	return f(ctx, practiceID, title)
}

// Evaluator determines which achievements a practice newly qualifies for.
// It performs no writes; persisting the result is the caller's job.
type Evaluator struct {
	cfg        Config
	checker    ExistenceChecker
	clock      clock.Clock
	newID      func() string
	sequential bool
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithConfig overrides the reward tables
func WithConfig(cfg Config) Option {
	return func(e *Evaluator) { e.cfg = cfg }
}

// WithClock sets the source of UnlockedAt timestamps
func WithClock(c clock.Clock) Option {
	return func(e *Evaluator) { e.clock = c }
}

// WithIDFunc sets the achievement ID generator
func WithIDFunc(fn func() string) Option {
	return func(e *Evaluator) { e.newID = fn }
}

// WithSequentialLookups runs existence checks one at a time in evaluation order
func WithSequentialLookups() Option {
	return func(e *Evaluator) { e.sequential = true }
}

// NewEvaluator creates an Evaluator backed by checker
func NewEvaluator(checker ExistenceChecker, opts ...Option) *Evaluator {
	e := &Evaluator{
		cfg:     DefaultConfig(),
		checker: checker,
		clock:   clock.System{},
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the reward tables in use
func (e *Evaluator) Config() Config {
	return e.cfg
}

// Candidates returns every achievement the practice qualifies for given
// completedDays, whether or not it was awarded before. Streak tiers come
// first, then milestone tiers, each in ascending threshold order.
func (e *Evaluator) Candidates(practice models.Practice, completedDays []string) ([]models.Achievement, error) {
	dates, err := ParseDays(completedDays)
	if err != nil {
		return nil, err
	}
	streak := ComputeStreak(dates)
	completed := len(dates)
	now := e.clock.Now()

	var out []models.Achievement
	for _, tier := range e.cfg.StreakAchievements {
		if streak < tier.Days {
			continue
		}
		out = append(out, models.Achievement{
			PracticeID:  practice.ID,
			UserID:      practice.UserID,
			Type:        models.AchievementStreak,
			Title:       tier.Title,
			Description: fmt.Sprintf("Maintained a %d-day streak!", tier.Days),
			Points:      tier.Points,
			UnlockedAt:  now,
		})
	}
	for _, tier := range e.cfg.MilestoneAchievements {
		if !reachedPercent(completed, practice.TotalDays, tier.Percent) {
			continue
		}
		out = append(out, models.Achievement{
			PracticeID:  practice.ID,
			UserID:      practice.UserID,
			Type:        models.AchievementMilestone,
			Title:       tier.Title,
			Description: fmt.Sprintf("Completed %d%% of the challenge!", tier.Percent),
			Points:      tier.Points,
			UnlockedAt:  now,
		})
	}
	return out, nil
}

// reachedPercent reports completed/totalDays*100 >= percent without floating
// point. A non-positive totalDays is 0% complete.
func reachedPercent(completed, totalDays, percent int) bool {
	if totalDays <= 0 {
		return false
	}
	return completed*100 >= percent*totalDays
}

// Evaluate returns the achievements newly unlocked by completedDays, in
// Candidates order. If any existence check fails the whole evaluation fails
// and no achievements are returned.
func (e *Evaluator) Evaluate(ctx context.Context, practice models.Practice, completedDays []string) ([]models.Achievement, error) {
	if e.checker == nil {
		return nil, ErrNoChecker
	}
	return e.evaluate(ctx, e.checker, e.sequential, practice, completedDays)
}

// EvaluateIn is Evaluate against checker instead of the evaluator's own.
// Lookups always run one at a time, so checker may be bound to a single
// connection such as an open transaction.
func (e *Evaluator) EvaluateIn(ctx context.Context, checker ExistenceChecker, practice models.Practice, completedDays []string) ([]models.Achievement, error) {
	return e.evaluate(ctx, checker, true, practice, completedDays)
}

// Checker returns the checker passed to NewEvaluator, possibly nil
func (e *Evaluator) Checker() ExistenceChecker {
	return e.checker
}

func (e *Evaluator) evaluate(ctx context.Context, checker ExistenceChecker, sequential bool, practice models.Practice, completedDays []string) ([]models.Achievement, error) {
	candidates, err := e.Candidates(practice, completedDays)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	exists := make([]bool, len(candidates))
	if sequential {
		for i, c := range candidates {
			ok, err := checker.AchievementExists(ctx, practice.ID, c.Title)
			if err != nil {
				return nil, fmt.Errorf("checking achievement %q: %w", c.Title, err)
			}
			exists[i] = ok
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for i, c := range candidates {
			g.Go(func() error {
				ok, err := checker.AchievementExists(gctx, practice.ID, c.Title)
				if err != nil {
					return fmt.Errorf("checking achievement %q: %w", c.Title, err)
				}
				exists[i] = ok
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var unlocked []models.Achievement
	for i, c := range candidates {
		if exists[i] {
			continue
		}
		c.ID = e.newID()
		unlocked = append(unlocked, c)
	}
	return unlocked, nil
}
