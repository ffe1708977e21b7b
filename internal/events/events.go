// Package events carries practice progress notifications from the practice
// service to whatever is presenting them (CLI output, TUI status line).
package events

import (
	"fmt"
	"slices"
	"sync"

	"github.com/julianstephens/streaklit/internal/models"
)

// Event is implemented by every notification published on a Bus
type Event interface {
	PracticeID() string
}

// PointsEarned is published when a toggle raises a practice's points
type PointsEarned struct {
	Practice models.Practice
	Delta    int
}

func (e PointsEarned) PracticeID() string { return e.Practice.ID }

// AchievementUnlocked is published once per newly stored achievement
type AchievementUnlocked struct {
	Achievement models.Achievement
}

func (e AchievementUnlocked) PracticeID() string { return e.Achievement.PracticeID }

// PracticeCompleted is published when a toggle completes the final day
type PracticeCompleted struct {
	Practice        models.Practice
	CompletionBonus int
}

func (e PracticeCompleted) PracticeID() string { return e.Practice.ID }

// Handler receives published events
type Handler func(Event)

// Bus fans events out to subscribers. The zero value is ready to use.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

// NewBus creates an empty Bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	if b == nil {
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers evt to every current subscriber in subscription order.
// Handlers run synchronously on the caller's goroutine.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	handlers := make([]Handler, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}

// Len returns the number of active subscribers
func (b *Bus) Len() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Describe returns a short title and message for showing evt to the user
func Describe(evt Event) (title, message string) {
	switch e := evt.(type) {
	case PointsEarned:
		return "Points Earned!", fmt.Sprintf("+%d points", e.Delta)
	case AchievementUnlocked:
		a := e.Achievement
		return "Achievement Unlocked!", fmt.Sprintf("%s: %s (+%d points)", a.Title, a.Description, a.Points)
	case PracticeCompleted:
		return "Congratulations!", fmt.Sprintf("Challenge completed! (+%d bonus points)", e.CompletionBonus)
	default:
		return "", ""
	}
}
