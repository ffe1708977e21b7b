package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/streaklit/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNotInitialized = errors.New("storage not initialized")
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("already exists")
	// ErrInsufficientBalance is returned by PurchaseItem when the wallet cannot cover the cost
	ErrInsufficientBalance = errors.New("insufficient coins")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Practices
	AddPractice(ctx context.Context, p models.Practice) error
	GetPractice(ctx context.Context, id string) (models.Practice, error)
	GetPracticeByName(ctx context.Context, userID, name string) (models.Practice, error)
	// ListPractices returns the user's practices, newest first
	ListPractices(ctx context.Context, userID string) ([]models.Practice, error)
	// UpdatePractice replaces the stored snapshot, completed days included, in one transaction
	UpdatePractice(ctx context.Context, p models.Practice) error
	DeletePractice(ctx context.Context, id string) error
	// UpdatePracticeFunc loads practice id under a write lock and hands it to
	// fn. Everything fn writes through tx commits together, and only if fn
	// returns nil. Concurrent calls for the same practice run one after another.
	UpdatePracticeFunc(ctx context.Context, id string, fn func(tx PracticeTx, current models.Practice) error) error

	// Achievements
	AchievementExists(ctx context.Context, practiceID, title string) (bool, error)
	// InsertAchievementIfAbsent stores a unless (practice_id, title) already exists.
	// inserted is false when another writer got there first.
	InsertAchievementIfAbsent(ctx context.Context, a models.Achievement) (inserted bool, err error)
	ListAchievements(ctx context.Context, practiceID string) ([]models.Achievement, error)

	// Profiles
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	SaveProfile(ctx context.Context, p models.Profile) error

	// Shop
	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id string) (models.Item, error)
	ListUserItems(ctx context.Context, userID string) ([]models.UserItem, error)
	// PurchaseItem records ownership and debits the wallet in one transaction
	PurchaseItem(ctx context.Context, ui models.UserItem, cost int) error
}

// PracticeTx is the store as seen from inside UpdatePracticeFunc
type PracticeTx interface {
	AchievementExists(ctx context.Context, practiceID, title string) (bool, error)
	InsertAchievementIfAbsent(ctx context.Context, a models.Achievement) (inserted bool, err error)
	UpdatePractice(ctx context.Context, p models.Practice) error
}

// Migrator applies pending schema migrations to an existing database
// without first requiring its version to be current
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
}
