// Package shop spends wallet coins on catalogue items.
package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/streaklit/internal/clock"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/storage"
)

var (
	ErrInsufficientCoins = storage.ErrInsufficientBalance
	ErrAlreadyOwned      = errors.New("item already owned")
)

// CoinSyncer brings the wallet balance up to date before it is spent
type CoinSyncer interface {
	SyncCoins(ctx context.Context, userID string) (models.Profile, error)
}

type Service struct {
	store storage.Provider
	coins CoinSyncer
	clock clock.Clock
	newID func() string
}

func New(store storage.Provider, coins CoinSyncer, c clock.Clock) *Service {
	if c == nil {
		c = clock.System{}
	}
	return &Service{
		store: store,
		coins: coins,
		clock: c,
		newID: func() string { return uuid.New().String() },
	}
}

func (s *Service) Items(ctx context.Context) ([]models.Item, error) {
	return s.store.ListItems(ctx)
}

func (s *Service) Owned(ctx context.Context, userID string) ([]models.UserItem, error) {
	return s.store.ListUserItems(ctx, userID)
}

// Balance returns the user's current wallet
func (s *Service) Balance(ctx context.Context, userID string) (models.Profile, error) {
	if s.coins != nil {
		return s.coins.SyncCoins(ctx, userID)
	}
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Profile{UserID: userID}, nil
	}
	return p, err
}

// Purchase buys itemID for userID. Practice points are untouched; only the
// wallet balance goes down.
func (s *Service) Purchase(ctx context.Context, userID, itemID string) (models.UserItem, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return models.UserItem{}, err
	}

	owned, err := s.store.ListUserItems(ctx, userID)
	if err != nil {
		return models.UserItem{}, err
	}
	for _, ui := range owned {
		if ui.ItemID == itemID {
			return models.UserItem{}, fmt.Errorf("%s: %w", item.Name, ErrAlreadyOwned)
		}
	}

	wallet, err := s.Balance(ctx, userID)
	if err != nil {
		return models.UserItem{}, err
	}
	if wallet.TotalCoins < item.Cost {
		return models.UserItem{}, fmt.Errorf("%w: %s costs %d, balance is %d", ErrInsufficientCoins, item.Name, item.Cost, wallet.TotalCoins)
	}

	ui := models.UserItem{
		ID:          s.newID(),
		UserID:      userID,
		ItemID:      item.ID,
		Item:        item,
		PurchasedAt: s.clock.Now(),
	}
	if err := s.store.PurchaseItem(ctx, ui, item.Cost); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return models.UserItem{}, fmt.Errorf("%s: %w", item.Name, ErrAlreadyOwned)
		}
		return models.UserItem{}, err
	}

	logger.Info("Purchased item", "user", userID, "item", item.ID, "cost", item.Cost)
	return ui, nil
}
