package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/storage"
)

func (s *Store) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, total_coins, spent_coins, updated_at FROM profiles WHERE user_id = ?`,
		userID).Scan(&p.UserID, &p.TotalCoins, &p.SpentCoins, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, fmt.Errorf("profile %s: %w", userID, storage.ErrNotFound)
		}
		return models.Profile{}, err
	}
	p.UpdatedAt, err = parseTime("updated_at", updatedAt)
	return p, err
}

func (s *Store) SaveProfile(ctx context.Context, p models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, total_coins, spent_coins, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			total_coins = excluded.total_coins,
			spent_coins = excluded.spent_coins,
			updated_at = excluded.updated_at`,
		p.UserID, p.TotalCoins, p.SpentCoins, formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, cost FROM items ORDER BY cost, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Cost); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) GetItem(ctx context.Context, id string) (models.Item, error) {
	var it models.Item
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description, cost FROM items WHERE id = ?`, id).
		Scan(&it.ID, &it.Name, &it.Description, &it.Cost)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Item{}, fmt.Errorf("item %s: %w", id, storage.ErrNotFound)
		}
		return models.Item{}, err
	}
	return it, nil
}

func (s *Store) ListUserItems(ctx context.Context, userID string) ([]models.UserItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ui.id, ui.user_id, ui.item_id, ui.purchased_at, i.id, i.name, i.description, i.cost
		FROM user_items ui JOIN items i ON i.id = ui.item_id
		WHERE ui.user_id = ? ORDER BY ui.purchased_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owned []models.UserItem
	for rows.Next() {
		var ui models.UserItem
		var purchasedAt string
		if err := rows.Scan(&ui.ID, &ui.UserID, &ui.ItemID, &purchasedAt,
			&ui.Item.ID, &ui.Item.Name, &ui.Item.Description, &ui.Item.Cost); err != nil {
			return nil, err
		}
		ui.PurchasedAt, err = parseTime("purchased_at", purchasedAt)
		if err != nil {
			return nil, err
		}
		owned = append(owned, ui)
	}
	return owned, rows.Err()
}

func (s *Store) PurchaseItem(ctx context.Context, ui models.UserItem, cost int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE profiles SET
			total_coins = total_coins - ?,
			spent_coins = spent_coins + ?,
			updated_at = ?
		WHERE user_id = ? AND total_coins >= ?`,
		cost, cost, formatTime(ui.PurchasedAt), ui.UserID, cost)
	if err != nil {
		return fmt.Errorf("failed to debit wallet: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrInsufficientBalance
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_items (id, user_id, item_id, purchased_at) VALUES (?, ?, ?, ?)`,
		ui.ID, ui.UserID, ui.ItemID, formatTime(ui.PurchasedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item %s: %w", ui.ItemID, storage.ErrDuplicate)
		}
		return fmt.Errorf("failed to record purchase: %w", err)
	}

	return tx.Commit()
}
