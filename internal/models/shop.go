package models

import "time"

// Profile holds the per-user coin wallet.
// TotalCoins is the spendable balance: earned practice points minus SpentCoins.
type Profile struct {
	UserID     string    `json:"id"`
	TotalCoins int       `json:"total_coins"`
	SpentCoins int       `json:"spent_coins"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Item is a purchasable entry in the coin store
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
}

// UserItem records an item owned by a user
type UserItem struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ItemID      string    `json:"item_id"`
	Item        Item      `json:"items"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// Summary aggregates progress across all of a user's practices
type Summary struct {
	TotalCoins          int
	TotalCompletedDays  int
	TotalDays           int
	CompletionRate      float64
	LongestStreak       int
	CompletedChallenges int
	Practices           int
}
