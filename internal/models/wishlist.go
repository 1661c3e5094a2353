package models

import "time"

// WishlistItem is one symbol on a user's watchlist.
type WishlistItem struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	StockSymbol string    `json:"stock_symbol"`
	StockName   string    `json:"stock_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
