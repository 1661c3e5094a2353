package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/papertrade/trading-service/internal/models"
)

// ErrAlreadyInWishlist is returned when a symbol is added twice for one user.
var ErrAlreadyInWishlist = errors.New("stock already in wishlist")

// AddWishlistItem adds a symbol to a user's wishlist.
func (db *DB) AddWishlistItem(w *models.WishlistItem) error {
	query := `
		INSERT INTO wishlists (id, user_id, stock_symbol, stock_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	now := time.Now()

	_, err := db.conn.Exec(query, w.ID, w.UserID, w.StockSymbol, w.StockName, now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyInWishlist
		}
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	w.CreatedAt = now
	return nil
}

// GetWishlistByUser retrieves a user's wishlist, newest first.
func (db *DB) GetWishlistByUser(userID string) ([]*models.WishlistItem, error) {
	query := `
		SELECT id, user_id, stock_symbol, stock_name, created_at
		FROM wishlists
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	defer rows.Close()

	var items []*models.WishlistItem
	for rows.Next() {
		var w models.WishlistItem
		if err := rows.Scan(&w.ID, &w.UserID, &w.StockSymbol, &w.StockName, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, &w)
	}

	return items, nil
}

// RemoveWishlistItem removes a symbol from a user's wishlist.
func (db *DB) RemoveWishlistItem(userID, symbol string) error {
	query := `DELETE FROM wishlists WHERE user_id = $1 AND stock_symbol = $2`

	result, err := db.conn.Exec(query, userID, symbol)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("wishlist item not found: %s", symbol)
	}
	return nil
}
