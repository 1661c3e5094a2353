package database

import (
	"database/sql"
	"fmt"

	"github.com/papertrade/trading-service/internal/models"
)

// GetPositionsByUser retrieves all of a user's positions, most recent first.
func (db *DB) GetPositionsByUser(userID string) ([]*models.Position, error) {
	query := `
		SELECT id, user_id, stock_symbol, quantity, average_price,
		       current_price, previous_day_price, last_price_update, created_at
		FROM portfolios
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return db.scanPositions(db.conn.Query(query, userID))
}

// GetPosition retrieves a user's position for one symbol.
func (db *DB) GetPosition(userID, symbol string) (*models.Position, error) {
	query := `
		SELECT id, user_id, stock_symbol, quantity, average_price,
		       current_price, previous_day_price, last_price_update, created_at
		FROM portfolios
		WHERE user_id = $1 AND stock_symbol = $2
	`
	var p models.Position
	err := db.conn.QueryRow(query, userID, symbol).Scan(
		&p.ID, &p.UserID, &p.StockSymbol, &p.Quantity, &p.AveragePrice,
		&p.CurrentPrice, &p.PreviousDayPrice, &p.LastPriceUpdate, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("position not found: %s/%s", userID, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &p, nil
}

// HeldSymbols returns the distinct symbols held by any user.
func (db *DB) HeldSymbols() ([]string, error) {
	query := `SELECT DISTINCT stock_symbol FROM portfolios ORDER BY stock_symbol`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query held symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}

func (db *DB) scanPositions(rows *sql.Rows, err error) ([]*models.Position, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		var p models.Position
		err := rows.Scan(
			&p.ID, &p.UserID, &p.StockSymbol, &p.Quantity, &p.AveragePrice,
			&p.CurrentPrice, &p.PreviousDayPrice, &p.LastPriceUpdate, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, &p)
	}

	return positions, nil
}
