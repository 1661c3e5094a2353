package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/papertrade/trading-service/internal/models"
)

// UpsertStock inserts a stock or refreshes its reference data on conflict.
func (db *DB) UpsertStock(s *models.Stock) error {
	query := `
		INSERT INTO stocks (
			id, symbol, name, sector, current_price, previous_close,
			day_change, day_change_percent, last_updated, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			current_price = EXCLUDED.current_price,
			previous_close = EXCLUDED.previous_close,
			day_change = EXCLUDED.day_change,
			day_change_percent = EXCLUDED.day_change_percent,
			last_updated = EXCLUDED.last_updated
	`
	now := time.Now()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.LastUpdated.IsZero() {
		s.LastUpdated = now
	}

	_, err := db.conn.Exec(query,
		s.ID, s.Symbol, s.Name, s.Sector, s.CurrentPrice, s.PreviousClose,
		s.DayChange, s.DayChangePercent, s.LastUpdated, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stock: %w", err)
	}
	return nil
}

// ApplyQuote overwrites a stock's price fields from a live quote.
func (db *DB) ApplyQuote(q models.Quote) error {
	query := `
		UPDATE stocks SET
			current_price = $2,
			previous_close = $3,
			day_change = $4,
			day_change_percent = $5,
			last_updated = $6
		WHERE symbol = $1
	`
	updated := q.Timestamp
	if updated.IsZero() {
		updated = time.Now()
	}

	result, err := db.conn.Exec(query,
		q.Symbol, q.Price, q.PreviousClose, q.Change(), q.ChangePercent(), updated,
	)
	if err != nil {
		return fmt.Errorf("failed to apply quote: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("stock not found: %s", q.Symbol)
	}
	return nil
}

// GetStock retrieves one stock by symbol.
func (db *DB) GetStock(symbol string) (*models.Stock, error) {
	query := `
		SELECT id, symbol, name, sector, current_price, previous_close,
		       day_change, day_change_percent, last_updated, created_at
		FROM stocks
		WHERE symbol = $1
	`
	var s models.Stock
	var sector sql.NullString

	err := db.conn.QueryRow(query, symbol).Scan(
		&s.ID, &s.Symbol, &s.Name, &sector, &s.CurrentPrice, &s.PreviousClose,
		&s.DayChange, &s.DayChangePercent, &s.LastUpdated, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stock not found: %s", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}

	if sector.Valid {
		s.Sector = sector.String
	}
	return &s, nil
}

// GetAllStocks retrieves the stock universe ordered by symbol.
func (db *DB) GetAllStocks() ([]*models.Stock, error) {
	query := `
		SELECT id, symbol, name, sector, current_price, previous_close,
		       day_change, day_change_percent, last_updated, created_at
		FROM stocks
		ORDER BY symbol ASC
	`
	return db.scanStocks(db.conn.Query(query))
}

// GetStocksBySymbols retrieves the stocks for the given symbols, ordered by
// symbol.
func (db *DB) GetStocksBySymbols(symbols []string) ([]*models.Stock, error) {
	query := `
		SELECT id, symbol, name, sector, current_price, previous_close,
		       day_change, day_change_percent, last_updated, created_at
		FROM stocks
		WHERE symbol = ANY($1)
		ORDER BY symbol ASC
	`
	return db.scanStocks(db.conn.Query(query, pq.Array(symbols)))
}

func (db *DB) scanStocks(rows *sql.Rows, err error) ([]*models.Stock, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []*models.Stock
	for rows.Next() {
		var s models.Stock
		var sector sql.NullString

		err := rows.Scan(
			&s.ID, &s.Symbol, &s.Name, &sector, &s.CurrentPrice, &s.PreviousClose,
			&s.DayChange, &s.DayChangePercent, &s.LastUpdated, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}

		if sector.Valid {
			s.Sector = sector.String
		}
		stocks = append(stocks, &s)
	}

	return stocks, nil
}
