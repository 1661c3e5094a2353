package database

import (
	"database/sql"
	"fmt"

	"github.com/papertrade/trading-service/internal/models"
)

// GetTransactionsByUser retrieves a user's trade history, newest first.
func (db *DB) GetTransactionsByUser(userID string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, stock_symbol, type, quantity, price, total, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return db.scanTransactions(db.conn.Query(query, userID, limit))
}

// GetTransactionsBySymbol retrieves a user's trade history for one symbol,
// newest first.
func (db *DB) GetTransactionsBySymbol(userID, symbol string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, stock_symbol, type, quantity, price, total, created_at
		FROM transactions
		WHERE user_id = $1 AND stock_symbol = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	return db.scanTransactions(db.conn.Query(query, userID, symbol, limit))
}

func (db *DB) scanTransactions(rows *sql.Rows, err error) ([]*models.Transaction, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.StockSymbol, &t.Type,
			&t.Quantity, &t.Price, &t.Total, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}

	return transactions, nil
}
