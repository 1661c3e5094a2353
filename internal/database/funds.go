package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/papertrade/trading-service/internal/models"
)

// CreateUserFunds creates the funds row for a user at onboarding. Creating
// funds for an existing user is an error.
func (db *DB) CreateUserFunds(f *models.UserFunds) error {
	query := `
		INSERT INTO user_funds (user_id, balance, updated_at)
		VALUES ($1, $2, $3)
	`
	now := time.Now()
	_, err := db.conn.Exec(query, f.UserID, f.Balance, now)
	if err != nil {
		return fmt.Errorf("failed to create user funds: %w", err)
	}
	f.UpdatedAt = now
	return nil
}

// GetUserFunds retrieves a user's funds row.
func (db *DB) GetUserFunds(userID string) (*models.UserFunds, error) {
	query := `SELECT user_id, balance, updated_at FROM user_funds WHERE user_id = $1`

	var f models.UserFunds
	err := db.conn.QueryRow(query, userID).Scan(&f.UserID, &f.Balance, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user funds not found: %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user funds: %w", err)
	}
	return &f, nil
}

// GetFundTransactionsByUser retrieves a user's deposits and withdrawals,
// newest first.
func (db *DB) GetFundTransactionsByUser(userID string, limit int) ([]*models.FundTransaction, error) {
	query := `
		SELECT id, user_id, type, amount, status, created_at
		FROM fund_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.FundTransaction
	for rows.Next() {
		var ft models.FundTransaction
		err := rows.Scan(&ft.ID, &ft.UserID, &ft.Type, &ft.Amount, &ft.Status, &ft.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund transaction: %w", err)
		}
		transactions = append(transactions, &ft)
	}

	return transactions, nil
}
