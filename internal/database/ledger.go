package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papertrade/trading-service/internal/engine"
	"github.com/papertrade/trading-service/internal/models"
)

// Atomic implements engine.Store: fn runs against a single SQL transaction
// whose reads take row locks, so two concurrent trades for the same user
// serialize instead of clobbering each other's read-modify-write.
func (db *DB) Atomic(ctx context.Context, fn func(engine.Ledger) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	return nil
}

// ledgerTx is one transaction's view of the ledger tables.
type ledgerTx struct {
	tx *sql.Tx
}

// Balance reads and locks the user's funds row. Locking funds first also
// serializes concurrent trades per user, since every trade starts here.
func (l *ledgerTx) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	query := `SELECT balance FROM user_funds WHERE user_id = $1 FOR UPDATE`

	var balance decimal.Decimal
	err := l.tx.QueryRowContext(ctx, query, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Decimal{}, fmt.Errorf("user funds not found: %s", userID)
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (l *ledgerTx) SetBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	query := `UPDATE user_funds SET balance = $2, updated_at = $3 WHERE user_id = $1`

	result, err := l.tx.ExecContext(ctx, query, userID, balance, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("user funds not found: %s", userID)
	}
	return nil
}

// Position reads and locks the user's position row, or returns nil when the
// user holds no shares of the symbol.
func (l *ledgerTx) Position(ctx context.Context, userID, symbol string) (*models.Position, error) {
	query := `
		SELECT id, user_id, stock_symbol, quantity, average_price,
		       current_price, previous_day_price, last_price_update, created_at
		FROM portfolios
		WHERE user_id = $1 AND stock_symbol = $2
		FOR UPDATE
	`
	var p models.Position
	err := l.tx.QueryRowContext(ctx, query, userID, symbol).Scan(
		&p.ID, &p.UserID, &p.StockSymbol, &p.Quantity, &p.AveragePrice,
		&p.CurrentPrice, &p.PreviousDayPrice, &p.LastPriceUpdate, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &p, nil
}

func (l *ledgerTx) InsertPosition(ctx context.Context, p *models.Position) error {
	query := `
		INSERT INTO portfolios (
			id, user_id, stock_symbol, quantity, average_price,
			current_price, previous_day_price, last_price_update, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.LastPriceUpdate.IsZero() {
		p.LastPriceUpdate = now
	}

	_, err := l.tx.ExecContext(ctx, query,
		p.ID, p.UserID, p.StockSymbol, p.Quantity, p.AveragePrice,
		p.CurrentPrice, p.PreviousDayPrice, p.LastPriceUpdate, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}
	p.CreatedAt = now
	return nil
}

func (l *ledgerTx) UpdatePosition(ctx context.Context, p *models.Position) error {
	query := `
		UPDATE portfolios SET
			quantity = $2, average_price = $3, current_price = $4,
			previous_day_price = $5, last_price_update = $6
		WHERE id = $1
	`
	result, err := l.tx.ExecContext(ctx, query,
		p.ID, p.Quantity, p.AveragePrice, p.CurrentPrice,
		p.PreviousDayPrice, p.LastPriceUpdate,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("position not found: %s", p.ID)
	}
	return nil
}

func (l *ledgerTx) DeletePosition(ctx context.Context, id string) error {
	query := `DELETE FROM portfolios WHERE id = $1`

	result, err := l.tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("position not found: %s", id)
	}
	return nil
}

func (l *ledgerTx) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, stock_symbol, type, quantity, price, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	_, err := l.tx.ExecContext(ctx, query,
		t.ID, t.UserID, t.StockSymbol, t.Type, t.Quantity, t.Price, t.Total, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (l *ledgerTx) AppendFundTransaction(ctx context.Context, ft *models.FundTransaction) error {
	query := `
		INSERT INTO fund_transactions (id, user_id, type, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if ft.ID == "" {
		ft.ID = uuid.NewString()
	}
	if ft.CreatedAt.IsZero() {
		ft.CreatedAt = time.Now()
	}

	_, err := l.tx.ExecContext(ctx, query,
		ft.ID, ft.UserID, ft.Type, ft.Amount, ft.Status, ft.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append fund transaction: %w", err)
	}
	return nil
}
