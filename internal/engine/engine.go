package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertrade/trading-service/internal/models"
)

// Ledger is one transactional view of the store. All reads hold row locks
// until the surrounding Atomic call commits or rolls back.
type Ledger interface {
	// Balance returns the user's cash balance.
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	// SetBalance overwrites the user's cash balance.
	SetBalance(ctx context.Context, userID string, balance decimal.Decimal) error
	// Position returns the user's position for a symbol, or nil when absent.
	Position(ctx context.Context, userID, symbol string) (*models.Position, error)
	InsertPosition(ctx context.Context, p *models.Position) error
	UpdatePosition(ctx context.Context, p *models.Position) error
	DeletePosition(ctx context.Context, id string) error
	AppendTransaction(ctx context.Context, t *models.Transaction) error
	AppendFundTransaction(ctx context.Context, ft *models.FundTransaction) error
}

// Store runs ledger operations atomically. A non-nil error from fn rolls the
// whole transaction back.
type Store interface {
	Atomic(ctx context.Context, fn func(Ledger) error) error
}

// TradeRequest is the trade entry point's input. Quantity arrives as text so
// that callers passing JSON numbers and callers passing strings go through the
// same parse-and-validate step.
type TradeRequest struct {
	User     *models.User
	Stock    *models.Stock
	Quantity string
	Side     string
}

// Engine executes trades and fund movements against an injected store.
type Engine struct {
	store Store
}

// New creates an Engine backed by the given store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// ExecuteTrade validates the request, then atomically moves cash and shares
// and appends one transaction row. On any rejection the ledger is left
// unchanged. Selling never modifies the average price: cost basis is a
// buy-side concept.
func (e *Engine) ExecuteTrade(ctx context.Context, req TradeRequest) (*models.Transaction, error) {
	if req.User == nil || req.User.ID == "" {
		return nil, ErrNotAuthenticated
	}

	quantity, err := parsePositive(req.Quantity)
	if err != nil {
		return nil, ErrInvalidQuantity
	}

	if req.Stock == nil || !req.Stock.CurrentPrice.IsPositive() {
		return nil, ErrInvalidPrice
	}
	price := req.Stock.CurrentPrice

	side := strings.ToUpper(strings.TrimSpace(req.Side))
	if side != models.TradeTypeBuy && side != models.TradeTypeSell {
		return nil, ErrInvalidSide
	}

	userID := req.User.ID
	symbol := req.Stock.Symbol
	total := quantity.Mul(price)

	var recorded *models.Transaction
	err = e.store.Atomic(ctx, func(l Ledger) error {
		balance, err := l.Balance(ctx, userID)
		if err != nil {
			return &StoreError{Op: "read funds", Err: err}
		}

		position, err := l.Position(ctx, userID, symbol)
		if err != nil {
			return &StoreError{Op: "read position", Err: err}
		}

		now := time.Now()

		switch side {
		case models.TradeTypeSell:
			if position == nil {
				return ErrNoPosition
			}
			if position.Quantity.LessThan(quantity) {
				return ErrInsufficientShares
			}

			newQuantity := position.Quantity.Sub(quantity)
			if newQuantity.IsZero() {
				if err := l.DeletePosition(ctx, position.ID); err != nil {
					return &StoreError{Op: "delete position", Err: err}
				}
			} else {
				position.Quantity = newQuantity
				position.CurrentPrice = price
				position.LastPriceUpdate = now
				if err := l.UpdatePosition(ctx, position); err != nil {
					return &StoreError{Op: "update position", Err: err}
				}
			}

			if err := l.SetBalance(ctx, userID, balance.Add(total)); err != nil {
				return &StoreError{Op: "update funds", Err: err}
			}

		case models.TradeTypeBuy:
			if total.GreaterThan(balance) {
				return ErrInsufficientFunds
			}

			if position != nil {
				// Weighted average cost: the existing leg is weighted by the
				// pre-trade quantity.
				newQuantity := position.Quantity.Add(quantity)
				newAverage := position.Quantity.Mul(position.AveragePrice).
					Add(quantity.Mul(price)).
					Div(newQuantity)

				position.Quantity = newQuantity
				position.AveragePrice = newAverage
				position.CurrentPrice = price
				position.LastPriceUpdate = now
				if err := l.UpdatePosition(ctx, position); err != nil {
					return &StoreError{Op: "update position", Err: err}
				}
			} else {
				p := &models.Position{
					UserID:           userID,
					StockSymbol:      symbol,
					Quantity:         quantity,
					AveragePrice:     price,
					CurrentPrice:     price,
					PreviousDayPrice: price,
					LastPriceUpdate:  now,
				}
				if err := l.InsertPosition(ctx, p); err != nil {
					return &StoreError{Op: "insert position", Err: err}
				}
			}

			if err := l.SetBalance(ctx, userID, balance.Sub(total)); err != nil {
				return &StoreError{Op: "update funds", Err: err}
			}
		}

		t := &models.Transaction{
			UserID:      userID,
			StockSymbol: symbol,
			Type:        side,
			Quantity:    quantity,
			Price:       price,
			Total:       total,
			CreatedAt:   now,
		}
		if err := l.AppendTransaction(ctx, t); err != nil {
			return fmt.Errorf("%w: %v", ErrTradeNotRecorded, err)
		}
		recorded = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return recorded, nil
}

// Deposit credits the user's balance and appends a fund transaction.
func (e *Engine) Deposit(ctx context.Context, userID, amount string) (*models.FundTransaction, error) {
	return e.moveFunds(ctx, userID, amount, models.FundTypeDeposit)
}

// Withdraw debits the user's balance and appends a fund transaction. A
// withdrawal beyond the current balance is rejected.
func (e *Engine) Withdraw(ctx context.Context, userID, amount string) (*models.FundTransaction, error) {
	return e.moveFunds(ctx, userID, amount, models.FundTypeWithdrawal)
}

func (e *Engine) moveFunds(ctx context.Context, userID, amount, fundType string) (*models.FundTransaction, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	value, err := parsePositive(amount)
	if err != nil {
		return nil, ErrInvalidAmount
	}

	var recorded *models.FundTransaction
	err = e.store.Atomic(ctx, func(l Ledger) error {
		balance, err := l.Balance(ctx, userID)
		if err != nil {
			return &StoreError{Op: "read funds", Err: err}
		}

		newBalance := balance.Add(value)
		if fundType == models.FundTypeWithdrawal {
			if value.GreaterThan(balance) {
				return ErrInsufficientFunds
			}
			newBalance = balance.Sub(value)
		}

		if err := l.SetBalance(ctx, userID, newBalance); err != nil {
			return &StoreError{Op: "update funds", Err: err}
		}

		ft := &models.FundTransaction{
			UserID:    userID,
			Type:      fundType,
			Amount:    value,
			Status:    models.FundStatusCompleted,
			CreatedAt: time.Now(),
		}
		if err := l.AppendFundTransaction(ctx, ft); err != nil {
			return &StoreError{Op: "append fund transaction", Err: err}
		}
		recorded = ft
		return nil
	})
	if err != nil {
		return nil, err
	}

	return recorded, nil
}

// parsePositive parses a decimal string and requires it to be > 0.
func parsePositive(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !value.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("value must be positive: %s", raw)
	}
	return value, nil
}
