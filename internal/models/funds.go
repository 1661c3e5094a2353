package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fund transaction type constants
const (
	FundTypeDeposit    = "DEPOSIT"
	FundTypeWithdrawal = "WITHDRAWAL"
)

// Fund transaction status constants
const (
	FundStatusCompleted = "COMPLETED"
	FundStatusPending   = "PENDING"
	FundStatusFailed    = "FAILED"
)

// UserFunds holds a user's cash balance. One row per user, created at
// onboarding and mutated by every trade, deposit, and withdrawal.
type UserFunds struct {
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FundTransaction records a deposit or withdrawal against a user's balance.
type FundTransaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
