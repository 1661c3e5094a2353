package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade type constants
const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

// Transaction is one executed trade in the append-only ledger. Rows are never
// updated or deleted; balance and position state could be rederived from them.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	StockSymbol string          `json:"stock_symbol"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}
