package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock represents reference price data for one listed symbol.
type Stock struct {
	ID               string          `json:"id"`
	Symbol           string          `json:"symbol"`
	Name             string          `json:"name"`
	Sector           string          `json:"sector,omitempty"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	PreviousClose    decimal.Decimal `json:"previous_close"`
	DayChange        decimal.Decimal `json:"day_change"`
	DayChangePercent decimal.Decimal `json:"day_change_percent"`
	LastUpdated      time.Time       `json:"last_updated"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Quote is an externally supplied price observation for a symbol. The trade
// engine and reconciliation treat it as authoritative input; they never fetch
// quotes themselves.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Change returns the day change over the previous close.
func (q Quote) Change() decimal.Decimal {
	return q.Price.Sub(q.PreviousClose)
}

// ChangePercent returns the day change as a percentage of the previous close,
// or zero when the previous close is zero.
func (q Quote) ChangePercent() decimal.Decimal {
	if q.PreviousClose.IsZero() {
		return decimal.Zero
	}
	return q.Change().Div(q.PreviousClose).Mul(decimal.NewFromInt(100))
}

// Event type constants for the trade and quote topics
const (
	EventTradeExecuted = "TRADE_EXECUTED"
	EventQuoteUpdated  = "QUOTE_UPDATED"
)

// TradeEvent is published after every successfully executed trade.
type TradeEvent struct {
	EventType   string       `json:"event_type"`
	Transaction *Transaction `json:"transaction"`
	Symbol      string       `json:"symbol"`
	Timestamp   time.Time    `json:"timestamp"`
}

// QuoteEvent carries a price update for one symbol.
type QuoteEvent struct {
	EventType string    `json:"event_type"`
	Quote     Quote     `json:"quote"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
}
