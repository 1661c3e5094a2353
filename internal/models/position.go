package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents a user's holding in a single stock. A row exists only
// while quantity > 0; selling a position down to zero deletes it.
type Position struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	StockSymbol      string          `json:"stock_symbol"`
	Quantity         decimal.Decimal `json:"quantity"`
	AveragePrice     decimal.Decimal `json:"average_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	PreviousDayPrice decimal.Decimal `json:"previous_day_price"`
	DayChange        decimal.Decimal `json:"day_change"`
	DayChangePercent decimal.Decimal `json:"day_change_percent"`
	LastPriceUpdate  time.Time       `json:"last_price_update"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PortfolioSummary aggregates a reconciled set of positions.
type PortfolioSummary struct {
	TotalInvestment decimal.Decimal `json:"total_investment"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
	DayProfitLoss   decimal.Decimal `json:"day_profit_loss"`
}
