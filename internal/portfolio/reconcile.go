package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/papertrade/trading-service/internal/models"
)

// Reconcile merges live quotes into stored positions and returns a derived
// view. Where a quote exists for a symbol it overrides current_price and the
// day-change figures; otherwise the stored price and a change derived from
// previous_day_price are kept. The inputs are never mutated and nothing is
// written back: average_price and quantity stay whatever the trade engine
// last stored.
func Reconcile(positions []*models.Position, quotes map[string]models.Quote) []*models.Position {
	reconciled := make([]*models.Position, 0, len(positions))
	for _, stored := range positions {
		p := *stored

		if quote, ok := quotes[p.StockSymbol]; ok {
			p.CurrentPrice = quote.Price
			p.LastPriceUpdate = quote.Timestamp
		}
		p.DayChange = p.CurrentPrice.Sub(p.PreviousDayPrice)
		p.DayChangePercent = dayChangePercent(p.DayChange, p.PreviousDayPrice)

		reconciled = append(reconciled, &p)
	}
	return reconciled
}

func dayChangePercent(change, previousDay decimal.Decimal) decimal.Decimal {
	if previousDay.IsZero() {
		return decimal.Zero
	}
	return change.Div(previousDay).Mul(decimal.NewFromInt(100))
}

// Summarize computes the portfolio aggregates over a reconciled view.
func Summarize(positions []*models.Position) models.PortfolioSummary {
	var s models.PortfolioSummary
	for _, p := range positions {
		s.TotalInvestment = s.TotalInvestment.Add(p.Quantity.Mul(p.AveragePrice))
		s.CurrentValue = s.CurrentValue.Add(p.Quantity.Mul(p.CurrentPrice))
		s.DayProfitLoss = s.DayProfitLoss.Add(p.Quantity.Mul(p.DayChange))
	}
	s.TotalProfitLoss = s.CurrentValue.Sub(s.TotalInvestment)
	return s
}
