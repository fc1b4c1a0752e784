package agents

import (
	"github.com/shopspring/decimal"

	"FundCortex/internal/models"
)

// RiskManager caps each ticker's exposure at a fixed share of total
// portfolio value and reports the remaining dollar capacity.
type RiskManager struct {
	MaxPositionRatio float64
}

func NewRiskManager() RiskManager {
	return RiskManager{MaxPositionRatio: 0.20}
}

// Assess computes per-ticker risk signals from the latest prices. Tickers
// without a price get a zero limit so sizing downstream stays at zero.
func (rm RiskManager) Assess(portfolio models.Portfolio, prices map[string]decimal.Decimal, tickers []string) map[string]models.RiskSignal {
	total := portfolio.TotalValue(prices)
	out := make(map[string]models.RiskSignal, len(tickers))

	for _, ticker := range tickers {
		price, ok := prices[ticker]
		if !ok || price.LessThanOrEqual(decimal.Zero) {
			out[ticker] = models.RiskSignal{}
			continue
		}

		pos := portfolio.Position(ticker)
		exposure := price.Mul(decimal.NewFromInt(pos.LongShares))
		limit := total.Mul(decimal.NewFromFloat(rm.MaxPositionRatio))

		remaining := limit.Sub(exposure)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		out[ticker] = models.RiskSignal{
			RemainingPositionLimit: remaining.InexactFloat64(),
			CurrentPrice:           price.InexactFloat64(),
		}
	}
	return out
}
