package models

import "github.com/shopspring/decimal"

// Position is the current exposure in one ticker.
type Position struct {
	LongShares  int64 `json:"long_shares"`
	ShortShares int64 `json:"short_shares"`
}

// Portfolio is the caller-owned account state. The pipeline only reads it.
type Portfolio struct {
	Cash              decimal.Decimal     `json:"cash"`
	Positions         map[string]Position `json:"positions"`
	MarginRequirement float64             `json:"margin_requirement"`
	MarginUsed        decimal.Decimal     `json:"margin_used"`
}

// NewPortfolio returns an all-cash portfolio.
func NewPortfolio(cash decimal.Decimal, marginRequirement float64) Portfolio {
	return Portfolio{
		Cash:              cash,
		Positions:         make(map[string]Position),
		MarginRequirement: marginRequirement,
	}
}

// Position returns the position for ticker, zero-valued when none is held.
func (p Portfolio) Position(ticker string) Position {
	return p.Positions[ticker]
}

// TotalValue is cash plus the marked value of all long positions at the
// given prices. Tickers with no known price contribute nothing.
func (p Portfolio) TotalValue(prices map[string]decimal.Decimal) decimal.Decimal {
	total := p.Cash
	for ticker, pos := range p.Positions {
		price, ok := prices[ticker]
		if !ok {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(pos.LongShares)))
	}
	return total
}
