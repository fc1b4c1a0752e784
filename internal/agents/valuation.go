package agents

import (
	"math"

	"FundCortex/internal/models"
)

// ValuationAgent compares an earnings-based intrinsic value against the
// current market capitalization. A gap beyond the threshold in either
// direction becomes a directional signal.
type ValuationAgent struct{}

func (ValuationAgent) Name() string { return ValuationAgentName }

// valuationGapThreshold is the minimum intrinsic-to-market gap, as a
// fraction of market cap, before the agent takes a side.
const valuationGapThreshold = 0.15

func (ValuationAgent) Analyze(snap Snapshot) models.AgentSignal {
	if snap.MarketCap == nil || *snap.MarketCap <= 0 || len(snap.LineItems) == 0 {
		return models.AgentSignal{Signal: models.SignalNeutral, Confidence: 0}
	}

	intrinsic := intrinsicValue(snap.LineItems)
	if intrinsic <= 0 {
		return models.AgentSignal{Signal: models.SignalNeutral, Confidence: 0}
	}

	gap := (intrinsic - *snap.MarketCap) / *snap.MarketCap
	confidence := math.Min(100, math.Abs(gap)*100)
	switch {
	case gap > valuationGapThreshold:
		return models.AgentSignal{Signal: models.SignalBullish, Confidence: confidence}
	case gap < -valuationGapThreshold:
		return models.AgentSignal{Signal: models.SignalBearish, Confidence: confidence}
	default:
		return models.AgentSignal{Signal: models.SignalNeutral, Confidence: confidence}
	}
}

// intrinsicValue capitalizes trailing owner earnings: net income less the
// portion of dividends treated as maintenance outflow, grown conservatively
// and discounted as a flat perpetuity.
func intrinsicValue(items []models.LineItem) float64 {
	latest := items[0]

	netIncome := latest.Item("net_income")
	if netIncome == nil || *netIncome <= 0 {
		return 0
	}
	ownerEarnings := *netIncome
	if div := latest.Item("dividends_and_other_cash_distributions"); div != nil && *div > 0 {
		ownerEarnings -= *div * 0.3
	}

	growth := earningsGrowthRate(items)

	const (
		discountRate = 0.10
		years        = 5
		terminalMult = 12.0
	)
	value := 0.0
	earnings := ownerEarnings
	discount := 1.0
	for i := 0; i < years; i++ {
		earnings *= 1 + growth
		discount *= 1 + discountRate
		value += earnings / discount
	}
	value += earnings * terminalMult / discount
	return value
}

// earningsGrowthRate derives an annualized growth from the oldest to newest
// net income, clamped to a conservative band.
func earningsGrowthRate(items []models.LineItem) float64 {
	if len(items) < 2 {
		return 0.02
	}
	newest := items[0].Item("net_income")
	oldest := items[len(items)-1].Item("net_income")
	if newest == nil || oldest == nil || *oldest <= 0 {
		return 0.02
	}
	periods := float64(len(items) - 1)
	total := (*newest - *oldest) / *oldest
	growth := total / periods
	if growth > 0.15 {
		return 0.15
	}
	if growth < -0.05 {
		return -0.05
	}
	return growth
}
