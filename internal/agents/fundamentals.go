package agents

import "FundCortex/internal/models"

// FundamentalsAgent scores profitability, growth, financial health and price
// ratios from the latest report period, one vote per theme.
type FundamentalsAgent struct{}

func (FundamentalsAgent) Name() string { return FundamentalsAgentName }

func (FundamentalsAgent) Analyze(snap Snapshot) models.AgentSignal {
	if len(snap.Metrics) == 0 {
		return models.AgentSignal{Signal: models.SignalNeutral, Confidence: 0}
	}
	m := snap.Metrics[0]

	votes := []models.Signal{
		profitabilityVote(m),
		growthVote(m),
		healthVote(m),
		priceRatioVote(m),
	}

	var bullish, bearish int
	for _, v := range votes {
		switch v {
		case models.SignalBullish:
			bullish++
		case models.SignalBearish:
			bearish++
		}
	}
	return tally(bullish, bearish, len(votes))
}

// Margins and returns arrive as raw percent figures, so thresholds are on
// the percent scale.
func profitabilityVote(m models.FinancialMetrics) models.Signal {
	score := 0
	if m.ReturnOnEquity != nil && *m.ReturnOnEquity > 15 {
		score++
	}
	if m.NetMargin != nil && *m.NetMargin > 20 {
		score++
	}
	if m.OperatingMargin != nil && *m.OperatingMargin > 15 {
		score++
	}
	return thresholdSignal(score, 2, 0)
}

func growthVote(m models.FinancialMetrics) models.Signal {
	score := 0
	if m.RevenueGrowth != nil && *m.RevenueGrowth > 10 {
		score++
	}
	if m.EarningsGrowth != nil && *m.EarningsGrowth > 10 {
		score++
	}
	if m.BookValueGrowth != nil && *m.BookValueGrowth > 10 {
		score++
	}
	return thresholdSignal(score, 2, 0)
}

// Leverage ratios are fractions, not percents.
func healthVote(m models.FinancialMetrics) models.Signal {
	score := 0
	if m.CurrentRatio != nil && *m.CurrentRatio > 1.5 {
		score++
	}
	if m.DebtToEquity != nil && *m.DebtToEquity < 0.5 {
		score++
	}
	if m.FreeCashFlowPerShare != nil && m.EarningsPerShare != nil &&
		*m.FreeCashFlowPerShare > *m.EarningsPerShare*0.8 {
		score++
	}
	return thresholdSignal(score, 2, 0)
}

func priceRatioVote(m models.FinancialMetrics) models.Signal {
	expensive := 0
	if m.PriceToEarningsRatio != nil && *m.PriceToEarningsRatio > 25 {
		expensive++
	}
	if m.PriceToBookRatio != nil && *m.PriceToBookRatio > 3 {
		expensive++
	}
	if m.PriceToSalesRatio != nil && *m.PriceToSalesRatio > 5 {
		expensive++
	}
	// Rich multiples read bearish, cheap ones bullish.
	switch {
	case expensive >= 2:
		return models.SignalBearish
	case expensive == 0:
		return models.SignalBullish
	default:
		return models.SignalNeutral
	}
}

func thresholdSignal(score, bullishAt, bearishAt int) models.Signal {
	switch {
	case score >= bullishAt:
		return models.SignalBullish
	case score <= bearishAt:
		return models.SignalBearish
	default:
		return models.SignalNeutral
	}
}
