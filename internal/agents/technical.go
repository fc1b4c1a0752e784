package agents

import "FundCortex/internal/models"

// TechnicalAgent votes on trend, momentum and mean reversion over the price
// window. Each theme contributes one vote.
type TechnicalAgent struct{}

func (TechnicalAgent) Name() string { return TechnicalAgentName }

func (TechnicalAgent) Analyze(snap Snapshot) models.AgentSignal {
	closes := closingPrices(snap.Prices)
	if len(closes) < 20 {
		return models.AgentSignal{Signal: models.SignalNeutral, Confidence: 0}
	}

	votes := []models.Signal{
		trendVote(closes),
		momentumVote(closes),
		meanReversionVote(closes),
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

func closingPrices(prices []models.Price) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = p.Close.InexactFloat64()
	}
	return out
}

// trendVote compares a short moving average against a long one.
func trendVote(closes []float64) models.Signal {
	shortMA := sma(closes, 10)
	longMA := sma(closes, 20)
	switch {
	case shortMA > longMA*1.01:
		return models.SignalBullish
	case shortMA < longMA*0.99:
		return models.SignalBearish
	default:
		return models.SignalNeutral
	}
}

// momentumVote looks at the return over the last 20 bars.
func momentumVote(closes []float64) models.Signal {
	base := closes[len(closes)-20]
	if base <= 0 {
		return models.SignalNeutral
	}
	ret := (closes[len(closes)-1] - base) / base
	switch {
	case ret > 0.05:
		return models.SignalBullish
	case ret < -0.05:
		return models.SignalBearish
	default:
		return models.SignalNeutral
	}
}

// meanReversionVote uses a 14-bar RSI: oversold reads bullish, overbought
// bearish.
func meanReversionVote(closes []float64) models.Signal {
	rsi := relativeStrength(closes, 14)
	switch {
	case rsi < 30:
		return models.SignalBullish
	case rsi > 70:
		return models.SignalBearish
	default:
		return models.SignalNeutral
	}
}

func sma(closes []float64, window int) float64 {
	if len(closes) < window || window <= 0 {
		return 0
	}
	sum := 0.0
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	return sum / float64(window)
}

func relativeStrength(closes []float64, period int) float64 {
	if len(closes) <= period {
		return 50
	}
	var gains, losses float64
	recent := closes[len(closes)-period-1:]
	for i := 1; i < len(recent); i++ {
		change := recent[i] - recent[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	if losses == 0 {
		return 100
	}
	rs := gains / losses
	return 100 - 100/(1+rs)
}
