// Package signals assembles the per-ticker view the decision engine consumes:
// every analyst's directional call plus the risk manager's sizing constraints.
package signals

import (
	"math"

	"FundCortex/internal/models"
)

// RiskAgentName is the agent whose output carries sizing constraints rather
// than a directional view. It is never listed among a ticker's signals.
const RiskAgentName = "risk_management_agent"

// TickerSummary is one ticker's aggregated inputs.
type TickerSummary struct {
	PositionLimit float64                       `json:"position_limit"`
	CurrentPrice  float64                       `json:"current_price"`
	MaxShares     int64                         `json:"max_shares"`
	Signals       map[string]models.AgentSignal `json:"signals"`
}

// Aggregate builds a summary for every requested ticker. Tickers missing
// from the risk output get a zero limit, zero price and zero max shares.
func Aggregate(tickers []string, analyst models.AnalystSignals, risk map[string]models.RiskSignal) map[string]TickerSummary {
	out := make(map[string]TickerSummary, len(tickers))
	for _, ticker := range tickers {
		summary := TickerSummary{
			Signals: make(map[string]models.AgentSignal),
		}

		if rs, ok := risk[ticker]; ok {
			summary.PositionLimit = rs.RemainingPositionLimit
			summary.CurrentPrice = rs.CurrentPrice
			summary.MaxShares = MaxShares(rs.RemainingPositionLimit, rs.CurrentPrice)
		}

		for agent, byTicker := range analyst {
			if agent == RiskAgentName {
				continue
			}
			if sig, ok := byTicker[ticker]; ok {
				summary.Signals[agent] = sig
			}
		}

		out[ticker] = summary
	}
	return out
}

// MaxShares converts a dollar limit into whole shares at the given price.
// A zero or negative price yields zero, never a division error.
func MaxShares(limit, price float64) int64 {
	if price <= 0 || limit <= 0 {
		return 0
	}
	return int64(math.Floor(limit / price))
}
