package models

// Action is one of the five trading actions the decision schema allows.
type Action string

const (
	ActionBuy   Action = "buy"
	ActionSell  Action = "sell"
	ActionShort Action = "short"
	ActionCover Action = "cover"
	ActionHold  Action = "hold"
)

// TradingDecision is the per-ticker output of one decision cycle. Instances
// are created once per cycle and never mutated.
type TradingDecision struct {
	Action     Action  `json:"action" validate:"oneof=buy sell short cover hold"`
	Quantity   int64   `json:"quantity" validate:"gte=0"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=100"`
	Reasoning  string  `json:"reasoning"`
}

// HoldDecision is the safe default used when decision generation fails.
func HoldDecision(reasoning string) TradingDecision {
	return TradingDecision{
		Action:     ActionHold,
		Quantity:   0,
		Confidence: 0,
		Reasoning:  reasoning,
	}
}

// Signal is an analyst's directional view on a ticker.
type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// AgentSignal is one analyst's view with its confidence in [0,100].
type AgentSignal struct {
	Signal     Signal  `json:"signal"`
	Confidence float64 `json:"confidence"`
}

// RiskSignal is the risk manager's per-ticker output: the dollar amount of
// remaining position capacity and the latest price.
type RiskSignal struct {
	RemainingPositionLimit float64 `json:"remaining_position_limit"`
	CurrentPrice           float64 `json:"current_price"`
}

// AnalystSignals maps agent name to that agent's per-ticker signals. Agents
// silent on a ticker simply have no entry for it.
type AnalystSignals map[string]map[string]AgentSignal
