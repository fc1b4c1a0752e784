// Package engine turns aggregated analyst signals into final trading
// decisions through an LLM call with a validated JSON contract. Generation
// failures degrade to holding every ticker instead of erroring out.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"FundCortex/internal/dataflows"
	"FundCortex/internal/models"
	"FundCortex/internal/signals"
)

const fallbackReasoning = "Error in portfolio management, defaulting to hold"

// Inputs is everything one decision cycle consumes.
type Inputs struct {
	Tickers   []string
	Summaries map[string]signals.TickerSummary
	Portfolio models.Portfolio
}

// Outcome is the cycle result. Fallback marks that generation failed and
// every decision is the safe hold default; Err then carries the final cause
// for logging. Callers never treat Err as a hard failure.
type Outcome struct {
	Decisions map[string]models.TradingDecision
	Fallback  bool
	Err       error
}

type decisionEnvelope struct {
	Decisions map[string]models.TradingDecision `json:"decisions"`
}

// Engine drives the decision model.
type Engine struct {
	model    model.BaseChatModel
	validate *validator.Validate
	retry    *dataflows.RetryConfig
	log      zerolog.Logger
}

func New(chatModel model.BaseChatModel, log zerolog.Logger) *Engine {
	return &Engine{
		model:    chatModel,
		validate: validator.New(),
		retry:    dataflows.DefaultRetryConfig(),
		log:      log.With().Str("component", "engine").Logger(),
	}
}

// WithRetryConfig overrides the generation retry policy.
func (e *Engine) WithRetryConfig(cfg *dataflows.RetryConfig) *Engine {
	e.retry = cfg
	return e
}

// Decide runs one decision cycle. It never returns an error: any failure to
// obtain a valid decision set yields the hold fallback for every ticker.
func (e *Engine) Decide(ctx context.Context, in Inputs) Outcome {
	prompt, err := e.buildPrompt(in)
	if err != nil {
		e.log.Error().Err(err).Msg("prompt construction failed")
		return e.fallback(in.Tickers, err)
	}

	var envelope decisionEnvelope
	err = dataflows.WithRetry(e.retry, func() error {
		resp, err := e.model.Generate(ctx, []*schema.Message{
			schema.UserMessage(prompt),
		})
		if err != nil {
			return fmt.Errorf("model generation: %w", err)
		}

		parsed, err := e.parseDecisions(resp.Content, in.Tickers)
		if err != nil {
			return err
		}
		envelope = parsed
		return nil
	})
	if err != nil {
		e.log.Error().Err(err).Msg("decision generation failed, holding all tickers")
		return e.fallback(in.Tickers, err)
	}

	e.auditDecisions(envelope.Decisions, in)
	return Outcome{Decisions: envelope.Decisions}
}

func (e *Engine) buildPrompt(in Inputs) (string, error) {
	signalsByTicker := make(map[string]map[string]models.AgentSignal, len(in.Summaries))
	currentPrices := make(map[string]float64, len(in.Summaries))
	maxShares := make(map[string]int64, len(in.Summaries))
	for ticker, summary := range in.Summaries {
		signalsByTicker[ticker] = summary.Signals
		currentPrices[ticker] = summary.CurrentPrice
		maxShares[ticker] = summary.MaxShares
	}

	vars := map[string]string{
		"SignalsByTicker":    mustJSON(signalsByTicker),
		"CurrentPrices":      mustJSON(currentPrices),
		"MaxShares":          mustJSON(maxShares),
		"PortfolioCash":      in.Portfolio.Cash.StringFixed(2),
		"PortfolioPositions": mustJSON(in.Portfolio.Positions),
		"MarginRequirement":  fmt.Sprintf("%.2f", in.Portfolio.MarginRequirement),
		"TotalMarginUsed":    in.Portfolio.MarginUsed.StringFixed(2),
	}
	return loadPromptWithContext("portfolio_manager", vars)
}

// parseDecisions extracts and validates the JSON decision set. The model
// must cover every requested ticker.
func (e *Engine) parseDecisions(content string, tickers []string) (decisionEnvelope, error) {
	raw := extractJSON(content)
	if raw == "" {
		return decisionEnvelope{}, fmt.Errorf("no JSON object in model output")
	}

	var envelope decisionEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return decisionEnvelope{}, fmt.Errorf("parse decisions: %w", err)
	}
	if len(envelope.Decisions) == 0 {
		return decisionEnvelope{}, fmt.Errorf("model output has no decisions")
	}

	for _, ticker := range tickers {
		decision, ok := envelope.Decisions[ticker]
		if !ok {
			return decisionEnvelope{}, fmt.Errorf("missing decision for %s", ticker)
		}
		if err := e.validate.Struct(decision); err != nil {
			return decisionEnvelope{}, fmt.Errorf("invalid decision for %s: %w", ticker, err)
		}
	}
	return envelope, nil
}

// auditDecisions logs business-rule breaches without rewriting the model's
// output. Sizing is surfaced for review, not silently clamped.
func (e *Engine) auditDecisions(decisions map[string]models.TradingDecision, in Inputs) {
	for ticker, decision := range decisions {
		summary, ok := in.Summaries[ticker]
		if !ok {
			continue
		}
		if decision.Action == models.ActionBuy && decision.Quantity > summary.MaxShares {
			e.log.Warn().Str("ticker", ticker).
				Int64("quantity", decision.Quantity).
				Int64("max_shares", summary.MaxShares).
				Msg("buy quantity exceeds position limit")
		}
		if decision.Action == models.ActionSell {
			if pos := in.Portfolio.Position(ticker); decision.Quantity > pos.LongShares {
				e.log.Warn().Str("ticker", ticker).
					Int64("quantity", decision.Quantity).
					Int64("held", pos.LongShares).
					Msg("sell quantity exceeds long position")
			}
		}
		if decision.Action == models.ActionCover {
			if pos := in.Portfolio.Position(ticker); decision.Quantity > pos.ShortShares {
				e.log.Warn().Str("ticker", ticker).
					Int64("quantity", decision.Quantity).
					Int64("held", pos.ShortShares).
					Msg("cover quantity exceeds short position")
			}
		}
	}
}

func (e *Engine) fallback(tickers []string, cause error) Outcome {
	decisions := make(map[string]models.TradingDecision, len(tickers))
	for _, ticker := range tickers {
		decisions[ticker] = models.HoldDecision(fallbackReasoning)
	}
	return Outcome{Decisions: decisions, Fallback: true, Err: cause}
}

// extractJSON returns the first JSON object in content, stripping markdown
// code fences when present.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			content = rest[:end]
		} else {
			content = rest
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func mustJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
