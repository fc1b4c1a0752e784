// Package trading wires one full analysis cycle: data gathering, analyst
// evaluation, risk sizing, aggregation and the final decision call.
package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"FundCortex/internal/agents"
	"FundCortex/internal/dataflows"
	"FundCortex/internal/engine"
	"FundCortex/internal/models"
	"FundCortex/internal/progress"
	"FundCortex/internal/signals"
)

// Session runs decision cycles against a fixed set of collaborators.
type Session struct {
	service  *dataflows.Service
	analysts []agents.Analyst
	risk     agents.RiskManager
	engine   *engine.Engine
	reporter *progress.Reporter
	log      zerolog.Logger
}

func NewSession(service *dataflows.Service, eng *engine.Engine, reporter *progress.Reporter, log zerolog.Logger) *Session {
	return &Session{
		service:  service,
		analysts: agents.DefaultAnalysts(),
		risk:     agents.NewRiskManager(),
		engine:   eng,
		reporter: reporter,
		log:      log.With().Str("component", "session").Logger(),
	}
}

// RunParams describes one cycle.
type RunParams struct {
	Tickers   []string
	StartDate string
	EndDate   string
	Portfolio models.Portfolio
}

// Result carries the cycle's decisions together with the intermediate
// signals, for display and audit.
type Result struct {
	Outcome   engine.Outcome
	Signals   models.AnalystSignals
	Summaries map[string]signals.TickerSummary
	Risk      map[string]models.RiskSignal
}

// Run executes one full cycle. Data fetch failures abort the cycle; only
// decision generation degrades to the hold fallback.
func (s *Session) Run(ctx context.Context, params RunParams) (Result, error) {
	if len(params.Tickers) == 0 {
		return Result{}, fmt.Errorf("no tickers requested")
	}
	if _, err := time.Parse("2006-01-02", params.EndDate); err != nil {
		return Result{}, fmt.Errorf("invalid end date %q: %w", params.EndDate, err)
	}
	startDate := params.StartDate
	if startDate == "" {
		end, _ := time.Parse("2006-01-02", params.EndDate)
		startDate = end.AddDate(0, -3, 0).Format("2006-01-02")
	}

	snapshots := make(map[string]agents.Snapshot, len(params.Tickers))
	prices := make(map[string]decimal.Decimal, len(params.Tickers))
	for _, ticker := range params.Tickers {
		snap, err := agents.Gather(ctx, s.service, s.reporter, ticker, startDate, params.EndDate)
		if err != nil {
			return Result{}, fmt.Errorf("gather %s: %w", ticker, err)
		}
		snapshots[ticker] = snap
		if len(snap.Prices) > 0 {
			prices[ticker] = snap.Prices[len(snap.Prices)-1].Close
		}
	}

	analystSignals := agents.Run(s.analysts, s.reporter, snapshots)
	riskSignals := s.risk.Assess(params.Portfolio, prices, params.Tickers)
	summaries := signals.Aggregate(params.Tickers, analystSignals, riskSignals)

	s.reporter.UpdateStatus("decision", "", "generating decisions")
	outcome := s.engine.Decide(ctx, engine.Inputs{
		Tickers:   params.Tickers,
		Summaries: summaries,
		Portfolio: params.Portfolio,
	})
	if outcome.Fallback {
		s.log.Warn().Err(outcome.Err).Msg("decision generation fell back to hold")
	}

	return Result{
		Outcome:   outcome,
		Signals:   analystSignals,
		Summaries: summaries,
		Risk:      riskSignals,
	}, nil
}
