// Package agents holds the deterministic analysts whose directional views
// feed the decision engine, plus the risk manager that sizes positions.
package agents

import (
	"context"
	"fmt"

	"FundCortex/internal/dataflows"
	"FundCortex/internal/models"
	"FundCortex/internal/progress"
)

// Agent names as they appear in aggregated signals.
const (
	FundamentalsAgentName = "fundamentals_agent"
	ValuationAgentName    = "valuation_agent"
	SentimentAgentName    = "sentiment_agent"
	TechnicalAgentName    = "technical_agent"
)

// Snapshot is the per-ticker data window every analyst reads. It is
// assembled once per cycle so agents never fetch on their own.
type Snapshot struct {
	Ticker        string
	EndDate       string
	Prices        []models.Price
	Metrics       []models.FinancialMetrics
	LineItems     []models.LineItem
	InsiderTrades []models.InsiderTrade
	News          []models.CompanyNews
	MarketCap     *float64
}

// Analyst is one deterministic signal source.
type Analyst interface {
	Name() string
	Analyze(snap Snapshot) models.AgentSignal
}

// DefaultAnalysts returns the standard analyst lineup.
func DefaultAnalysts() []Analyst {
	return []Analyst{
		FundamentalsAgent{},
		ValuationAgent{},
		SentimentAgent{},
		TechnicalAgent{},
	}
}

// lineItemNames are the statement fields the valuation agent consumes.
var lineItemNames = []string{
	"net_income", "revenue", "total_assets", "total_liabilities",
	"outstanding_shares", "dividends_and_other_cash_distributions",
}

// Gather fetches one ticker's snapshot through the data service.
func Gather(ctx context.Context, svc *dataflows.Service, reporter *progress.Reporter, ticker, startDate, endDate string) (Snapshot, error) {
	reporter.UpdateStatus("analysis", ticker, "gathering data")

	snap := Snapshot{Ticker: ticker, EndDate: endDate}

	prices, err := svc.GetPrices(ctx, ticker, startDate, endDate)
	if err != nil {
		return Snapshot{}, fmt.Errorf("gather prices: %w", err)
	}
	snap.Prices = prices

	metrics, err := svc.GetFinancialMetrics(ctx, ticker, endDate, models.PeriodTTM, 10)
	if err != nil {
		return Snapshot{}, fmt.Errorf("gather metrics: %w", err)
	}
	snap.Metrics = metrics

	items, err := svc.SearchLineItems(ctx, ticker, lineItemNames, endDate, models.PeriodTTM, 5)
	if err != nil {
		return Snapshot{}, fmt.Errorf("gather line items: %w", err)
	}
	snap.LineItems = items

	trades, err := svc.GetInsiderTrades(ctx, ticker, startDate, endDate, 100)
	if err != nil {
		return Snapshot{}, fmt.Errorf("gather insider trades: %w", err)
	}
	snap.InsiderTrades = trades

	news, err := svc.GetCompanyNews(ctx, ticker, startDate, endDate, 50)
	if err != nil {
		return Snapshot{}, fmt.Errorf("gather news: %w", err)
	}
	snap.News = news

	mcap, err := svc.GetMarketCap(ctx, ticker, endDate)
	if err != nil {
		return Snapshot{}, fmt.Errorf("gather market cap: %w", err)
	}
	snap.MarketCap = mcap

	return snap, nil
}

// Run evaluates every analyst against the snapshots and returns the signal
// matrix keyed by agent name then ticker.
func Run(analysts []Analyst, reporter *progress.Reporter, snapshots map[string]Snapshot) models.AnalystSignals {
	out := make(models.AnalystSignals, len(analysts))
	for _, analyst := range analysts {
		byTicker := make(map[string]models.AgentSignal, len(snapshots))
		for ticker, snap := range snapshots {
			reporter.UpdateStatus("analysis", ticker, analyst.Name())
			byTicker[ticker] = analyst.Analyze(snap)
		}
		out[analyst.Name()] = byTicker
	}
	return out
}

// tally converts bullish and bearish vote counts into a signal with
// confidence proportional to the winning share.
func tally(bullish, bearish, total int) models.AgentSignal {
	if total == 0 {
		return models.AgentSignal{Signal: models.SignalNeutral, Confidence: 0}
	}
	switch {
	case bullish > bearish:
		return models.AgentSignal{
			Signal:     models.SignalBullish,
			Confidence: 100 * float64(bullish) / float64(total),
		}
	case bearish > bullish:
		return models.AgentSignal{
			Signal:     models.SignalBearish,
			Confidence: 100 * float64(bearish) / float64(total),
		}
	default:
		return models.AgentSignal{Signal: models.SignalNeutral, Confidence: 50}
	}
}
