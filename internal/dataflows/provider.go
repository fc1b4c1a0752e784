package dataflows

import (
	"context"

	"FundCortex/internal/normalize"
)

// Provider supplies raw tabular records in its native column vocabulary.
// The pipeline never interprets the columns itself; the normalizer's mapping
// tables do.
type Provider interface {
	// DailyPrices returns daily bars for [start, end], dates in YYYY-MM-DD.
	DailyPrices(ctx context.Context, ticker, start, end string) (normalize.RawTable, error)
	// FinancialIndicators returns per-report-period indicator rows from
	// startYear onward.
	FinancialIndicators(ctx context.Context, ticker, startYear string) (normalize.RawTable, error)
	// ValuationSnapshots returns dated market-cap and valuation-ratio rows.
	ValuationSnapshots(ctx context.Context, ticker string) (normalize.RawTable, error)
	// IncomeStatement returns income-statement rows, one per report period.
	IncomeStatement(ctx context.Context, ticker string) (normalize.RawTable, error)
	// CompanyNews returns recent news rows for the ticker.
	CompanyNews(ctx context.Context, ticker string) (normalize.RawTable, error)
	// InsiderHoldingChanges returns disclosed insider holding-change rows.
	InsiderHoldingChanges(ctx context.Context, ticker string) (normalize.RawTable, error)
}
