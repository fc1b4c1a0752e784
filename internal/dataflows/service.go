package dataflows

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"FundCortex/internal/cache"
	"FundCortex/internal/models"
	"FundCortex/internal/normalize"
	"FundCortex/internal/progress"
	"FundCortex/internal/storage/sqlite"
)

// Service is the data access layer. Reads are cache-first; a range miss
// triggers a provider fetch whose result is merged back into the cache.
// Disclosure collections additionally persist through the document store
// so repeated runs on the same day skip the provider entirely.
type Service struct {
	provider Provider
	yahoo    *YahooClient
	norm     *normalize.Normalizer
	cache    *cache.Store
	docs     *sqlite.Store
	progress *progress.Reporter
	log      zerolog.Logger
}

// ServiceOptions wires the service's collaborators. Docs may be nil, in
// which case disclosure data is fetched live on every call.
type ServiceOptions struct {
	Provider Provider
	Yahoo    *YahooClient
	Mappings normalize.MappingSet
	Docs     *sqlite.Store
	Progress *progress.Reporter
	Logger   zerolog.Logger
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		provider: opts.Provider,
		yahoo:    opts.Yahoo,
		norm:     normalize.New(opts.Mappings),
		cache:    cache.NewStore(),
		docs:     opts.Docs,
		progress: opts.Progress,
		log:      opts.Logger.With().Str("component", "dataflows").Logger(),
	}
}

// GetPrices returns daily prices in [startDate, endDate], ascending.
func (s *Service) GetPrices(ctx context.Context, ticker, startDate, endDate string) ([]models.Price, error) {
	if cached := s.cache.PricesInRange(ticker, startDate, endDate); len(cached) > 0 {
		return cached, nil
	}

	s.progress.UpdateStatus("data", ticker, "fetching prices")

	var prices []models.Price
	if s.yahoo != nil && !IsAShareTicker(ticker) {
		fetched, err := s.yahoo.DailyPrices(ctx, ticker, startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("prices for %s: %w", ticker, err)
		}
		prices = fetched
	} else {
		table, err := s.provider.DailyPrices(ctx, ticker, startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("prices for %s: %w", ticker, err)
		}
		prices = s.norm.Prices(ticker, table, startDate, endDate)
	}

	s.cache.SetPrices(ticker, prices)
	return s.cache.PricesInRange(ticker, startDate, endDate), nil
}

// LatestPrice returns the closing price of the last bar at or before endDate,
// looking back up to 30 days.
func (s *Service) LatestPrice(ctx context.Context, ticker, endDate string) (decimal.Decimal, error) {
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	start := end.AddDate(0, 0, -30).Format("2006-01-02")

	prices, err := s.GetPrices(ctx, ticker, start, endDate)
	if err != nil {
		return decimal.Zero, err
	}
	if len(prices) == 0 {
		return decimal.Zero, fmt.Errorf("no prices for %s up to %s", ticker, endDate)
	}
	return prices[len(prices)-1].Close, nil
}

// GetFinancialMetrics returns up to limit report periods ending at or before
// endDate, most recent first.
func (s *Service) GetFinancialMetrics(ctx context.Context, ticker, endDate string, period models.Period, limit int) ([]models.FinancialMetrics, error) {
	if cached := s.cache.FinancialMetricsInRange(ticker, "", endDate); len(cached) > 0 {
		return tailDesc(cached, limit), nil
	}

	s.progress.UpdateStatus("data", ticker, "fetching financial metrics")

	indicators, err := s.provider.FinancialIndicators(ctx, ticker, startYearFor(endDate))
	if err != nil {
		return nil, fmt.Errorf("financial indicators for %s: %w", ticker, err)
	}
	valuation, err := s.provider.ValuationSnapshots(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("valuation snapshots for %s: %w", ticker, err)
	}

	metrics := s.norm.FinancialMetrics(ticker, indicators, valuation, period, endDate, limit)
	s.cache.SetFinancialMetrics(ticker, metrics)
	return metrics, nil
}

// SearchLineItems returns the requested income statement line items per
// report period, most recent first. Cached rows are reused only when they
// already carry every requested item name; a request introducing a new name
// refetches so the row is rebuilt with the full set.
func (s *Service) SearchLineItems(ctx context.Context, ticker string, items []string, endDate string, period models.Period, limit int) ([]models.LineItem, error) {
	if cached := s.cache.LineItemsInRange(ticker, "", endDate); len(cached) > 0 && coversItems(cached, items) {
		return tailDesc(cached, limit), nil
	}

	s.progress.UpdateStatus("data", ticker, "fetching line items")

	table, err := s.provider.IncomeStatement(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("income statement for %s: %w", ticker, err)
	}

	lineItems := s.norm.LineItems(ticker, table, items, period, endDate, limit)
	s.cache.SetLineItems(ticker, lineItems)
	return lineItems, nil
}

// coversItems reports whether every cached row carries all requested item
// names. The normalizer records requested-but-unavailable names as nil
// entries, so map presence distinguishes "asked before" from "never asked".
func coversItems(cached []models.LineItem, items []string) bool {
	for _, li := range cached {
		for _, name := range items {
			if _, ok := li.Items[name]; !ok {
				return false
			}
		}
	}
	return true
}

// GetMarketCap returns the market capitalization as of endDate, or nil when
// no valuation snapshot covers the date.
func (s *Service) GetMarketCap(ctx context.Context, ticker, endDate string) (*float64, error) {
	metrics, err := s.GetFinancialMetrics(ctx, ticker, endDate, models.PeriodTTM, 1)
	if err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, nil
	}
	return metrics[0].MarketCap, nil
}

// GetInsiderTrades returns director and officer holding changes whose
// effective date falls in [startDate, endDate], most recent first.
func (s *Service) GetInsiderTrades(ctx context.Context, ticker, startDate, endDate string, limit int) ([]models.InsiderTrade, error) {
	if cached := s.cache.InsiderTradesInRange(ticker, startDate, endDate); len(cached) > 0 {
		return tailDesc(cached, limit), nil
	}

	table, err := s.disclosureTable(ctx, sqlite.CollectionInsiderTrades, ticker, "syncing insider filings",
		s.provider.InsiderHoldingChanges, insiderDocKey)
	if err != nil {
		return nil, fmt.Errorf("insider trades for %s: %w", ticker, err)
	}

	trades := s.norm.InsiderTrades(ticker, table, startDate, endDate, limit)
	s.cache.SetInsiderTrades(ticker, trades)
	return trades, nil
}

// GetCompanyNews returns company news dated within [startDate, endDate],
// most recent first.
func (s *Service) GetCompanyNews(ctx context.Context, ticker, startDate, endDate string, limit int) ([]models.CompanyNews, error) {
	if cached := s.cache.CompanyNewsInRange(ticker, startDate, endDate); len(cached) > 0 {
		return tailDesc(cached, limit), nil
	}

	table, err := s.disclosureTable(ctx, sqlite.CollectionCompanyNews, ticker, "syncing company news",
		s.provider.CompanyNews, newsDocKey)
	if err != nil {
		return nil, fmt.Errorf("company news for %s: %w", ticker, err)
	}

	news := s.norm.CompanyNews(ticker, table, startDate, endDate, limit)
	s.cache.SetCompanyNews(ticker, news)
	return news, nil
}

// disclosureTable serves a collection through the document store when one is
// configured: sync from the provider at most once per day, then read back the
// persisted rows. Without a store it fetches live.
func (s *Service) disclosureTable(ctx context.Context, collection, ticker, stage string,
	fetch func(context.Context, string) (normalize.RawTable, error),
	keyFn func(normalize.Row) string) (normalize.RawTable, error) {

	if s.docs == nil {
		s.progress.UpdateStatus("data", ticker, stage)
		return fetch(ctx, ticker)
	}

	fresh, err := s.docs.FreshToday(ctx, collection, ticker)
	if err != nil {
		return normalize.RawTable{}, err
	}
	if !fresh {
		s.progress.UpdateStatus("data", ticker, stage)
		table, err := fetch(ctx, ticker)
		if err != nil {
			return normalize.RawTable{}, err
		}
		if err := s.docs.InsertDocuments(ctx, collection, ticker, table.Rows, keyFn); err != nil {
			return normalize.RawTable{}, err
		}
		day := time.Now().UTC().Format("2006-01-02")
		if err := s.docs.SetLastUpdate(ctx, collection, ticker, day); err != nil {
			return normalize.RawTable{}, err
		}
		s.log.Debug().Str("ticker", ticker).Str("collection", collection).
			Int("rows", len(table.Rows)).Msg("synced disclosure collection")
	}

	return s.docs.QueryByTicker(ctx, collection, ticker)
}

// SyncDisclosures refreshes the persisted disclosure collections for ticker.
// Used by the scheduled refresh job.
func (s *Service) SyncDisclosures(ctx context.Context, ticker string) error {
	if s.docs == nil {
		return fmt.Errorf("no document store configured")
	}
	if _, err := s.disclosureTable(ctx, sqlite.CollectionInsiderTrades, ticker, "syncing insider filings",
		s.provider.InsiderHoldingChanges, insiderDocKey); err != nil {
		return fmt.Errorf("sync insider trades for %s: %w", ticker, err)
	}
	if _, err := s.disclosureTable(ctx, sqlite.CollectionCompanyNews, ticker, "syncing company news",
		s.provider.CompanyNews, newsDocKey); err != nil {
		return fmt.Errorf("sync company news for %s: %w", ticker, err)
	}
	return nil
}

func insiderDocKey(row normalize.Row) string {
	date, _ := row["日期"].(string)
	name, _ := row["变动人"].(string)
	return date + "|" + name
}

func newsDocKey(row normalize.Row) string {
	url, _ := row["新闻链接"].(string)
	return url
}

// startYearFor gives the indicator lookback window: five fiscal years
// before endDate's year.
func startYearFor(endDate string) string {
	year := time.Now().Year()
	if t, err := time.Parse("2006-01-02", endDate); err == nil {
		year = t.Year()
	}
	return strconv.Itoa(year - 5)
}

// tailDesc truncates a descending-sorted slice to at most limit entries.
// Cached slices are ascending by date, so take the tail and reverse.
func tailDesc[T any](recs []T, limit int) []T {
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	out := make([]T, len(recs))
	for i, r := range recs {
		out[len(recs)-1-i] = r
	}
	return out
}
