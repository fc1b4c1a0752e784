// Package cache is the in-process store for normalized market data. One
// Store maps (data kind, ticker) to an ordered sequence of records; sets
// merge with what is already there, deduplicating by each record's natural
// key, so concurrent redundant fetches of the same ticker stay harmless.
package cache

import (
	"sort"
	"sync"

	"FundCortex/internal/models"
)

// Record is implemented by every cacheable entity. NaturalKey identifies a
// record within its kind for dedup; DateKey is the canonical YYYY-MM-DD date
// used for range queries and ordering.
type Record interface {
	NaturalKey() string
	DateKey() string
}

type bucket[T Record] struct {
	mu sync.RWMutex
	m  map[string][]T
}

func newBucket[T Record]() *bucket[T] {
	return &bucket[T]{m: make(map[string][]T)}
}

func (b *bucket[T]) get(ticker string) ([]T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	recs, ok := b.m[ticker]
	return recs, ok
}

// getRange returns records whose DateKey falls in [start, end] inclusive.
// String comparison is valid because the date format is fixed-width and
// zero-padded. An empty start means no lower bound.
func (b *bucket[T]) getRange(ticker, start, end string) []T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []T
	for _, r := range b.m[ticker] {
		d := r.DateKey()
		if start != "" && d < start {
			continue
		}
		if end != "" && d > end {
			continue
		}
		out = append(out, r)
	}
	return out
}

// set merges recs into the existing sequence. A new record with the same
// natural key replaces the old one; the merged sequence is kept sorted
// ascending by DateKey. An empty recs still records the ticker so that an
// empty fetch result is remembered as zero records, not as never-fetched.
func (b *bucket[T]) set(ticker string, recs []T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(recs) == 0 {
		if _, ok := b.m[ticker]; !ok {
			b.m[ticker] = nil
		}
		return
	}

	byKey := make(map[string]T, len(b.m[ticker])+len(recs))
	order := make([]string, 0, len(b.m[ticker])+len(recs))
	for _, r := range b.m[ticker] {
		k := r.NaturalKey()
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = r
	}
	for _, r := range recs {
		k := r.NaturalKey()
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = r
	}

	merged := make([]T, 0, len(order))
	for _, k := range order {
		merged = append(merged, byKey[k])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].DateKey() < merged[j].DateKey()
	})
	b.m[ticker] = merged
}

// Store holds every cached data kind for the life of the process. It is an
// explicit object owned by the pipeline, not a package singleton, so tests
// run against isolated instances.
type Store struct {
	prices    *bucket[models.Price]
	metrics   *bucket[models.FinancialMetrics]
	lineItems *bucket[models.LineItem]
	insiders  *bucket[models.InsiderTrade]
	news      *bucket[models.CompanyNews]
}

// NewStore returns an empty cache.
func NewStore() *Store {
	return &Store{
		prices:    newBucket[models.Price](),
		metrics:   newBucket[models.FinancialMetrics](),
		lineItems: newBucket[models.LineItem](),
		insiders:  newBucket[models.InsiderTrade](),
		news:      newBucket[models.CompanyNews](),
	}
}

func (s *Store) Prices(ticker string) ([]models.Price, bool) { return s.prices.get(ticker) }

// PricesInRange returns cached bars with time in [start, end]. An empty
// result means cache miss: the caller is expected to fetch.
func (s *Store) PricesInRange(ticker, start, end string) []models.Price {
	return s.prices.getRange(ticker, start, end)
}

func (s *Store) SetPrices(ticker string, recs []models.Price) { s.prices.set(ticker, recs) }

func (s *Store) FinancialMetrics(ticker string) ([]models.FinancialMetrics, bool) {
	return s.metrics.get(ticker)
}

func (s *Store) FinancialMetricsInRange(ticker, start, end string) []models.FinancialMetrics {
	return s.metrics.getRange(ticker, start, end)
}

func (s *Store) SetFinancialMetrics(ticker string, recs []models.FinancialMetrics) {
	s.metrics.set(ticker, recs)
}

func (s *Store) LineItems(ticker string) ([]models.LineItem, bool) { return s.lineItems.get(ticker) }

func (s *Store) LineItemsInRange(ticker, start, end string) []models.LineItem {
	return s.lineItems.getRange(ticker, start, end)
}

func (s *Store) SetLineItems(ticker string, recs []models.LineItem) { s.lineItems.set(ticker, recs) }

func (s *Store) InsiderTrades(ticker string) ([]models.InsiderTrade, bool) {
	return s.insiders.get(ticker)
}

func (s *Store) InsiderTradesInRange(ticker, start, end string) []models.InsiderTrade {
	return s.insiders.getRange(ticker, start, end)
}

func (s *Store) SetInsiderTrades(ticker string, recs []models.InsiderTrade) {
	s.insiders.set(ticker, recs)
}

func (s *Store) CompanyNews(ticker string) ([]models.CompanyNews, bool) { return s.news.get(ticker) }

func (s *Store) CompanyNewsInRange(ticker, start, end string) []models.CompanyNews {
	return s.news.getRange(ticker, start, end)
}

func (s *Store) SetCompanyNews(ticker string, recs []models.CompanyNews) { s.news.set(ticker, recs) }
