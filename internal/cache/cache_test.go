package cache

import (
	"testing"

	"github.com/shopspring/decimal"

	"FundCortex/internal/models"
)

func bar(day string, close float64) models.Price {
	d := decimal.NewFromFloat(close)
	return models.Price{Time: day, Open: d, Close: d, High: d, Low: d, Volume: 100}
}

func TestSetMergesAndDedupsByNaturalKey(t *testing.T) {
	s := NewStore()
	s.SetPrices("601139", []models.Price{bar("2024-01-02", 10), bar("2024-01-03", 11)})
	s.SetPrices("601139", []models.Price{bar("2024-01-03", 12), bar("2024-01-04", 13)})

	recs, ok := s.Prices("601139")
	if !ok {
		t.Fatal("expected cached prices")
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 merged records, got %d", len(recs))
	}
	// The later record with the same natural key wins.
	if !recs[1].Close.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("expected replaced close 12, got %s", recs[1].Close)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Time >= recs[i].Time {
			t.Fatalf("records not sorted ascending: %s >= %s", recs[i-1].Time, recs[i].Time)
		}
	}
}

func TestSetIsIdempotent(t *testing.T) {
	s := NewStore()
	recs := []models.Price{bar("2024-01-02", 10)}
	s.SetPrices("601139", recs)
	s.SetPrices("601139", recs)

	got := s.PricesInRange("601139", "2024-01-01", "2024-01-31")
	if len(got) != 1 {
		t.Fatalf("expected 1 record after duplicate insert, got %d", len(got))
	}
}

func TestRangeQueryIsInclusive(t *testing.T) {
	s := NewStore()
	s.SetPrices("601139", []models.Price{
		bar("2024-01-01", 9),
		bar("2024-01-02", 10),
		bar("2024-01-05", 11),
	})

	got := s.PricesInRange("601139", "2024-01-02", "2024-01-05")
	if len(got) != 2 {
		t.Fatalf("expected 2 records in range, got %d", len(got))
	}
	if got[0].Time != "2024-01-02" || got[1].Time != "2024-01-05" {
		t.Fatalf("range endpoints not inclusive: %v", got)
	}
}

func TestEmptyRangeIsMiss(t *testing.T) {
	s := NewStore()
	s.SetPrices("601139", []models.Price{bar("2024-01-02", 10)})

	if got := s.PricesInRange("601139", "2024-02-01", "2024-02-28"); len(got) != 0 {
		t.Fatalf("expected no records outside range, got %d", len(got))
	}
	if got := s.PricesInRange("000001", "2024-01-01", "2024-01-31"); len(got) != 0 {
		t.Fatalf("expected no records for unknown ticker, got %d", len(got))
	}
}

func TestEmptySetRecordsTicker(t *testing.T) {
	s := NewStore()
	if _, ok := s.Prices("688001"); ok {
		t.Fatal("ticker should be absent before any set")
	}

	s.SetPrices("688001", nil)

	recs, ok := s.Prices("688001")
	if !ok {
		t.Fatal("empty fetch result should be recorded, not treated as never-fetched")
	}
	if len(recs) != 0 {
		t.Fatalf("expected zero records, got %d", len(recs))
	}
}

func TestMetricsDedupByReportPeriod(t *testing.T) {
	s := NewStore()
	m1 := models.FinancialMetrics{Ticker: "601139", ReportPeriod: "2023-12-31", Period: models.PeriodAnnual}
	m2 := m1
	m2.ReturnOnEquity = models.Float(0.18)

	s.SetFinancialMetrics("601139", []models.FinancialMetrics{m1})
	s.SetFinancialMetrics("601139", []models.FinancialMetrics{m2})

	got, _ := s.FinancialMetrics("601139")
	if len(got) != 1 {
		t.Fatalf("expected one record per report period, got %d", len(got))
	}
	if got[0].ReturnOnEquity == nil || *got[0].ReturnOnEquity != 0.18 {
		t.Fatal("expected new record to replace old one")
	}
}

func TestInsiderTradeRangeUsesEffectiveDate(t *testing.T) {
	s := NewStore()
	withTx := models.InsiderTrade{
		Ticker:          "601139",
		Name:            models.String("倪国涛"),
		FilingDate:      "2024-03-01",
		TransactionDate: models.String("2024-02-20"),
	}
	filingOnly := models.InsiderTrade{
		Ticker:     "601139",
		Name:       models.String("王强"),
		FilingDate: "2024-03-05",
	}
	s.SetInsiderTrades("601139", []models.InsiderTrade{withTx, filingOnly})

	got := s.InsiderTradesInRange("601139", "2024-02-01", "2024-02-28")
	if len(got) != 1 {
		t.Fatalf("expected only the transaction-dated trade in February, got %d", len(got))
	}
	if got[0].EffectiveDate() != "2024-02-20" {
		t.Fatalf("unexpected effective date %s", got[0].EffectiveDate())
	}
}
