package normalize

import (
	"sort"

	"github.com/shopspring/decimal"

	"FundCortex/internal/models"
)

// Normalizer applies one provider's mapping set to raw tables.
type Normalizer struct {
	maps MappingSet
}

func New(maps MappingSet) *Normalizer {
	return &Normalizer{maps: maps}
}

// Prices normalizes daily bars and keeps those with time in [start, end]
// inclusive, sorted ascending by time.
func (n *Normalizer) Prices(ticker string, table RawTable, start, end string) []models.Price {
	out := make([]models.Price, 0, len(table.Rows))
	for _, row := range table.Rows {
		f, ok := n.maps.Prices.Apply(row)
		if !ok {
			continue
		}
		day, _ := f.Str("time")
		if (start != "" && day < start) || (end != "" && day > end) {
			continue
		}
		p := models.Price{Time: day}
		if v := f.Num("open"); v != nil {
			p.Open = decimal.NewFromFloat(*v)
		}
		if v := f.Num("close"); v != nil {
			p.Close = decimal.NewFromFloat(*v)
		}
		if v := f.Num("high"); v != nil {
			p.High = decimal.NewFromFloat(*v)
		}
		if v := f.Num("low"); v != nil {
			p.Low = decimal.NewFromFloat(*v)
		}
		if v := f.Num("volume"); v != nil && *v >= 0 {
			p.Volume = int64(*v)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// metricSetters routes canonical numeric fields into the struct. The table
// keeps FinancialMetrics construction declarative next to the column maps.
var metricSetters = map[string]func(*models.FinancialMetrics, *float64){
	"market_cap":                  func(m *models.FinancialMetrics, v *float64) { m.MarketCap = v },
	"enterprise_value":            func(m *models.FinancialMetrics, v *float64) { m.EnterpriseValue = v },
	"price_to_earnings_ratio":     func(m *models.FinancialMetrics, v *float64) { m.PriceToEarningsRatio = v },
	"price_to_book_ratio":         func(m *models.FinancialMetrics, v *float64) { m.PriceToBookRatio = v },
	"price_to_sales_ratio":        func(m *models.FinancialMetrics, v *float64) { m.PriceToSalesRatio = v },
	"gross_margin":                func(m *models.FinancialMetrics, v *float64) { m.GrossMargin = v },
	"operating_margin":            func(m *models.FinancialMetrics, v *float64) { m.OperatingMargin = v },
	"net_margin":                  func(m *models.FinancialMetrics, v *float64) { m.NetMargin = v },
	"return_on_equity":            func(m *models.FinancialMetrics, v *float64) { m.ReturnOnEquity = v },
	"return_on_assets":            func(m *models.FinancialMetrics, v *float64) { m.ReturnOnAssets = v },
	"asset_turnover":              func(m *models.FinancialMetrics, v *float64) { m.AssetTurnover = v },
	"inventory_turnover":          func(m *models.FinancialMetrics, v *float64) { m.InventoryTurnover = v },
	"receivables_turnover":        func(m *models.FinancialMetrics, v *float64) { m.ReceivablesTurnover = v },
	"days_sales_outstanding":      func(m *models.FinancialMetrics, v *float64) { m.DaysSalesOutstanding = v },
	"current_ratio":               func(m *models.FinancialMetrics, v *float64) { m.CurrentRatio = v },
	"quick_ratio":                 func(m *models.FinancialMetrics, v *float64) { m.QuickRatio = v },
	"cash_ratio":                  func(m *models.FinancialMetrics, v *float64) { m.CashRatio = v },
	"debt_to_assets":              func(m *models.FinancialMetrics, v *float64) { m.DebtToAssets = v },
	"debt_to_equity":              func(m *models.FinancialMetrics, v *float64) { m.DebtToEquity = v },
	"interest_coverage":           func(m *models.FinancialMetrics, v *float64) { m.InterestCoverage = v },
	"payout_ratio":                func(m *models.FinancialMetrics, v *float64) { m.PayoutRatio = v },
	"revenue_growth":              func(m *models.FinancialMetrics, v *float64) { m.RevenueGrowth = v },
	"earnings_growth":             func(m *models.FinancialMetrics, v *float64) { m.EarningsGrowth = v },
	"book_value_growth":           func(m *models.FinancialMetrics, v *float64) { m.BookValueGrowth = v },
	"earnings_per_share":          func(m *models.FinancialMetrics, v *float64) { m.EarningsPerShare = v },
	"book_value_per_share":        func(m *models.FinancialMetrics, v *float64) { m.BookValuePerShare = v },
	"free_cash_flow_per_share":    func(m *models.FinancialMetrics, v *float64) { m.FreeCashFlowPerShare = v },
	"total_assets":                func(m *models.FinancialMetrics, v *float64) { m.TotalAssets = v },
}

type valuationRow struct {
	date   string
	fields Fields
}

// FinancialMetrics joins the indicator table with the valuation snapshot
// table (each report period picks the latest valuation row at or before it),
// keeps report periods <= endDate, and returns them sorted descending,
// truncated to limit.
func (n *Normalizer) FinancialMetrics(ticker string, indicators, valuation RawTable, period models.Period, endDate string, limit int) []models.FinancialMetrics {
	vals := make([]valuationRow, 0, len(valuation.Rows))
	for _, row := range valuation.Rows {
		f, ok := n.maps.Valuation.Apply(row)
		if !ok {
			continue
		}
		d, _ := f.Str("date")
		vals = append(vals, valuationRow{date: d, fields: f})
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i].date > vals[j].date })

	out := make([]models.FinancialMetrics, 0, len(indicators.Rows))
	for _, row := range indicators.Rows {
		f, ok := n.maps.Metrics.Apply(row)
		if !ok {
			continue
		}
		rp, _ := f.Str("report_period")
		if endDate != "" && rp > endDate {
			continue
		}
		m := models.FinancialMetrics{
			Ticker:       ticker,
			ReportPeriod: rp,
			Period:       period,
			Currency:     "CNY",
		}
		for canonical, set := range metricSetters {
			if v := f.Num(canonical); v != nil {
				set(&m, v)
			}
		}
		// Latest valuation snapshot at or before the report period.
		for _, vr := range vals {
			if vr.date <= rp {
				for canonical, set := range metricSetters {
					if v := vr.fields.Num(canonical); v != nil {
						set(&m, v)
					}
				}
				break
			}
		}
		out = append(out, m)
	}
	sortByDateDesc(out, func(m models.FinancialMetrics) string { return m.ReportPeriod })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// placeholderLineItems are fixed constants injected for items the provider's
// income-statement view does not carry. This is a known data-quality gap:
// every injected value is flagged Estimated so it is never mistaken for
// provider-sourced data.
var placeholderLineItems = map[string]float64{
	"total_assets":                           451e8,
	"current_assets":                         130e8,
	"current_liabilities":                    164e8,
	"total_liabilities":                      265e8,
	"book_value_per_share":                   3.8307,
	"outstanding_shares":                     28.77e8,
	"dividends_and_other_cash_distributions": 1.6,
}

// LineItems populates only the requested items. Requested items the mapping
// cannot supply stay nil unless a documented placeholder exists.
func (n *Normalizer) LineItems(ticker string, table RawTable, requested []string, period models.Period, endDate string, limit int) []models.LineItem {
	out := make([]models.LineItem, 0, len(table.Rows))
	for _, row := range table.Rows {
		f, ok := n.maps.LineItems.Apply(row)
		if !ok {
			continue
		}
		rp, _ := f.Str("report_period")
		if endDate != "" && rp > endDate {
			continue
		}
		item := models.LineItem{
			Ticker:       ticker,
			ReportPeriod: rp,
			Period:       period,
			Currency:     "CNY",
			Items:        make(map[string]*float64, len(requested)),
		}
		for _, name := range requested {
			if v := f.Num(name); v != nil {
				item.Items[name] = v
				continue
			}
			if placeholder, ok := placeholderLineItems[name]; ok {
				item.Items[name] = models.Float(placeholder)
				if item.Estimated == nil {
					item.Estimated = make(map[string]bool)
				}
				item.Estimated[name] = true
				continue
			}
			item.Items[name] = nil
		}
		out = append(out, item)
	}
	sortByDateDesc(out, func(l models.LineItem) string { return l.ReportPeriod })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// InsiderTrades normalizes holding-change filings. The provider discloses
// only the filing date, so the transaction date mirrors it; the
// before-transaction share count is derived, not stored independently.
func (n *Normalizer) InsiderTrades(ticker string, table RawTable, startDate, endDate string, limit int) []models.InsiderTrade {
	out := make([]models.InsiderTrade, 0, len(table.Rows))
	for _, row := range table.Rows {
		f, ok := n.maps.InsiderTrades.Apply(row)
		if !ok {
			continue
		}
		filing, _ := f.Str("filing_date")
		t := models.InsiderTrade{
			Ticker:          ticker,
			IsBoardDirector: f.Bool("is_board_director"),
			FilingDate:      filing,
			TransactionDate: models.String(filing),
		}
		if v, ok := f.Str("issuer"); ok {
			t.Issuer = models.String(v)
		}
		if v, ok := f.Str("name"); ok {
			t.Name = models.String(v)
		}
		if v, ok := f.Str("title"); ok {
			t.Title = models.String(v)
		}
		if v, ok := f.Str("security_title"); ok {
			t.SecurityTitle = models.String(v)
		}
		t.TransactionShares = f.Num("transaction_shares")
		t.TransactionPricePerShare = f.Num("transaction_price_per_share")
		t.TransactionValue = f.Num("transaction_value")
		t.SharesOwnedAfterTransaction = f.Num("shares_owned_after_transaction")
		if t.SharesOwnedAfterTransaction != nil && t.TransactionShares != nil {
			t.SharesOwnedBeforeTransaction = models.Float(*t.SharesOwnedAfterTransaction - *t.TransactionShares)
		}

		d := t.EffectiveDate()
		if (startDate != "" && d < startDate) || (endDate != "" && d > endDate) {
			continue
		}
		out = append(out, t)
	}
	sortByDateDesc(out, func(t models.InsiderTrade) string { return t.EffectiveDate() })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CompanyNews normalizes provider news rows within [startDate, endDate].
func (n *Normalizer) CompanyNews(ticker string, table RawTable, startDate, endDate string, limit int) []models.CompanyNews {
	out := make([]models.CompanyNews, 0, len(table.Rows))
	for _, row := range table.Rows {
		f, ok := n.maps.News.Apply(row)
		if !ok {
			continue
		}
		d, _ := f.Str("date")
		if (startDate != "" && d < startDate) || (endDate != "" && d > endDate) {
			continue
		}
		item := models.CompanyNews{Ticker: ticker, Date: d}
		if v, ok := f.Str("title"); ok {
			item.Title = v
		}
		if v, ok := f.Str("source"); ok {
			item.Source = v
		}
		if v, ok := f.Str("url"); ok {
			item.URL = v
		}
		out = append(out, item)
	}
	sortByDateDesc(out, func(n models.CompanyNews) string { return n.Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortByDateDesc[T any](recs []T, date func(T) string) {
	sort.SliceStable(recs, func(i, j int) bool { return date(recs[i]) > date(recs[j]) })
}
