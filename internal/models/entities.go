package models

import "github.com/shopspring/decimal"

// Period identifies the reporting horizon of a financial record.
type Period string

const (
	PeriodTTM       Period = "ttm"
	PeriodAnnual    Period = "annual"
	PeriodQuarterly Period = "quarterly"
)

// Price is one daily OHLCV bar. Time is a calendar date in YYYY-MM-DD and is
// the canonical sort key.
type Price struct {
	Time   string          `json:"time"`
	Open   decimal.Decimal `json:"open"`
	Close  decimal.Decimal `json:"close"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Volume int64           `json:"volume"`
}

func (p Price) NaturalKey() string { return p.Time }
func (p Price) DateKey() string    { return p.Time }

// FinancialMetrics carries one report period of ratio and growth indicators.
// Most fields are optional: a nil pointer means the provider did not supply
// the value, which is not an error.
type FinancialMetrics struct {
	Ticker       string   `json:"ticker"`
	ReportPeriod string   `json:"report_period"`
	Period       Period   `json:"period"`
	Currency     string   `json:"currency"`
	MarketCap    *float64 `json:"market_cap"`

	EnterpriseValue               *float64 `json:"enterprise_value"`
	PriceToEarningsRatio          *float64 `json:"price_to_earnings_ratio"`
	PriceToBookRatio              *float64 `json:"price_to_book_ratio"`
	PriceToSalesRatio             *float64 `json:"price_to_sales_ratio"`
	EnterpriseValueToEBITDARatio  *float64 `json:"enterprise_value_to_ebitda_ratio"`
	EnterpriseValueToRevenueRatio *float64 `json:"enterprise_value_to_revenue_ratio"`
	FreeCashFlowYield             *float64 `json:"free_cash_flow_yield"`
	PEGRatio                      *float64 `json:"peg_ratio"`

	GrossMargin             *float64 `json:"gross_margin"`
	OperatingMargin         *float64 `json:"operating_margin"`
	NetMargin               *float64 `json:"net_margin"`
	ReturnOnEquity          *float64 `json:"return_on_equity"`
	ReturnOnAssets          *float64 `json:"return_on_assets"`
	ReturnOnInvestedCapital *float64 `json:"return_on_invested_capital"`

	AssetTurnover           *float64 `json:"asset_turnover"`
	InventoryTurnover       *float64 `json:"inventory_turnover"`
	ReceivablesTurnover     *float64 `json:"receivables_turnover"`
	DaysSalesOutstanding    *float64 `json:"days_sales_outstanding"`
	OperatingCycle          *float64 `json:"operating_cycle"`
	WorkingCapitalTurnover  *float64 `json:"working_capital_turnover"`
	CurrentRatio            *float64 `json:"current_ratio"`
	QuickRatio              *float64 `json:"quick_ratio"`
	CashRatio               *float64 `json:"cash_ratio"`
	OperatingCashFlowRatio  *float64 `json:"operating_cash_flow_ratio"`
	DebtToEquity            *float64 `json:"debt_to_equity"`
	DebtToAssets            *float64 `json:"debt_to_assets"`
	InterestCoverage        *float64 `json:"interest_coverage"`
	TotalAssets             *float64 `json:"total_assets"`

	RevenueGrowth           *float64 `json:"revenue_growth"`
	EarningsGrowth          *float64 `json:"earnings_growth"`
	BookValueGrowth         *float64 `json:"book_value_growth"`
	EarningsPerShareGrowth  *float64 `json:"earnings_per_share_growth"`
	FreeCashFlowGrowth      *float64 `json:"free_cash_flow_growth"`
	OperatingIncomeGrowth   *float64 `json:"operating_income_growth"`
	EBITDAGrowth            *float64 `json:"ebitda_growth"`
	PayoutRatio             *float64 `json:"payout_ratio"`
	EarningsPerShare        *float64 `json:"earnings_per_share"`
	BookValuePerShare       *float64 `json:"book_value_per_share"`
	FreeCashFlowPerShare    *float64 `json:"free_cash_flow_per_share"`
}

func (m FinancialMetrics) NaturalKey() string { return m.ReportPeriod }
func (m FinancialMetrics) DateKey() string    { return m.ReportPeriod }

// LineItem holds only the line items the caller asked for. Items the
// provider's statement view cannot supply may be filled with documented
// placeholder constants; each such value is flagged in Estimated so callers
// can tell provider-sourced data from stand-ins.
type LineItem struct {
	Ticker       string              `json:"ticker"`
	ReportPeriod string              `json:"report_period"`
	Period       Period              `json:"period"`
	Currency     string              `json:"currency"`
	Items        map[string]*float64 `json:"items"`
	Estimated    map[string]bool     `json:"estimated,omitempty"`
}

func (l LineItem) NaturalKey() string { return l.ReportPeriod }
func (l LineItem) DateKey() string    { return l.ReportPeriod }

// Item returns the named line item, or nil when it was not requested or the
// provider had no value for it.
func (l LineItem) Item(name string) *float64 { return l.Items[name] }

// InsiderTrade is one disclosed holding change by a company insider.
type InsiderTrade struct {
	Ticker                       string   `json:"ticker"`
	Issuer                       *string  `json:"issuer"`
	Name                         *string  `json:"name"`
	Title                        *string  `json:"title"`
	IsBoardDirector              bool     `json:"is_board_director"`
	TransactionDate              *string  `json:"transaction_date"`
	TransactionShares            *float64 `json:"transaction_shares"`
	TransactionPricePerShare     *float64 `json:"transaction_price_per_share"`
	TransactionValue             *float64 `json:"transaction_value"`
	SharesOwnedBeforeTransaction *float64 `json:"shares_owned_before_transaction"`
	SharesOwnedAfterTransaction  *float64 `json:"shares_owned_after_transaction"`
	SecurityTitle                *string  `json:"security_title"`
	FilingDate                   string   `json:"filing_date"`
}

// EffectiveDate is the transaction date, falling back to the filing date when
// the transaction date was not disclosed.
func (t InsiderTrade) EffectiveDate() string {
	if t.TransactionDate != nil && *t.TransactionDate != "" {
		return *t.TransactionDate
	}
	return t.FilingDate
}

func (t InsiderTrade) NaturalKey() string {
	name := ""
	if t.Name != nil {
		name = *t.Name
	}
	return t.FilingDate + "|" + name
}

func (t InsiderTrade) DateKey() string { return t.EffectiveDate() }

// CompanyNews is one news item attributed to a ticker.
type CompanyNews struct {
	Ticker    string   `json:"ticker"`
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Source    string   `json:"source"`
	Date      string   `json:"date"`
	URL       string   `json:"url"`
	Content   string   `json:"content,omitempty"`
	Sentiment *float64 `json:"sentiment"`
}

func (n CompanyNews) NaturalKey() string { return n.Date + "|" + n.URL }
func (n CompanyNews) DateKey() string    { return n.Date }

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s.
func String(s string) *string { return &s }
