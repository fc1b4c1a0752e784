package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MappingSet bundles the mapping table for every data kind one provider
// serves.
type MappingSet struct {
	Prices        Mapping `yaml:"prices"`
	Metrics       Mapping `yaml:"metrics"`
	Valuation     Mapping `yaml:"valuation"`
	LineItems     Mapping `yaml:"line_items"`
	InsiderTrades Mapping `yaml:"insider_trades"`
	News          Mapping `yaml:"news"`
}

// LoadMappingSet reads a YAML mapping file, letting a deployment rebind the
// provider vocabulary without a code change.
func LoadMappingSet(path string) (MappingSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MappingSet{}, fmt.Errorf("read mapping file: %w", err)
	}
	var set MappingSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return MappingSet{}, fmt.Errorf("parse mapping file %s: %w", path, err)
	}
	return set, nil
}

// DefaultMappingSet is the built-in table for the A-share provider's native
// column vocabulary.
func DefaultMappingSet() MappingSet {
	return MappingSet{
		Prices: Mapping{
			Kind:      "prices",
			DateField: "time",
			Columns: []ColumnMapping{
				{Native: "日期", Canonical: "time", Transform: TransformDate},
				{Native: "开盘", Canonical: "open", Transform: TransformNumber},
				{Native: "收盘", Canonical: "close", Transform: TransformNumber},
				{Native: "最高", Canonical: "high", Transform: TransformNumber},
				{Native: "最低", Canonical: "low", Transform: TransformNumber},
				{Native: "成交量", Canonical: "volume", Transform: TransformNumber},
			},
		},
		Metrics: Mapping{
			Kind:      "financial_metrics",
			DateField: "report_period",
			Columns: []ColumnMapping{
				{Native: "日期", Canonical: "report_period", Transform: TransformDate},
				{Native: "每股收益_调整后(元)", Canonical: "earnings_per_share", Transform: TransformNumber},
				{Native: "每股净资产_调整后(元)", Canonical: "book_value_per_share", Transform: TransformNumber},
				{Native: "净利润增长率(%)", Canonical: "earnings_growth", Transform: TransformNumber},
				{Native: "主营业务收入增长率(%)", Canonical: "revenue_growth", Transform: TransformNumber},
				{Native: "销售毛利率(%)", Canonical: "gross_margin", Transform: TransformNumber},
				{Native: "销售净利率(%)", Canonical: "net_margin", Transform: TransformNumber},
				{Native: "营业利润率(%)", Canonical: "operating_margin", Transform: TransformNumber},
				{Native: "净资产收益率(%)", Canonical: "return_on_equity", Transform: TransformNumber},
				{Native: "总资产净利润率(%)", Canonical: "return_on_assets", Transform: TransformNumber},
				{Native: "总资产周转率(次)", Canonical: "asset_turnover", Transform: TransformNumber},
				{Native: "存货周转率(次)", Canonical: "inventory_turnover", Transform: TransformNumber},
				{Native: "应收账款周转率(次)", Canonical: "receivables_turnover", Transform: TransformNumber},
				{Native: "应收账款周转天数(天)", Canonical: "days_sales_outstanding", Transform: TransformNumber},
				{Native: "流动比率", Canonical: "current_ratio", Transform: TransformNumber},
				{Native: "速动比率", Canonical: "quick_ratio", Transform: TransformNumber},
				{Native: "现金比率(%)", Canonical: "cash_ratio", Transform: TransformPercent},
				{Native: "资产负债率(%)", Canonical: "debt_to_assets", Transform: TransformPercent},
				{Native: "利息支付倍数", Canonical: "interest_coverage", Transform: TransformNumber},
				{Native: "负债与所有者权益比率(%)", Canonical: "debt_to_equity", Transform: TransformPercent},
				{Native: "股息发放率(%)", Canonical: "payout_ratio", Transform: TransformPercent},
				{Native: "每股经营性现金流(元)", Canonical: "free_cash_flow_per_share", Transform: TransformNumber},
				{Native: "净资产增长率(%)", Canonical: "book_value_growth", Transform: TransformNumber},
				{Native: "总资产(元)", Canonical: "total_assets", Transform: TransformNumber},
			},
		},
		Valuation: Mapping{
			Kind:      "valuation",
			DateField: "date",
			Columns: []ColumnMapping{
				{Native: "数据日期", Canonical: "date", Transform: TransformDate},
				{Native: "流通市值", Canonical: "market_cap", Transform: TransformNumber},
				{Native: "总市值", Canonical: "enterprise_value", Transform: TransformNumber},
				{Native: "PE(TTM)", Canonical: "price_to_earnings_ratio", Transform: TransformNumber},
				{Native: "市净率", Canonical: "price_to_book_ratio", Transform: TransformNumber},
				{Native: "市销率", Canonical: "price_to_sales_ratio", Transform: TransformNumber},
			},
		},
		LineItems: Mapping{
			Kind:      "line_items",
			DateField: "report_period",
			Columns: []ColumnMapping{
				{Native: "报告日", Canonical: "report_period", Transform: TransformDate},
				{Native: "基本每股收益", Canonical: "earnings_per_share", Transform: TransformNumber},
				{Native: "营业收入", Canonical: "revenue", Transform: TransformNumber},
				{Native: "净利润", Canonical: "net_income", Transform: TransformNumber},
			},
		},
		InsiderTrades: Mapping{
			Kind:      "insider_trades",
			DateField: "filing_date",
			Columns: []ColumnMapping{
				{Native: "日期", Canonical: "filing_date", Transform: TransformDate},
				{Native: "名称", Canonical: "issuer", Transform: TransformString},
				{Native: "变动人", Canonical: "name", Transform: TransformString},
				{Native: "职务", Canonical: "title", Transform: TransformString},
				{Native: "变动人与董监高的关系", Canonical: "is_board_director", Transform: TransformBoolEq, Arg: "本人"},
				{Native: "变动股数", Canonical: "transaction_shares", Transform: TransformNumber},
				{Native: "成交均价", Canonical: "transaction_price_per_share", Transform: TransformNumber},
				{Native: "变动金额", Canonical: "transaction_value", Transform: TransformNumber},
				{Native: "变动后持股数", Canonical: "shares_owned_after_transaction", Transform: TransformNumber},
				{Native: "持股种类", Canonical: "security_title", Transform: TransformString},
			},
		},
		News: Mapping{
			Kind:      "company_news",
			DateField: "date",
			Columns: []ColumnMapping{
				{Native: "新闻标题", Canonical: "title", Transform: TransformString},
				{Native: "发布时间", Canonical: "date", Transform: TransformDate},
				{Native: "新闻链接", Canonical: "url", Transform: TransformString},
				{Native: "文章来源", Canonical: "source", Transform: TransformString},
			},
		},
	}
}
