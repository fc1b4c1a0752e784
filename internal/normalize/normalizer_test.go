package normalize

import (
	"testing"

	"FundCortex/internal/models"
)

func indicatorRow(day string, extra Row) Row {
	row := Row{"日期": day}
	for k, v := range extra {
		row[k] = v
	}
	return row
}

func TestFinancialMetricsDateFilterSortLimit(t *testing.T) {
	n := New(DefaultMappingSet())
	table := RawTable{Rows: []Row{
		indicatorRow("2022-12-31", nil),
		indicatorRow("2024-06-30", nil), // past end date, must never appear
		indicatorRow("2023-12-31", nil),
		indicatorRow("2023-06-30", nil),
	}}

	got := n.FinancialMetrics("601139", table, RawTable{}, models.PeriodAnnual, "2023-12-31", 2)
	if len(got) != 2 {
		t.Fatalf("expected limit 2, got %d records", len(got))
	}
	if got[0].ReportPeriod != "2023-12-31" || got[1].ReportPeriod != "2023-06-30" {
		t.Fatalf("expected descending report periods, got %s, %s", got[0].ReportPeriod, got[1].ReportPeriod)
	}
	for _, m := range got {
		if m.ReportPeriod > "2023-12-31" {
			t.Fatalf("report period %s past end date", m.ReportPeriod)
		}
	}
}

func TestPercentageFieldsStoredAsFractions(t *testing.T) {
	n := New(DefaultMappingSet())
	table := RawTable{Rows: []Row{indicatorRow("2023-12-31", Row{
		"现金比率(%)":         25.0,
		"资产负债率(%)":        58.7,
		"负债与所有者权益比率(%)":   142.0,
		"股息发放率(%)":        30.0,
		"销售毛利率(%)":        18.4, // not a percent-transform column, stays raw
	})}}

	got := n.FinancialMetrics("601139", table, RawTable{}, models.PeriodTTM, "2024-01-01", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	m := got[0]
	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"cash_ratio", m.CashRatio, 0.25},
		{"debt_to_assets", m.DebtToAssets, 0.587},
		{"debt_to_equity", m.DebtToEquity, 1.42},
		{"payout_ratio", m.PayoutRatio, 0.30},
		{"gross_margin", m.GrossMargin, 18.4},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Fatalf("%s missing", c.name)
		}
		if *c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, *c.got, c.want)
		}
	}
}

func TestMissingColumnsStayAbsent(t *testing.T) {
	n := New(DefaultMappingSet())
	table := RawTable{Rows: []Row{indicatorRow("2023-12-31", nil)}}

	got := n.FinancialMetrics("601139", table, RawTable{}, models.PeriodTTM, "2024-01-01", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].ReturnOnEquity != nil || got[0].MarketCap != nil {
		t.Fatal("unmapped fields must be nil, not zero sentinels")
	}
}

func TestUnparseableDatesDropRow(t *testing.T) {
	n := New(DefaultMappingSet())
	table := RawTable{Rows: []Row{
		{"日期": "not-a-date", "收盘": 10.0},
		{"日期": "2024-01-02", "收盘": 10.5, "开盘": 10.1, "最高": 10.6, "最低": 10.0, "成交量": 1200.0},
	}}

	got := n.Prices("601139", table, "", "2024-12-31")
	if len(got) != 1 {
		t.Fatalf("expected unparseable-date row dropped, got %d rows", len(got))
	}
	if got[0].Time != "2024-01-02" {
		t.Fatalf("unexpected surviving row %s", got[0].Time)
	}
	if got[0].Volume != 1200 {
		t.Fatalf("volume = %d, want 1200", got[0].Volume)
	}
}

func TestDateCoercionLayouts(t *testing.T) {
	for _, in := range []string{"2024-01-02", "20240102", "2024/01/02", "2024-01-02 15:30:00"} {
		got, err := CoerceDate(in)
		if err != nil {
			t.Fatalf("CoerceDate(%q): %v", in, err)
		}
		if got != "2024-01-02" {
			t.Fatalf("CoerceDate(%q) = %q", in, got)
		}
	}
	if _, err := CoerceDate("02-01-2024"); err == nil {
		t.Fatal("expected error for ambiguous layout")
	}
}

func TestInsiderTradeDerivedBeforeShares(t *testing.T) {
	n := New(DefaultMappingSet())
	table := RawTable{Rows: []Row{{
		"日期":          "2024-03-01",
		"名称":          "新华都",
		"变动人":         "倪国涛",
		"职务":          "董事长",
		"变动人与董监高的关系":  "本人",
		"变动股数":        -10562300.0,
		"成交均价":        6.2209,
		"变动后持股数":      71728488.0,
		"持股种类":        "A股",
	}}}

	got := n.InsiderTrades("002264", table, "", "2024-12-31", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(got))
	}
	tr := got[0]
	if !tr.IsBoardDirector {
		t.Error("本人 relation must map to board director")
	}
	if tr.SharesOwnedBeforeTransaction == nil {
		t.Fatal("before-transaction shares must be derived when both operands are known")
	}
	want := *tr.SharesOwnedAfterTransaction - *tr.TransactionShares
	if *tr.SharesOwnedBeforeTransaction != want {
		t.Fatalf("before = %v, want after - shares = %v", *tr.SharesOwnedBeforeTransaction, want)
	}
	if tr.EffectiveDate() != "2024-03-01" {
		t.Fatalf("transaction date must fall back to filing date, got %s", tr.EffectiveDate())
	}
}

func TestLineItemsOnlyRequestedAndEstimatedFlagged(t *testing.T) {
	n := New(DefaultMappingSet())
	table := RawTable{Rows: []Row{{
		"报告日":   "2023-12-31",
		"营业收入":  1.2e9,
		"净利润":   2.1e8,
	}}}

	got := n.LineItems("601139", table, []string{"revenue", "total_assets", "ebitda"}, models.PeriodAnnual, "2024-01-01", 5)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	li := got[0]
	if _, ok := li.Items["net_income"]; ok {
		t.Error("unrequested item must be absent, not populated")
	}
	if v := li.Item("revenue"); v == nil || *v != 1.2e9 {
		t.Fatalf("revenue = %v", v)
	}
	if li.Estimated["revenue"] {
		t.Error("provider-sourced item must not be flagged estimated")
	}
	if v := li.Item("total_assets"); v == nil {
		t.Fatal("placeholder item missing")
	} else if !li.Estimated["total_assets"] {
		t.Error("placeholder item must be flagged estimated")
	}
	if v := li.Item("ebitda"); v != nil {
		t.Error("requested item with no source and no placeholder must stay nil")
	}
}

func TestCompanyNewsRangeAndOrder(t *testing.T) {
	n := New(DefaultMappingSet())
	table := RawTable{Rows: []Row{
		{"新闻标题": "a", "发布时间": "2024-02-01", "新闻链接": "http://e/1", "文章来源": "em"},
		{"新闻标题": "b", "发布时间": "2024-03-01", "新闻链接": "http://e/2", "文章来源": "em"},
		{"新闻标题": "c", "发布时间": "2024-04-01", "新闻链接": "http://e/3", "文章来源": "em"},
	}}

	got := n.CompanyNews("601139", table, "2024-02-15", "2024-03-31", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 item inside range, got %d", len(got))
	}
	if got[0].Title != "b" {
		t.Fatalf("unexpected item %q", got[0].Title)
	}
}

func TestEmptyTableYieldsEmptyNotError(t *testing.T) {
	n := New(DefaultMappingSet())
	if got := n.Prices("601139", RawTable{}, "", ""); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
	if got := n.CompanyNews("601139", RawTable{}, "", "", 10); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
