package agents

import (
	"testing"

	"github.com/shopspring/decimal"

	"FundCortex/internal/models"
)

func metricsWith(mutate func(*models.FinancialMetrics)) []models.FinancialMetrics {
	m := models.FinancialMetrics{Ticker: "600519", ReportPeriod: "2023-12-31"}
	mutate(&m)
	return []models.FinancialMetrics{m}
}

func TestFundamentalsBullishOnStrongMetrics(t *testing.T) {
	snap := Snapshot{
		Metrics: metricsWith(func(m *models.FinancialMetrics) {
			m.ReturnOnEquity = models.Float(25)
			m.NetMargin = models.Float(45)
			m.OperatingMargin = models.Float(60)
			m.RevenueGrowth = models.Float(18)
			m.EarningsGrowth = models.Float(19)
			m.BookValueGrowth = models.Float(15)
			m.CurrentRatio = models.Float(3.2)
			m.DebtToEquity = models.Float(0.1)
			m.PriceToEarningsRatio = models.Float(18)
			m.PriceToBookRatio = models.Float(2.5)
		}),
	}

	got := FundamentalsAgent{}.Analyze(snap)
	if got.Signal != models.SignalBullish {
		t.Errorf("expected bullish, got %s", got.Signal)
	}
	if got.Confidence != 100 {
		t.Errorf("all four themes bullish should give confidence 100, got %.1f", got.Confidence)
	}
}

func TestFundamentalsNeutralWithoutData(t *testing.T) {
	got := FundamentalsAgent{}.Analyze(Snapshot{})
	if got.Signal != models.SignalNeutral || got.Confidence != 0 {
		t.Errorf("expected neutral/0 without metrics, got %+v", got)
	}
}

func TestFundamentalsBearishOnRichMultiples(t *testing.T) {
	snap := Snapshot{
		Metrics: metricsWith(func(m *models.FinancialMetrics) {
			m.ReturnOnEquity = models.Float(3)
			m.NetMargin = models.Float(2)
			m.RevenueGrowth = models.Float(-5)
			m.EarningsGrowth = models.Float(-12)
			m.CurrentRatio = models.Float(0.8)
			m.DebtToEquity = models.Float(2.4)
			m.PriceToEarningsRatio = models.Float(60)
			m.PriceToBookRatio = models.Float(8)
			m.PriceToSalesRatio = models.Float(9)
		}),
	}

	got := FundamentalsAgent{}.Analyze(snap)
	if got.Signal != models.SignalBearish {
		t.Errorf("expected bearish, got %s", got.Signal)
	}
}

func lineItem(period string, netIncome float64) models.LineItem {
	return models.LineItem{
		Ticker:       "600519",
		ReportPeriod: period,
		Items:        map[string]*float64{"net_income": models.Float(netIncome)},
	}
}

func TestValuationBullishWhenIntrinsicExceedsMarketCap(t *testing.T) {
	snap := Snapshot{
		MarketCap: models.Float(100e8),
		LineItems: []models.LineItem{
			lineItem("2023-12-31", 20e8),
			lineItem("2022-12-31", 17e8),
			lineItem("2021-12-31", 15e8),
		},
	}

	got := ValuationAgent{}.Analyze(snap)
	if got.Signal != models.SignalBullish {
		t.Errorf("expected bullish, got %s (confidence %.1f)", got.Signal, got.Confidence)
	}
}

func TestValuationNeutralWithoutMarketCap(t *testing.T) {
	got := ValuationAgent{}.Analyze(Snapshot{LineItems: []models.LineItem{lineItem("2023-12-31", 1e8)}})
	if got.Signal != models.SignalNeutral {
		t.Errorf("expected neutral without market cap, got %s", got.Signal)
	}
}

func TestSentimentBearishOnInsiderSelling(t *testing.T) {
	snap := Snapshot{
		InsiderTrades: []models.InsiderTrade{
			{TransactionShares: models.Float(-50000)},
			{TransactionShares: models.Float(-20000)},
			{TransactionShares: models.Float(-10000)},
		},
		News: []models.CompanyNews{
			{Title: "公司涉嫌违规遭调查", Content: ""},
		},
	}

	got := SentimentAgent{}.Analyze(snap)
	if got.Signal != models.SignalBearish {
		t.Errorf("expected bearish, got %s", got.Signal)
	}
}

func TestSentimentScoresArticleBody(t *testing.T) {
	snap := Snapshot{
		News: []models.CompanyNews{
			{Title: "年度报告摘要", Content: "净利润增长,董事会宣布回购及分红方案"},
			{Title: "公告", Content: "中标重大项目,业绩创新高"},
		},
	}

	got := SentimentAgent{}.Analyze(snap)
	if got.Signal != models.SignalBullish {
		t.Errorf("expected bullish from article bodies, got %s", got.Signal)
	}
}

func TestSentimentNeutralWithoutData(t *testing.T) {
	got := SentimentAgent{}.Analyze(Snapshot{})
	if got.Signal != models.SignalNeutral || got.Confidence != 0 {
		t.Errorf("expected neutral/0, got %+v", got)
	}
}

func pricesRamp(start float64, step float64, n int) []models.Price {
	out := make([]models.Price, n)
	for i := 0; i < n; i++ {
		out[i] = models.Price{
			Time:  "2024-01-01",
			Close: decimal.NewFromFloat(start + step*float64(i)),
		}
	}
	return out
}

func TestTechnicalBullishOnUptrend(t *testing.T) {
	// Steady ramp: short MA above long MA and strong 20-bar momentum. RSI
	// pegs overbought, so two of three votes are bullish.
	got := TechnicalAgent{}.Analyze(Snapshot{Prices: pricesRamp(100, 1.0, 40)})
	if got.Signal != models.SignalBullish {
		t.Errorf("expected bullish on uptrend, got %s", got.Signal)
	}
}

func TestTechnicalNeutralOnShortWindow(t *testing.T) {
	got := TechnicalAgent{}.Analyze(Snapshot{Prices: pricesRamp(100, 1.0, 5)})
	if got.Signal != models.SignalNeutral || got.Confidence != 0 {
		t.Errorf("expected neutral/0 with under 20 bars, got %+v", got)
	}
}

func TestRiskManagerCapsExposure(t *testing.T) {
	portfolio := models.NewPortfolio(decimal.NewFromInt(100000), 0.5)
	prices := map[string]decimal.Decimal{
		"600519": decimal.NewFromInt(1700),
		"000001": decimal.NewFromFloat(10.5),
	}

	out := NewRiskManager().Assess(portfolio, prices, []string{"600519", "000001", "300750"})

	// 20% of an all-cash 100000 portfolio.
	if got := out["600519"].RemainingPositionLimit; got != 20000 {
		t.Errorf("expected limit 20000, got %.2f", got)
	}
	if got := out["600519"].CurrentPrice; got != 1700 {
		t.Errorf("expected price 1700, got %.2f", got)
	}
	// No price means no capacity.
	if got := out["300750"]; got.RemainingPositionLimit != 0 || got.CurrentPrice != 0 {
		t.Errorf("expected zero risk signal without price, got %+v", got)
	}
}

func TestRiskManagerSubtractsCurrentExposure(t *testing.T) {
	portfolio := models.NewPortfolio(decimal.NewFromInt(83000), 0.5)
	portfolio.Positions["600519"] = models.Position{LongShares: 10}
	prices := map[string]decimal.Decimal{"600519": decimal.NewFromInt(1700)}

	out := NewRiskManager().Assess(portfolio, prices, []string{"600519"})

	// Total value 83000 + 17000 = 100000; limit 20000 minus 17000 held.
	if got := out["600519"].RemainingPositionLimit; got != 3000 {
		t.Errorf("expected remaining 3000, got %.2f", got)
	}
}

func TestRunExcludesNothingAndKeysByAgent(t *testing.T) {
	snaps := map[string]Snapshot{"600519": {}}
	out := Run(DefaultAnalysts(), nil, snaps)

	if len(out) != 4 {
		t.Fatalf("expected 4 agents, got %d", len(out))
	}
	for _, name := range []string{FundamentalsAgentName, ValuationAgentName, SentimentAgentName, TechnicalAgentName} {
		byTicker, ok := out[name]
		if !ok {
			t.Errorf("missing agent %s", name)
			continue
		}
		if _, ok := byTicker["600519"]; !ok {
			t.Errorf("agent %s missing ticker entry", name)
		}
	}
}
