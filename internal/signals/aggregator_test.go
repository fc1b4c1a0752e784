package signals

import (
	"testing"

	"FundCortex/internal/models"
)

func TestAggregateBuildsPerTickerSummaries(t *testing.T) {
	analyst := models.AnalystSignals{
		"fundamentals_agent": {
			"600519": {Signal: models.SignalBullish, Confidence: 80},
			"000001": {Signal: models.SignalNeutral, Confidence: 50},
		},
		"sentiment_agent": {
			"600519": {Signal: models.SignalBearish, Confidence: 60},
		},
		RiskAgentName: {
			"600519": {Signal: models.SignalNeutral, Confidence: 0},
		},
	}
	risk := map[string]models.RiskSignal{
		"600519": {RemainingPositionLimit: 20000, CurrentPrice: 1700},
		"000001": {RemainingPositionLimit: 5000, CurrentPrice: 10.5},
	}

	out := Aggregate([]string{"600519", "000001"}, analyst, risk)

	moutai := out["600519"]
	if moutai.MaxShares != 11 {
		t.Errorf("expected floor(20000/1700)=11 shares, got %d", moutai.MaxShares)
	}
	if len(moutai.Signals) != 2 {
		t.Errorf("expected 2 analyst signals, got %d", len(moutai.Signals))
	}
	if _, ok := moutai.Signals[RiskAgentName]; ok {
		t.Error("risk manager must not appear among analyst signals")
	}
	if moutai.Signals["fundamentals_agent"].Signal != models.SignalBullish {
		t.Errorf("unexpected fundamentals signal: %v", moutai.Signals["fundamentals_agent"].Signal)
	}

	pingan := out["000001"]
	if pingan.MaxShares != 476 {
		t.Errorf("expected floor(5000/10.5)=476 shares, got %d", pingan.MaxShares)
	}
	if len(pingan.Signals) != 1 {
		t.Errorf("expected 1 signal for 000001, got %d", len(pingan.Signals))
	}
}

func TestAggregateMissingRiskEntry(t *testing.T) {
	out := Aggregate([]string{"600519"}, models.AnalystSignals{}, nil)

	summary, ok := out["600519"]
	if !ok {
		t.Fatal("requested ticker missing from output")
	}
	if summary.MaxShares != 0 || summary.PositionLimit != 0 || summary.CurrentPrice != 0 {
		t.Errorf("expected zeroed sizing without risk data, got %+v", summary)
	}
	if summary.Signals == nil {
		t.Error("signals map should be non-nil")
	}
}

func TestMaxSharesZeroPrice(t *testing.T) {
	if got := MaxShares(10000, 0); got != 0 {
		t.Errorf("zero price must yield 0 shares, got %d", got)
	}
	if got := MaxShares(-100, 10); got != 0 {
		t.Errorf("negative limit must yield 0 shares, got %d", got)
	}
	if got := MaxShares(100, 3); got != 33 {
		t.Errorf("expected 33, got %d", got)
	}
}
