package agents

import (
	"strings"

	"FundCortex/internal/models"
)

// SentimentAgent blends insider trading direction with news tone. News
// carries more weight than filings, matching its higher frequency.
type SentimentAgent struct{}

func (SentimentAgent) Name() string { return SentimentAgentName }

const (
	insiderWeight = 0.3
	newsWeight    = 0.7
)

func (SentimentAgent) Analyze(snap Snapshot) models.AgentSignal {
	insiderBull, insiderBear := insiderVotes(snap.InsiderTrades)
	newsBull, newsBear := newsVotes(snap.News)

	bullish := insiderWeight*float64(insiderBull) + newsWeight*float64(newsBull)
	bearish := insiderWeight*float64(insiderBear) + newsWeight*float64(newsBear)
	total := bullish + bearish
	if total == 0 {
		return models.AgentSignal{Signal: models.SignalNeutral, Confidence: 0}
	}

	switch {
	case bullish > bearish:
		return models.AgentSignal{Signal: models.SignalBullish, Confidence: 100 * bullish / total}
	case bearish > bullish:
		return models.AgentSignal{Signal: models.SignalBearish, Confidence: 100 * bearish / total}
	default:
		return models.AgentSignal{Signal: models.SignalNeutral, Confidence: 50}
	}
}

// insiderVotes counts each filing as one vote: net buying bullish, net
// selling bearish.
func insiderVotes(trades []models.InsiderTrade) (bullish, bearish int) {
	for _, trade := range trades {
		if trade.TransactionShares == nil || *trade.TransactionShares == 0 {
			continue
		}
		if *trade.TransactionShares > 0 {
			bullish++
		} else {
			bearish++
		}
	}
	return bullish, bearish
}

var (
	negativeWords = []string{
		"诉讼", "欺诈", "处罚", "亏损", "下滑", "违规", "退市", "风险警示",
		"调查", "减持", "质押", "lawsuit", "fraud", "decline", "investigation",
	}
	positiveWords = []string{
		"增长", "盈利", "创新高", "中标", "回购", "增持", "分红", "突破",
		"growth", "profit", "buyback", "expansion",
	}
)

// newsVotes keyword-scores each headline and body.
func newsVotes(news []models.CompanyNews) (bullish, bearish int) {
	for _, item := range news {
		text := item.Title + " " + item.Content
		neg := countAny(text, negativeWords)
		pos := countAny(text, positiveWords)
		switch {
		case pos > neg:
			bullish++
		case neg > pos:
			bearish++
		}
	}
	return bullish, bearish
}

func countAny(text string, words []string) int {
	n := 0
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}
