// Package display renders decision cycle results for the terminal.
package display

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"FundCortex/internal/models"
	"FundCortex/internal/trading"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2).
			Width(76)

	buyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	sellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	holdStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// ShowResult prints the full cycle result.
func ShowResult(result trading.Result, endDate string) {
	fmt.Println()
	fmt.Println(titleStyle.Render(fmt.Sprintf("Trading decisions for %s", endDate)))
	fmt.Println()

	if result.Outcome.Fallback {
		fmt.Println(warnStyle.Render("Decision generation failed; holding every ticker."))
		fmt.Println()
	}

	for _, ticker := range sortedTickers(result.Outcome.Decisions) {
		decision := result.Outcome.Decisions[ticker]
		fmt.Println(cardStyle.Render(decisionCard(ticker, decision, result)))
		fmt.Println()
	}

	fmt.Println(dimStyle.Render("Generated at " + time.Now().Format("2006-01-02 15:04:05")))
	fmt.Println(dimStyle.Render("For informational purposes only, not financial advice."))
}

func decisionCard(ticker string, decision models.TradingDecision, result trading.Result) string {
	var b strings.Builder

	action := actionStyle(decision.Action).Render(strings.ToUpper(string(decision.Action)))
	fmt.Fprintf(&b, "%s  %s\n", lipgloss.NewStyle().Bold(true).Render(ticker), action)
	fmt.Fprintf(&b, "Quantity: %d    Confidence: %.1f%%\n", decision.Quantity, decision.Confidence)

	if summary, ok := result.Summaries[ticker]; ok {
		fmt.Fprintf(&b, "Price: %.2f    Max shares: %d    Position limit: %.2f\n",
			summary.CurrentPrice, summary.MaxShares, summary.PositionLimit)
		if len(summary.Signals) > 0 {
			b.WriteString("Signals: ")
			parts := make([]string, 0, len(summary.Signals))
			for _, agent := range sortedAgents(summary.Signals) {
				sig := summary.Signals[agent]
				parts = append(parts, fmt.Sprintf("%s=%s(%.0f)", shortName(agent), sig.Signal, sig.Confidence))
			}
			b.WriteString(strings.Join(parts, "  "))
			b.WriteString("\n")
		}
	}

	if decision.Reasoning != "" {
		b.WriteString(dimStyle.Render(wrap(decision.Reasoning, 70)))
	}
	return b.String()
}

func actionStyle(action models.Action) lipgloss.Style {
	switch action {
	case models.ActionBuy, models.ActionCover:
		return buyStyle
	case models.ActionSell, models.ActionShort:
		return sellStyle
	default:
		return holdStyle
	}
}

func sortedTickers(decisions map[string]models.TradingDecision) []string {
	out := make([]string, 0, len(decisions))
	for ticker := range decisions {
		out = append(out, ticker)
	}
	sort.Strings(out)
	return out
}

func sortedAgents(signals map[string]models.AgentSignal) []string {
	out := make([]string, 0, len(signals))
	for agent := range signals {
		out = append(out, agent)
	}
	sort.Strings(out)
	return out
}

func shortName(agent string) string {
	return strings.TrimSuffix(agent, "_agent")
}

func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			b.WriteString(line)
			b.WriteString("\n")
			line = word
		} else {
			line += " " + word
		}
	}
	b.WriteString(line)
	return b.String()
}

// ShowError prints a formatted error.
func ShowError(err error, context string) {
	fmt.Println(warnStyle.Render(fmt.Sprintf("Error in %s: %v", context, err)))
}
