package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// PromptForTickers asks for one or more ticker symbols.
func PromptForTickers() ([]string, error) {
	var input string
	prompt := &survey.Input{
		Message: "Enter ticker symbols (comma or space separated):",
		Help:    "Mainland listings are six digits (600519); other symbols go through Yahoo (AAPL).",
	}

	err := survey.AskOne(prompt, &input, survey.WithValidator(func(val interface{}) error {
		tickers := splitTickers(val.(string))
		if len(tickers) == 0 {
			return fmt.Errorf("enter at least one ticker")
		}
		for _, t := range tickers {
			if len(t) > 10 || !tickerPattern.MatchString(t) {
				return fmt.Errorf("invalid ticker %q", t)
			}
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return splitTickers(input), nil
}

// PromptForEndDate asks for the analysis end date, defaulting to today.
func PromptForEndDate() (string, error) {
	var dateStr string
	prompt := &survey.Input{
		Message: "Analysis end date (YYYY-MM-DD):",
		Default: time.Now().Format("2006-01-02"),
	}

	err := survey.AskOne(prompt, &dateStr, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return nil
		}
		if _, err := time.Parse("2006-01-02", str); err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dateStr) == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	return strings.TrimSpace(dateStr), nil
}

// PromptForCash asks for the portfolio cash amount.
func PromptForCash() (float64, error) {
	var input string
	prompt := &survey.Input{
		Message: "Portfolio cash:",
		Default: "100000",
	}

	err := survey.AskOne(prompt, &input, survey.WithValidator(func(val interface{}) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(val.(string)), 64)
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if v < 0 {
			return fmt.Errorf("cash cannot be negative")
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(input), 64)
}
