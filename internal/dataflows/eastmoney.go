package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"FundCortex/internal/normalize"
)

// EastMoneyClient serves A-share data. Responses keep the provider's native
// Chinese column names; the normalizer's mapping tables translate them.
type EastMoneyClient struct {
	client *resty.Client
	retry  *RetryConfig
}

// NewEastMoneyClient creates a provider client against baseURL.
func NewEastMoneyClient(baseURL string) *EastMoneyClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; FundCortex/1.0)")

	return &EastMoneyClient{
		client: client,
		retry:  DefaultRetryConfig(),
	}
}

type klineEnvelope struct {
	Data struct {
		Klines []string `json:"klines"`
	} `json:"data"`
}

// DailyPrices fetches forward-adjusted daily klines. Each kline is a comma
// string: date,open,close,high,low,volume.
func (em *EastMoneyClient) DailyPrices(ctx context.Context, ticker, start, end string) (normalize.RawTable, error) {
	var envelope klineEnvelope
	err := WithRetry(em.retry, func() error {
		resp, err := em.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"secid":   secID(ticker),
				"klt":     "101",
				"fqt":     "1",
				"beg":     strings.ReplaceAll(start, "-", ""),
				"end":     strings.ReplaceAll(end, "-", ""),
				"fields1": "f1,f2,f3",
				"fields2": "f51,f52,f53,f54,f55,f56",
			}).
			Get("/api/qt/stock/kline/get")
		if err != nil {
			return fmt.Errorf("fetch klines: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("kline API error %d: %s", resp.StatusCode(), resp.String())
		}
		return json.Unmarshal(resp.Body(), &envelope)
	})
	if err != nil {
		return normalize.RawTable{}, err
	}

	table := normalize.RawTable{
		Columns: []string{"日期", "开盘", "收盘", "最高", "最低", "成交量"},
	}
	for _, line := range envelope.Data.Klines {
		parts := strings.Split(line, ",")
		if len(parts) < 6 {
			continue
		}
		table.Rows = append(table.Rows, normalize.Row{
			"日期":  parts[0],
			"开盘":  parts[1],
			"收盘":  parts[2],
			"最高":  parts[3],
			"最低":  parts[4],
			"成交量": parts[5],
		})
	}
	return table, nil
}

func (em *EastMoneyClient) FinancialIndicators(ctx context.Context, ticker, startYear string) (normalize.RawTable, error) {
	return em.fetchTable(ctx, "/api/finance/indicators", map[string]string{
		"symbol":     ticker,
		"start_year": startYear,
	})
}

func (em *EastMoneyClient) ValuationSnapshots(ctx context.Context, ticker string) (normalize.RawTable, error) {
	return em.fetchTable(ctx, "/api/finance/valuation", map[string]string{"symbol": ticker})
}

func (em *EastMoneyClient) IncomeStatement(ctx context.Context, ticker string) (normalize.RawTable, error) {
	return em.fetchTable(ctx, "/api/finance/income-statement", map[string]string{"symbol": ticker})
}

func (em *EastMoneyClient) CompanyNews(ctx context.Context, ticker string) (normalize.RawTable, error) {
	return em.fetchTable(ctx, "/api/news/company", map[string]string{"symbol": ticker})
}

func (em *EastMoneyClient) InsiderHoldingChanges(ctx context.Context, ticker string) (normalize.RawTable, error) {
	return em.fetchTable(ctx, "/api/finance/holder-changes", map[string]string{"symbol": ticker})
}

type tableEnvelope struct {
	Data []normalize.Row `json:"data"`
}

// fetchTable retrieves a generic row-oriented endpoint. Rows keep whatever
// native keys the provider returns.
func (em *EastMoneyClient) fetchTable(ctx context.Context, path string, params map[string]string) (normalize.RawTable, error) {
	var envelope tableEnvelope
	err := WithRetry(em.retry, func() error {
		resp, err := em.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(path)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", path, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("API error %d on %s: %s", resp.StatusCode(), path, resp.String())
		}
		return json.Unmarshal(resp.Body(), &envelope)
	})
	if err != nil {
		return normalize.RawTable{}, err
	}

	table := normalize.RawTable{Rows: envelope.Data}
	seen := make(map[string]bool)
	for _, row := range envelope.Data {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				table.Columns = append(table.Columns, col)
			}
		}
	}
	return table, nil
}

// secID prefixes the exchange market code the kline endpoint expects:
// Shanghai listings (6xx) are market 1, Shenzhen the rest.
func secID(ticker string) string {
	if strings.HasPrefix(ticker, "6") {
		return "1." + ticker
	}
	return "0." + ticker
}

// IsAShareTicker reports whether ticker looks like a mainland listing:
// six numeric digits.
func IsAShareTicker(ticker string) bool {
	if len(ticker) != 6 {
		return false
	}
	for _, r := range ticker {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
