package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"FundCortex/internal/models"
)

// YahooClient serves price history for non-mainland tickers. It yields typed
// bars directly, so it bypasses the column-mapping path used for A-shares.
type YahooClient struct {
	retry *RetryConfig
}

func NewYahooClient() *YahooClient {
	return &YahooClient{retry: DefaultRetryConfig()}
}

// DailyPrices fetches daily bars in [start, end], both YYYY-MM-DD.
func (yc *YahooClient) DailyPrices(ctx context.Context, ticker, start, end string) ([]models.Price, error) {
	startT, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	endT, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	// chart.Get treats End as exclusive.
	endT = endT.AddDate(0, 0, 1)

	var prices []models.Price
	err = WithRetry(yc.retry, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := &chart.Params{
			Symbol:   ticker,
			Start:    datetime.New(&startT),
			End:      datetime.New(&endT),
			Interval: datetime.OneDay,
		}
		iter := chart.Get(params)

		prices = prices[:0]
		for iter.Next() {
			bar := iter.Bar()
			prices = append(prices, models.Price{
				Time:   time.Unix(int64(bar.Timestamp), 0).UTC().Format("2006-01-02"),
				Open:   bar.Open,
				Close:  bar.Close,
				High:   bar.High,
				Low:    bar.Low,
				Volume: int64(bar.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("fetch chart for %s: %w", ticker, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prices, nil
}

// Quote returns the latest regular-market price.
func (yc *YahooClient) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := WithRetry(yc.retry, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		q, err := quote.Get(ticker)
		if err != nil {
			return fmt.Errorf("fetch quote for %s: %w", ticker, err)
		}
		price = decimal.NewFromFloat(q.RegularMarketPrice)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return price, nil
}
