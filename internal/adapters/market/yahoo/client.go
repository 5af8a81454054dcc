package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bnema/pulse/internal/adapters/httpapi"
	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"github.com/sourcegraph/conc/pool"
)

const (
	DefaultBaseURL     = "https://query1.finance.yahoo.com"
	defaultConcurrency = 4
)

var ErrNoData = errors.New("no market data")

// Client reads the public chart endpoint. Quotes are derived from the chart
// metadata so a single request serves both quote and history. Fundamentals
// come from the quote summary endpoint.
type Client struct {
	BaseURL     string
	HTTP        httpapi.Client
	Concurrency int
}

var _ ports.MarketDataProvider = (*Client)(nil)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartMeta struct {
	Currency             string  `json:"currency"`
	Symbol               string  `json:"symbol"`
	ExchangeName         string  `json:"exchangeName"`
	FullExchangeName     string  `json:"fullExchangeName"`
	LongName             string  `json:"longName"`
	ShortName            string  `json:"shortName"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	RegularMarketTime    int64   `json:"regularMarketTime"`
	RegularMarketVolume  int64   `json:"regularMarketVolume"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
	PreviousClose        float64 `json:"previousClose"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
}

func (c *Client) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	result, err := c.chart(ctx, symbol, "5d", "1d")
	if err != nil {
		return domain.Quote{}, err
	}

	return quoteFrom(result), nil
}

// Quotes fetches every symbol with bounded concurrency.
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]domain.Quote, map[string]error) {
	return fanOut(c.concurrency(), symbols, func(symbol string) (domain.Quote, error) {
		return c.Quote(ctx, symbol)
	})
}

func fanOut[T any](workers int, symbols []string, fetch func(string) (T, error)) (map[string]T, map[string]error) {
	var mu sync.Mutex
	values := make(map[string]T, len(symbols))
	failures := make(map[string]error)

	p := pool.New().WithMaxGoroutines(workers)
	for _, symbol := range symbols {
		symbol := symbol
		p.Go(func() {
			value, err := fetch(symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[symbol] = err
				return
			}
			values[symbol] = value
		})
	}
	p.Wait()

	return values, failures
}

func (c *Client) History(ctx context.Context, symbol string, period string, interval string) ([]domain.Bar, error) {
	result, err := c.chart(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}

	bars := barsFrom(result)
	if len(bars) == 0 {
		return nil, fmt.Errorf("history %s: %w", symbol, ErrNoData)
	}

	return bars, nil
}

func (c *Client) chart(ctx context.Context, symbol string, period string, interval string) (chartResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return chartResult{}, errors.New("symbol is required")
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint, err := httpapi.BuildURL(base, "v8/finance/chart/"+url.PathEscape(symbol), url.Values{
		"range":    {period},
		"interval": {interval},
	})
	if err != nil {
		return chartResult{}, err
	}

	var payload chartResponse
	if err := c.HTTP.GetJSON(ctx, endpoint, &payload); err != nil {
		return chartResult{}, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}
	if payload.Chart.Error != nil {
		return chartResult{}, fmt.Errorf("chart %s: %s: %w", symbol, payload.Chart.Error.Description, ErrNoData)
	}
	if len(payload.Chart.Result) == 0 {
		return chartResult{}, fmt.Errorf("chart %s: %w", symbol, ErrNoData)
	}

	return payload.Chart.Result[0], nil
}

func (c *Client) concurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return defaultConcurrency
}

func quoteFrom(result chartResult) domain.Quote {
	meta := result.Meta
	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	if name == "" {
		name = meta.Symbol
	}
	exchange := meta.FullExchangeName
	if exchange == "" {
		exchange = meta.ExchangeName
	}

	quote := domain.Quote{
		Symbol:           meta.Symbol,
		Name:             name,
		Currency:         meta.Currency,
		Exchange:         exchange,
		Price:            meta.RegularMarketPrice,
		PreviousClose:    meta.PreviousClose,
		Volume:           meta.RegularMarketVolume,
		DayHigh:          meta.RegularMarketDayHigh,
		DayLow:           meta.RegularMarketDayLow,
		FiftyTwoWeekHigh: meta.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  meta.FiftyTwoWeekLow,
	}
	if meta.RegularMarketTime > 0 {
		quote.Time = time.Unix(meta.RegularMarketTime, 0).UTC()
	}

	bars := barsFrom(result)
	if quote.Price == 0 && len(bars) > 0 {
		quote.Price = bars[len(bars)-1].Close
	}
	if quote.PreviousClose == 0 {
		if len(bars) > 1 {
			quote.PreviousClose = bars[len(bars)-2].Close
		} else {
			quote.PreviousClose = meta.ChartPreviousClose
		}
	}

	return quote
}

// barsFrom skips samples whose close is missing.
func barsFrom(result chartResult) []domain.Bar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	series := result.Indicators.Quote[0]

	bars := make([]domain.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePrice, ok := at(series.Close, i)
		if !ok {
			continue
		}
		bar := domain.Bar{Time: time.Unix(ts, 0).UTC(), Close: closePrice}
		bar.Open, _ = at(series.Open, i)
		bar.High, _ = at(series.High, i)
		bar.Low, _ = at(series.Low, i)
		if i < len(series.Volume) && series.Volume[i] != nil {
			bar.Volume = *series.Volume[i]
		}
		bars = append(bars, bar)
	}

	return bars
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}
