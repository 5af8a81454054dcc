package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bnema/pulse/internal/adapters/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"%s","fullExchangeName":"NasdaqGS","longName":"Apple Inc.","regularMarketPrice":110,"regularMarketTime":1700000000,"regularMarketVolume":1000,"fiftyTwoWeekHigh":150,"fiftyTwoWeekLow":90},"timestamp":[1699800000,1699886400,1699972800],"indicators":{"quote":[{"open":[98,99,null],"high":[101,102,null],"low":[97,98,null],"close":[99,100,null],"volume":[10,20,null]}]}}],"error":null}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Client{BaseURL: server.URL, HTTP: httpapi.Client{HTTPClient: server.Client()}, Concurrency: 2}
}

func chartHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		if symbol == "NOPE" {
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
			return
		}
		assert.NotEmpty(t, r.URL.Query().Get("range"))
		assert.NotEmpty(t, r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(strings.Replace(chartBody, "%s", symbol, 1)))
	}
}

func TestQuoteDerivesChangeFromHistory(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, chartHandler(t))

	quote, err := client.Quote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "Apple Inc.", quote.Name)
	assert.Equal(t, "NasdaqGS", quote.Exchange)
	assert.InDelta(t, 110.0, quote.Price, 1e-9)
	assert.InDelta(t, 99.0, quote.PreviousClose, 1e-9)
	assert.InDelta(t, 11.0, quote.Change(), 1e-9)
	assert.InDelta(t, 11.0/99.0*100, quote.ChangePercent(), 1e-9)
}

func TestHistorySkipsMissingCloses(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, chartHandler(t))

	bars, err := client.History(context.Background(), "MSFT", "1mo", "1d")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.InDelta(t, 100.0, bars[1].Close, 1e-9)
	assert.Equal(t, int64(20), bars[1].Volume)
}

func TestChartErrorIsNoData(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, chartHandler(t))

	_, err := client.Quote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorContains(t, err, "delisted")
}

func TestQuotesFansOutAndCollectsFailures(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	handler := chartHandler(t)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	})

	quotes, failures := client.Quotes(context.Background(), []string{"AAPL", "MSFT", "NOPE"})
	assert.Len(t, quotes, 2)
	assert.Contains(t, quotes, "MSFT")
	require.Contains(t, failures, "NOPE")
	assert.ErrorIs(t, failures["NOPE"], ErrNoData)
	assert.Equal(t, int32(3), requests.Load())
}

func TestQuoteRequiresSymbol(t *testing.T) {
	t.Parallel()

	_, err := (&Client{}).Quote(context.Background(), " ")
	assert.ErrorContains(t, err, "symbol is required")
}

const summaryBody = `{"quoteSummary":{"result":[{"assetProfile":{"sector":"Technology","industry":"Consumer Electronics"},"summaryDetail":{"marketCap":{"raw":3000000000000,"fmt":"3T"},"trailingPE":{"raw":31.5,"fmt":"31.50"},"dividendYield":{"raw":0.0044,"fmt":"0.44%"},"beta":{"raw":1.24,"fmt":"1.24"},"averageVolume":{"raw":52000000,"fmt":"52M"}},"defaultKeyStatistics":{"trailingEps":{"raw":6.43,"fmt":"6.43"}}}],"error":null}}`

func TestFundamentalsReadsQuoteSummary(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/v10/finance/quoteSummary/")
		if symbol == "NOPE" {
			_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for symbol: NOPE"}}}`))
			return
		}
		assert.Equal(t, "assetProfile,summaryDetail,defaultKeyStatistics", r.URL.Query().Get("modules"))
		_, _ = w.Write([]byte(summaryBody))
	})

	fundamentals, failures := client.Fundamentals(context.Background(), []string{"aapl", "NOPE"})
	require.Contains(t, fundamentals, "aapl")
	got := fundamentals["aapl"]
	assert.Equal(t, "Technology", got.Sector)
	assert.Equal(t, "Consumer Electronics", got.Industry)
	assert.InDelta(t, 3e12, got.MarketCap, 1)
	assert.InDelta(t, 31.5, got.PERatio, 1e-9)
	assert.InDelta(t, 6.43, got.EPS, 1e-9)
	assert.InDelta(t, 0.0044, got.DividendYield, 1e-9)
	assert.InDelta(t, 1.24, got.Beta, 1e-9)
	assert.Equal(t, int64(52000000), got.AvgVolume)

	require.Contains(t, failures, "NOPE")
	assert.ErrorIs(t, failures["NOPE"], ErrNoData)
	assert.ErrorContains(t, failures["NOPE"], "Quote not found")
}
