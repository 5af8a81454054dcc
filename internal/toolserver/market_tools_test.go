package toolserver

import (
	"testing"
	"time"

	"github.com/bnema/pulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarket() fakeMarket {
	history := make([]domain.Bar, 60)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range history {
		price := 100 + float64(i)
		history[i] = domain.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000,
		}
	}

	return fakeMarket{
		quotes: map[string]domain.Quote{
			"AAPL":    {Symbol: "AAPL", Name: "Apple Inc.", Currency: "USD", Exchange: "NMS", Price: 210, PreviousClose: 200, Volume: 1234567, DayHigh: 212, DayLow: 201},
			"MSFT":    {Symbol: "MSFT", Name: "Microsoft", Price: 400, PreviousClose: 404},
			"KO":      {Symbol: "KO", Name: "Coca-Cola", Price: 60, PreviousClose: 59},
			"^GSPC":   {Symbol: "^GSPC", Price: 5000, PreviousClose: 4950, Volume: 10},
			"BTC-USD": {Symbol: "BTC-USD", Price: 60000, PreviousClose: 61200},
		},
		fundamentals: map[string]domain.Fundamentals{
			"AAPL": {Sector: "Technology", Industry: "Consumer Electronics", MarketCap: 3e12, PERatio: 31.5, EPS: 6.43, DividendYield: 0.0044, Beta: 1.24, AvgVolume: 52000000},
			"MSFT": {Sector: "Technology", Industry: "Software", MarketCap: 3.1e12, PERatio: 36},
			"KO":   {Sector: "Consumer Defensive", Industry: "Beverages", MarketCap: 2.6e11, PERatio: 24},
		},
		history: history,
	}
}

func TestGetStockInfo(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Market: testMarket()})

	payload := callJSON(t, c, "get_stock_info", map[string]any{"symbol": "aapl"})
	assert.Equal(t, "AAPL", payload["symbol"])
	assert.Equal(t, 210.0, payload["price"])
	assert.Equal(t, 10.0, payload["change"])
	assert.Equal(t, 5.0, payload["change_percent"])
	assert.Equal(t, "Technology", payload["sector"])
	assert.Equal(t, "Consumer Electronics", payload["industry"])
	assert.Equal(t, 3e12, payload["market_cap"])
	assert.Equal(t, 31.5, payload["pe_ratio"])
	assert.Equal(t, 6.43, payload["eps"])
	assert.Equal(t, 0.0044, payload["dividend_yield"])
	assert.Equal(t, 1.24, payload["beta"])
	assert.Equal(t, float64(52000000), payload["avg_volume"])

	payload = callJSON(t, c, "get_stock_info", map[string]any{"symbol": "^GSPC"})
	assert.Equal(t, true, payload["success"], "missing fundamentals do not fail the quote")
	assert.Equal(t, "N/A", payload["sector"])
	assert.Equal(t, 0.0, payload["pe_ratio"])

	payload = callJSON(t, c, "get_stock_info", map[string]any{"symbol": "NOPE"})
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "NOPE", payload["symbol"])

	_, isError := callTool(t, c, "get_stock_info", nil)
	assert.True(t, isError)
}

func TestGetHistoricalStockData(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Market: testMarket()})

	payload := callJSON(t, c, "get_historical_stock_data", map[string]any{"symbol": "AAPL", "period": "3mo"})
	assert.Equal(t, float64(60), payload["data_points"])
	assert.Len(t, payload["data"], historyPoints)

	summary := payload["summary"].(map[string]any)
	assert.Equal(t, "2025-03-01", summary["start_date"])
	assert.Equal(t, 160.0, summary["highest_price"])
	assert.Equal(t, 99.0, summary["lowest_price"])
	assert.Equal(t, float64(60000), summary["total_volume"])

	_, isError := callTool(t, c, "get_historical_stock_data", map[string]any{"symbol": "AAPL", "period": "7w"})
	assert.True(t, isError)
}

func TestGetTechnicalIndicators(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Market: testMarket()})

	payload := callJSON(t, c, "get_technical_indicators", map[string]any{"symbol": "AAPL"})
	assert.Equal(t, 159.0, payload["current_price"])
	assert.Equal(t, 100.0, payload["rsi"])
	assert.Equal(t, "Overbought", payload["rsi_signal"])

	averages := payload["moving_averages"].(map[string]any)
	assert.Equal(t, 149.5, averages["sma_20"])
	assert.Equal(t, 134.5, averages["sma_50"])

	trend := payload["trend_analysis"].(map[string]any)
	assert.Equal(t, "Above", trend["price_vs_sma20"])
	assert.Equal(t, "Golden Cross", trend["sma20_vs_sma50"])
}

func TestGetTechnicalIndicatorsNeedsHistory(t *testing.T) {
	t.Parallel()

	market := testMarket()
	market.history = market.history[:10]
	_, c := newTestServer(t, Deps{Config: testConfig(), Market: market})

	payload := callJSON(t, c, "get_technical_indicators", map[string]any{"symbol": "AAPL"})
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["error"], "no data available for technical analysis")
}

func TestScreenStocks(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Market: testMarket()})

	symbols := func(payload map[string]any) []string {
		var out []string
		for _, result := range payload["results"].([]any) {
			out = append(out, result.(map[string]any)["symbol"].(string))
		}
		return out
	}

	payload := callJSON(t, c, "screen_stocks", map[string]any{"min_price": 50, "max_price": 300})
	assert.Equal(t, float64(len(screenUniverse)), payload["total_screened"])
	assert.Equal(t, float64(3), payload["quotes_fetched"])
	assert.Equal(t, []string{"AAPL", "KO"}, symbols(payload), "sorted by market cap")
	first := payload["results"].([]any)[0].(map[string]any)
	assert.Equal(t, 31.5, first["pe_ratio"])
	assert.Equal(t, 3e12, first["market_cap"])
	assert.NotContains(t, payload, "fundamentals_missing")

	testCases := []struct {
		name string
		args map[string]any
		want []string
	}{
		{name: "default P/E cap", args: map[string]any{}, want: []string{"MSFT", "AAPL", "KO"}},
		{name: "P/E ceiling", args: map[string]any{"max_pe_ratio": 30}, want: []string{"KO"}},
		{name: "market cap floor", args: map[string]any{"min_market_cap": 1e12}, want: []string{"MSFT", "AAPL"}},
		{name: "market cap ceiling", args: map[string]any{"max_market_cap": 1e12}, want: []string{"KO"}},
		{name: "limit", args: map[string]any{"limit": 1}, want: []string{"MSFT"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, symbols(callJSON(t, c, "screen_stocks", tc.args)))
		})
	}

	_, isError := callTool(t, c, "screen_stocks", map[string]any{"min_price": 10, "max_price": 5})
	assert.True(t, isError)
	_, isError = callTool(t, c, "screen_stocks", map[string]any{"min_market_cap": 10, "max_market_cap": 5})
	assert.True(t, isError)
}

func TestScreenStocksWithoutFundamentals(t *testing.T) {
	t.Parallel()

	market := testMarket()
	market.fundamentals = nil
	_, c := newTestServer(t, Deps{Config: testConfig(), Market: market})

	payload := callJSON(t, c, "screen_stocks", map[string]any{})
	assert.Equal(t, []any{"AAPL", "KO", "MSFT"}, payload["fundamentals_missing"])
	assert.Len(t, payload["results"], 3, "unreported figures count as zero")

	payload = callJSON(t, c, "screen_stocks", map[string]any{"min_market_cap": 1})
	assert.Empty(t, payload["results"])
}

func TestGetMarketIndices(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Market: testMarket()})

	payload := callJSON(t, c, "get_market_indices", nil)
	indices := payload["indices"].(map[string]any)
	require.Len(t, indices, len(majorIndices))

	sp := indices["S&P 500"].(map[string]any)
	assert.Equal(t, 5000.0, sp["value"])
	assert.Equal(t, 1.01, sp["change_percent"])

	nasdaq := indices["NASDAQ"].(map[string]any)
	assert.Equal(t, "Data not available", nasdaq["error"])
}

func TestAnalyzePortfolio(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Market: testMarket()})

	payload := callJSON(t, c, "analyze_portfolio", map[string]any{"holdings": []any{
		map[string]any{"symbol": "aapl", "shares": 10, "cost_basis": 150},
		map[string]any{"symbol": "MSFT", "shares": 5, "cost_basis": 500},
		map[string]any{"symbol": "GONE", "shares": 1},
	}})

	summary := payload["portfolio_summary"].(map[string]any)
	assert.Equal(t, 4100.0, summary["total_value"])
	assert.Equal(t, 4000.0, summary["total_cost"])
	assert.Equal(t, 100.0, summary["total_gain_loss"])
	assert.Equal(t, float64(2), summary["number_of_holdings"])
	assert.Equal(t, "AAPL", payload["top_performer"].(map[string]any)["symbol"])
	assert.Equal(t, "MSFT", payload["worst_performer"].(map[string]any)["symbol"])
	assert.Equal(t, []any{"GONE"}, payload["failed_symbols"])

	_, isError := callTool(t, c, "analyze_portfolio", map[string]any{"holdings": []any{map[string]any{"symbol": "AAPL", "shares": 0}}})
	assert.True(t, isError)
}

func TestGetCryptoData(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Market: testMarket()})

	payload := callJSON(t, c, "get_crypto_data", nil)
	coins := payload["cryptocurrencies"].([]any)
	require.Len(t, coins, 1)
	btc := coins[0].(map[string]any)
	assert.Equal(t, "BTC", btc["name"])
	assert.Equal(t, -1.96, btc["change_percent"])
	assert.Len(t, payload["failed_symbols"], len(defaultCryptoSymbols)-1)
	assert.Equal(t, "BTC-USD", defaultCryptoSymbols[0], "defaults stay untouched")
}

func TestGetStockReport(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Market: testMarket()})

	text, isError := callTool(t, c, "get_stock_report", map[string]any{"symbol": "AAPL"})
	require.False(t, isError)
	assert.Contains(t, text, "📈 Apple Inc. (AAPL)")
	assert.Contains(t, text, "💰 Current Price: $210.00")
	assert.Contains(t, text, "📈 Change: $10.00 (5.00%)")
	assert.Contains(t, text, "📊 Volume: 1,234,567")
	assert.Contains(t, text, "   Sector: Technology")
	assert.Contains(t, text, "   Market Cap: $3,000,000,000,000")
	assert.Contains(t, text, "   P/E Ratio: 31.50")

	text, _ = callTool(t, c, "get_stock_report", map[string]any{"symbol": "NOPE"})
	assert.Contains(t, text, "❌ Error getting data for NOPE")
}
