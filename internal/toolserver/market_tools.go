package toolserver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bnema/pulse/internal/adapters/market/indicators"
	"github.com/bnema/pulse/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

const (
	historyPoints      = 50
	defaultScreenLimit = 10
	defaultMaxPE       = 50
	notAvailable       = "N/A"
)

type marketIndex struct {
	Name   string
	Symbol string
}

var majorIndices = []marketIndex{
	{Name: "S&P 500", Symbol: "^GSPC"},
	{Name: "NASDAQ", Symbol: "^IXIC"},
	{Name: "Dow Jones", Symbol: "^DJI"},
	{Name: "Russell 2000", Symbol: "^RUT"},
	{Name: "VIX", Symbol: "^VIX"},
}

var defaultCryptoSymbols = []string{"BTC-USD", "ETH-USD", "ADA-USD", "DOT-USD", "LINK-USD"}

var screenUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "NFLX",
	"AMD", "INTC", "CRM", "ORCL", "IBM", "CSCO", "ADBE", "PYPL",
	"DIS", "KO", "PEP", "WMT", "HD", "MCD", "NKE", "SBUX",
}

var validPeriods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

func (s *Server) registerMarketTools() {
	symbolArg := mcp.WithString("symbol", mcp.Required(), mcp.Description("Ticker symbol, for example AAPL or MSFT"))

	s.addTool(mcp.NewTool("get_stock_info",
		mcp.WithDescription("Get current stock price, daily change, trading range and fundamentals (sector, market cap, P/E, EPS, dividend yield, beta)"),
		symbolArg,
	), s.getStockInfo)

	s.addTool(mcp.NewTool("get_historical_stock_data",
		mcp.WithDescription("Get historical OHLCV price data for a stock"),
		symbolArg,
		mcp.WithString("period", mcp.Description("History range"), mcp.Enum(validPeriods...), mcp.DefaultString("1y")),
		mcp.WithString("interval", mcp.Description("Sample interval, for example 1d, 1wk or 1mo"), mcp.DefaultString("1d")),
	), s.getHistoricalStockData)

	s.addTool(mcp.NewTool("get_technical_indicators",
		mcp.WithDescription("Calculate technical indicators (SMA, EMA, RSI, MACD, Bollinger Bands) and trend signals for a stock"),
		symbolArg,
		mcp.WithString("period", mcp.Description("History range used for the indicators"), mcp.Enum(validPeriods...), mcp.DefaultString("6mo")),
	), s.getTechnicalIndicators)

	s.addTool(mcp.NewTool("screen_stocks",
		mcp.WithDescription("Screen popular large-cap stocks by P/E ratio, market cap and price"),
		mcp.WithNumber("max_pe_ratio", mcp.Description("Maximum trailing P/E ratio"), mcp.DefaultNumber(defaultMaxPE)),
		mcp.WithNumber("min_market_cap", mcp.Description("Minimum market cap in dollars")),
		mcp.WithNumber("max_market_cap", mcp.Description("Maximum market cap in dollars")),
		mcp.WithNumber("min_price", mcp.Description("Minimum share price")),
		mcp.WithNumber("max_price", mcp.Description("Maximum share price")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of matches"), mcp.DefaultNumber(defaultScreenLimit)),
	), s.screenStocks)

	s.addTool(mcp.NewTool("get_market_indices",
		mcp.WithDescription("Get the major market indices (S&P 500, NASDAQ, Dow Jones, Russell 2000, VIX)"),
	), s.getMarketIndices)

	s.addTool(mcp.NewTool("analyze_portfolio",
		mcp.WithDescription("Analyze a stock portfolio: value, gain or loss, weights and best and worst performers"),
		mcp.WithArray("holdings",
			mcp.Required(),
			mcp.Description("Holdings as objects with symbol, shares and optional cost_basis"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"symbol":     map[string]any{"type": "string"},
					"shares":     map[string]any{"type": "number"},
					"cost_basis": map[string]any{"type": "number"},
				},
				"required": []string{"symbol", "shares"},
			}),
		),
	), s.analyzePortfolio)

	s.addTool(mcp.NewTool("get_crypto_data",
		mcp.WithDescription("Get cryptocurrency prices and daily changes"),
		mcp.WithArray("symbols",
			mcp.Description("Crypto symbols such as BTC-USD; defaults to major coins"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	), s.getCryptoData)

	s.addTool(mcp.NewTool("get_stock_report",
		mcp.WithDescription("Get a formatted stock report"),
		symbolArg,
	), s.getStockReport)
}

func (s *Server) getStockInfo(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	symbol, err := symbolFrom(args)
	if err != nil {
		return argumentError(err)
	}
	if s.deps.Market == nil {
		return failure(fmt.Errorf("market data %w", errProviderMissing), map[string]any{"symbol": symbol})
	}

	quote, err := s.deps.Market.Quote(ctx, symbol)
	if err != nil {
		return failure(err, map[string]any{"symbol": symbol})
	}

	payload := quotePayload(quote)
	fundamentals, failures := s.deps.Market.Fundamentals(ctx, []string{symbol})
	if err := failures[symbol]; err != nil {
		s.deps.Logger.Debug("fundamentals unavailable", zap.String("symbol", symbol), zap.Error(err))
	}
	addFundamentals(payload, fundamentals[symbol])

	return jsonResult(payload)
}

// addFundamentals fills the fundamental fields, reporting missing text as N/A
// and missing figures as zero.
func addFundamentals(payload map[string]any, f domain.Fundamentals) {
	payload["sector"] = orNotAvailable(f.Sector)
	payload["industry"] = orNotAvailable(f.Industry)
	payload["market_cap"] = f.MarketCap
	payload["pe_ratio"] = round2(f.PERatio)
	payload["eps"] = round2(f.EPS)
	payload["dividend_yield"] = f.DividendYield
	payload["beta"] = round2(f.Beta)
	payload["avg_volume"] = f.AvgVolume
}

func orNotAvailable(value string) string {
	if value == "" {
		return notAvailable
	}
	return value
}

func quotePayload(q domain.Quote) map[string]any {
	payload := map[string]any{
		"success":             true,
		"symbol":              q.Symbol,
		"company_name":        q.Name,
		"price":               round2(q.Price),
		"current_price":       round2(q.Price),
		"previous_close":      round2(q.PreviousClose),
		"change":              round2(q.Change()),
		"change_percent":      round2(q.ChangePercent()),
		"volume":              q.Volume,
		"currency":            q.Currency,
		"exchange":            q.Exchange,
		"day_high":            round2(q.DayHigh),
		"day_low":             round2(q.DayLow),
		"fifty_two_week_high": round2(q.FiftyTwoWeekHigh),
		"fifty_two_week_low":  round2(q.FiftyTwoWeekLow),
	}
	if !q.Time.IsZero() {
		payload["timestamp"] = q.Time.Format(time.RFC3339)
	}
	return payload
}

func (s *Server) getHistoricalStockData(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	symbol, err := symbolFrom(args)
	if err != nil {
		return argumentError(err)
	}
	period, err := periodFrom(args, "1y")
	if err != nil {
		return argumentError(err)
	}
	interval := stringArg(args, "interval", "1d")
	if s.deps.Market == nil {
		return failure(fmt.Errorf("market data %w", errProviderMissing), map[string]any{"symbol": symbol})
	}

	bars, err := s.deps.Market.History(ctx, symbol, period, interval)
	if err != nil {
		return failure(err, map[string]any{"symbol": symbol})
	}
	if len(bars) == 0 {
		return failure(errors.New("no historical data found"), map[string]any{"symbol": symbol})
	}

	data := make([]map[string]any, 0, len(bars))
	highest, lowest := math.Inf(-1), math.Inf(1)
	var volume int64
	for _, bar := range bars {
		data = append(data, map[string]any{
			"date":   bar.Time.Format(dateLayout),
			"open":   round2(bar.Open),
			"high":   round2(bar.High),
			"low":    round2(bar.Low),
			"close":  round2(bar.Close),
			"volume": bar.Volume,
		})
		highest = math.Max(highest, bar.High)
		lowest = math.Min(lowest, bar.Low)
		volume += bar.Volume
	}

	return jsonResult(map[string]any{
		"success":     true,
		"symbol":      symbol,
		"period":      period,
		"interval":    interval,
		"data_points": len(data),
		"data":        data[max(0, len(data)-historyPoints):],
		"summary": map[string]any{
			"start_date":    data[0]["date"],
			"end_date":      data[len(data)-1]["date"],
			"highest_price": round2(highest),
			"lowest_price":  round2(lowest),
			"total_volume":  volume,
		},
	})
}

func (s *Server) getTechnicalIndicators(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	symbol, err := symbolFrom(args)
	if err != nil {
		return argumentError(err)
	}
	period, err := periodFrom(args, "6mo")
	if err != nil {
		return argumentError(err)
	}
	if s.deps.Market == nil {
		return failure(fmt.Errorf("market data %w", errProviderMissing), map[string]any{"symbol": symbol})
	}

	bars, err := s.deps.Market.History(ctx, symbol, period, "1d")
	if err != nil {
		return failure(err, map[string]any{"symbol": symbol})
	}
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	snapshot, err := indicators.Compute(closes)
	if err != nil {
		return failure(fmt.Errorf("no data available for technical analysis: %w", err), map[string]any{"symbol": symbol})
	}

	movingAverages := map[string]any{
		"sma_20": round2(snapshot.SMA20),
		"ema_12": round2(snapshot.EMA12),
		"ema_26": round2(snapshot.EMA26),
	}
	trend := map[string]any{
		"price_vs_sma20": indicators.Relative(snapshot.Price, snapshot.SMA20),
	}
	if snapshot.HasSMA50 {
		movingAverages["sma_50"] = round2(snapshot.SMA50)
		trend["price_vs_sma50"] = indicators.Relative(snapshot.Price, snapshot.SMA50)
		trend["sma20_vs_sma50"] = indicators.CrossSignal(snapshot.SMA20, snapshot.SMA50)
	}

	return jsonResult(map[string]any{
		"success":         true,
		"symbol":          symbol,
		"current_price":   round2(snapshot.Price),
		"data_points":     snapshot.SampleSize,
		"moving_averages": movingAverages,
		"rsi":             round2(snapshot.RSI14),
		"rsi_signal":      indicators.RSISignal(snapshot.RSI14),
		"macd": map[string]any{
			"macd_line":   round2(snapshot.MACD.Line),
			"signal_line": round2(snapshot.MACD.Signal),
			"histogram":   round2(snapshot.MACD.Histogram),
		},
		"bollinger_bands": map[string]any{
			"upper":    round2(snapshot.Bollinger.Upper),
			"middle":   round2(snapshot.Bollinger.Middle),
			"lower":    round2(snapshot.Bollinger.Lower),
			"position": snapshot.Bollinger.Position(snapshot.Price),
		},
		"trend_analysis": trend,
	})
}

func (s *Server) screenStocks(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	maxPE, err := floatArg(args, "max_pe_ratio", defaultMaxPE)
	if err != nil {
		return argumentError(err)
	}
	minCap, err := floatArg(args, "min_market_cap", 0)
	if err != nil {
		return argumentError(err)
	}
	maxCap, err := floatArg(args, "max_market_cap", math.Inf(1))
	if err != nil {
		return argumentError(err)
	}
	if minCap > maxCap {
		return argumentError(errors.New("min_market_cap must not exceed max_market_cap"))
	}
	minPrice, err := floatArg(args, "min_price", 0)
	if err != nil {
		return argumentError(err)
	}
	maxPrice, err := floatArg(args, "max_price", math.Inf(1))
	if err != nil {
		return argumentError(err)
	}
	if minPrice > maxPrice {
		return argumentError(errors.New("min_price must not exceed max_price"))
	}
	limit, err := intArg(args, "limit", defaultScreenLimit, 1)
	if err != nil {
		return argumentError(err)
	}
	if s.deps.Market == nil {
		return failure(fmt.Errorf("market data %w", errProviderMissing), nil)
	}

	quotes, _ := s.deps.Market.Quotes(ctx, screenUniverse)
	fundamentals, missing := s.deps.Market.Fundamentals(ctx, sortedKeys(quotes))

	type candidate struct {
		quote        domain.Quote
		fundamentals domain.Fundamentals
	}
	matches := make([]candidate, 0, len(quotes))
	for symbol, quote := range quotes {
		f := fundamentals[symbol]
		// An unreported P/E or market cap counts as zero.
		if f.PERatio > maxPE || f.MarketCap < minCap || f.MarketCap > maxCap {
			continue
		}
		if quote.Price < minPrice || quote.Price > maxPrice {
			continue
		}
		matches = append(matches, candidate{quote: quote, fundamentals: f})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].fundamentals.MarketCap != matches[j].fundamentals.MarketCap {
			return matches[i].fundamentals.MarketCap > matches[j].fundamentals.MarketCap
		}
		return matches[i].quote.Symbol < matches[j].quote.Symbol
	})
	found := len(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]map[string]any, 0, len(matches))
	for _, match := range matches {
		results = append(results, map[string]any{
			"symbol":         match.quote.Symbol,
			"company_name":   match.quote.Name,
			"current_price":  round2(match.quote.Price),
			"change_percent": round2(match.quote.ChangePercent()),
			"pe_ratio":       round2(match.fundamentals.PERatio),
			"market_cap":     match.fundamentals.MarketCap,
			"volume":         match.quote.Volume,
		})
	}

	criteria := map[string]any{"max_pe_ratio": maxPE, "min_market_cap": minCap, "min_price": minPrice, "limit": limit}
	if !math.IsInf(maxCap, 1) {
		criteria["max_market_cap"] = maxCap
	}
	if !math.IsInf(maxPrice, 1) {
		criteria["max_price"] = maxPrice
	}

	payload := map[string]any{
		"success":        true,
		"criteria":       criteria,
		"total_screened": len(screenUniverse),
		"quotes_fetched": len(quotes),
		"matches_found":  found,
		"results":        results,
	}
	if len(missing) > 0 {
		payload["fundamentals_missing"] = sortedKeys(missing)
	}

	return jsonResult(payload)
}

func (s *Server) getMarketIndices(ctx context.Context, _ map[string]any) (*mcp.CallToolResult, error) {
	if s.deps.Market == nil {
		return failure(fmt.Errorf("market data %w", errProviderMissing), nil)
	}

	return jsonResult(map[string]any{
		"success":   true,
		"indices":   s.indices(ctx),
		"timestamp": s.deps.Clock.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) indices(ctx context.Context) map[string]any {
	symbols := make([]string, len(majorIndices))
	for i, index := range majorIndices {
		symbols[i] = index.Symbol
	}
	quotes, _ := s.deps.Market.Quotes(ctx, symbols)

	out := make(map[string]any, len(majorIndices))
	for _, index := range majorIndices {
		quote, ok := quotes[index.Symbol]
		if !ok {
			out[index.Name] = map[string]any{"symbol": index.Symbol, "error": "Data not available"}
			continue
		}
		out[index.Name] = map[string]any{
			"symbol":         index.Symbol,
			"value":          round2(quote.Price),
			"current_value":  round2(quote.Price),
			"change":         round2(quote.Change()),
			"change_percent": round2(quote.ChangePercent()),
			"volume":         quote.Volume,
		}
	}
	return out
}

type holding struct {
	Symbol    string
	Shares    float64
	CostBasis float64
}

func (s *Server) analyzePortfolio(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	holdings, err := holdingsFrom(args)
	if err != nil {
		return argumentError(err)
	}
	if s.deps.Market == nil {
		return failure(fmt.Errorf("market data %w", errProviderMissing), nil)
	}

	symbols := make([]string, len(holdings))
	for i, h := range holdings {
		symbols[i] = h.Symbol
	}
	quotes, failures := s.deps.Market.Quotes(ctx, symbols)

	type position struct {
		holding
		quote     domain.Quote
		value     float64
		costValue float64
	}
	var (
		positions  []position
		totalValue float64
		totalCost  float64
	)
	for _, h := range holdings {
		quote, ok := quotes[h.Symbol]
		if !ok {
			continue
		}
		p := position{holding: h, quote: quote, value: h.Shares * quote.Price}
		p.costValue = p.value
		if h.CostBasis > 0 {
			p.costValue = h.Shares * h.CostBasis
		}
		positions = append(positions, p)
		totalValue += p.value
		totalCost += p.costValue
	}
	if len(positions) == 0 {
		return failure(errors.New("no quotes available for the requested holdings"), map[string]any{"failed_symbols": sortedKeys(failures)})
	}

	rows := make([]map[string]any, 0, len(positions))
	best, worst := -1, -1
	gains := make([]float64, len(positions))
	for i, p := range positions {
		gain := p.value - p.costValue
		if p.costValue > 0 {
			gains[i] = gain / p.costValue * 100
		}
		if best < 0 || gains[i] > gains[best] {
			best = i
		}
		if worst < 0 || gains[i] < gains[worst] {
			worst = i
		}
		weight := 0.0
		if totalValue > 0 {
			weight = p.value / totalValue * 100
		}
		rows = append(rows, map[string]any{
			"symbol":            p.Symbol,
			"company_name":      p.quote.Name,
			"shares":            p.Shares,
			"cost_basis":        p.CostBasis,
			"current_price":     round2(p.quote.Price),
			"current_value":     round2(p.value),
			"cost_value":        round2(p.costValue),
			"gain_loss":         round2(gain),
			"gain_loss_percent": round2(gains[i]),
			"weight":            round2(weight),
		})
	}

	totalGain := totalValue - totalCost
	totalGainPercent := 0.0
	if totalCost > 0 {
		totalGainPercent = totalGain / totalCost * 100
	}

	payload := map[string]any{
		"success": true,
		"portfolio_summary": map[string]any{
			"total_value":             round2(totalValue),
			"total_cost":              round2(totalCost),
			"total_gain_loss":         round2(totalGain),
			"total_gain_loss_percent": round2(totalGainPercent),
			"number_of_holdings":      len(positions),
		},
		"holdings":        rows,
		"top_performer":   rows[best],
		"worst_performer": rows[worst],
		"timestamp":       s.deps.Clock.Now().UTC().Format(time.RFC3339),
	}
	if len(failures) > 0 {
		payload["failed_symbols"] = sortedKeys(failures)
	}

	return jsonResult(payload)
}

func (s *Server) getCryptoData(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	symbols, err := stringsArg(args, "symbols")
	if err != nil {
		return argumentError(err)
	}
	if len(symbols) == 0 {
		symbols = append([]string(nil), defaultCryptoSymbols...)
	}
	for i, symbol := range symbols {
		symbols[i] = strings.ToUpper(symbol)
	}
	if s.deps.Market == nil {
		return failure(fmt.Errorf("market data %w", errProviderMissing), nil)
	}

	coins, failed := s.cryptoQuotes(ctx, symbols)
	payload := map[string]any{
		"success":          true,
		"cryptocurrencies": coins,
		"timestamp":        s.deps.Clock.Now().UTC().Format(time.RFC3339),
	}
	if len(failed) > 0 {
		payload["failed_symbols"] = failed
	}
	return jsonResult(payload)
}

func (s *Server) cryptoQuotes(ctx context.Context, symbols []string) ([]map[string]any, []string) {
	quotes, failures := s.deps.Market.Quotes(ctx, symbols)
	coins := make([]map[string]any, 0, len(quotes))
	for _, symbol := range symbols {
		quote, ok := quotes[symbol]
		if !ok {
			continue
		}
		coins = append(coins, map[string]any{
			"symbol":         symbol,
			"name":           strings.TrimSuffix(symbol, "-USD"),
			"current_price":  round2(quote.Price),
			"change":         round2(quote.Change()),
			"change_percent": round2(quote.ChangePercent()),
			"volume":         quote.Volume,
		})
	}
	return coins, sortedKeys(failures)
}

func (s *Server) getStockReport(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	symbol, err := symbolFrom(args)
	if err != nil {
		return argumentError(err)
	}
	if s.deps.Market == nil {
		return mcp.NewToolResultText(fmt.Sprintf("❌ Error getting data for %s: market data %s", symbol, errProviderMissing)), nil
	}

	quote, err := s.deps.Market.Quote(ctx, symbol)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("❌ Error getting data for %s: %s", symbol, err)), nil
	}

	fundamentals, failures := s.deps.Market.Fundamentals(ctx, []string{symbol})
	if err := failures[symbol]; err != nil {
		s.deps.Logger.Debug("fundamentals unavailable", zap.String("symbol", symbol), zap.Error(err))
	}

	return mcp.NewToolResultText(stockReport(quote, fundamentals[symbol])), nil
}

func symbolFrom(args map[string]any) (string, error) {
	symbol := strings.ToUpper(stringArg(args, "symbol", ""))
	if symbol == "" {
		return "", errors.New("symbol is required")
	}
	return symbol, nil
}

func periodFrom(args map[string]any, fallback string) (string, error) {
	period := strings.ToLower(stringArg(args, "period", fallback))
	for _, valid := range validPeriods {
		if period == valid {
			return period, nil
		}
	}
	return "", fmt.Errorf("period must be one of %s", strings.Join(validPeriods, ", "))
}

func holdingsFrom(args map[string]any) ([]holding, error) {
	raw, ok := args["holdings"].([]any)
	if !ok || len(raw) == 0 {
		return nil, errors.New("holdings must be a non-empty array")
	}

	holdings := make([]holding, 0, len(raw))
	for i, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("holdings[%d] must be an object", i)
		}
		symbol := strings.ToUpper(stringArg(entry, "symbol", ""))
		if symbol == "" {
			return nil, fmt.Errorf("holdings[%d]: symbol is required", i)
		}
		shares, err := floatArg(entry, "shares", 0)
		if err != nil {
			return nil, fmt.Errorf("holdings[%d]: %w", i, err)
		}
		if shares <= 0 {
			return nil, fmt.Errorf("holdings[%d]: shares must be positive", i)
		}
		costBasis, err := floatArg(entry, "cost_basis", 0)
		if err != nil {
			return nil, fmt.Errorf("holdings[%d]: %w", i, err)
		}
		holdings = append(holdings, holding{Symbol: symbol, Shares: shares, CostBasis: costBasis})
	}

	return holdings, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
