package application

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/bnema/pulse/internal/domain"
)

const (
	defaultPeriodDays  = 30
	defaultSearchLimit = 5
)

var (
	cityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bin\s+([\p{L}\p{N}\s'.,-]+?)[\s.,?!]*$`),
		regexp.MustCompile(`\bfor\s+([\p{L}\p{N}\s'.,-]+?)[\s.,?!]*$`),
		regexp.MustCompile(`\bat\s+([\p{L}\p{N}\s'.,-]+?)[\s.,?!]*$`),
	}
	tickerPattern      = regexp.MustCompile(`\b[A-Z]{3,4}\b`)
	dayCountPattern    = regexp.MustCompile(`(?i)(?:last|past)?\s*(\d+)\s*days?\b`)
	periodWordPattern  = regexp.MustCompile(`(?i)\b(?:last|past|this)\s+(week|month|quarter|year)\b`)
	numberPattern      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	symbolCapabilities = map[string]struct{}{
		"get_stock_info":            {},
		"get_historical_stock_data": {},
		"get_technical_indicators":  {},
		"get_stock_report":          {},
	}
)

// cityStopWords end a captured city name ("paris for tomorrow" -> "paris").
// A comma ends it too ("paris, france" -> "paris").
var cityStopWords = map[string]struct{}{
	"for": {}, "at": {}, "in": {}, "on": {}, "today": {}, "tomorrow": {},
	"tonight": {}, "now": {}, "right": {}, "this": {}, "next": {}, "please": {},
}

var tickerAliases = []struct {
	name   string
	symbol string
}{
	{name: "apple", symbol: "AAPL"},
	{name: "microsoft", symbol: "MSFT"},
	{name: "alphabet", symbol: "GOOGL"},
	{name: "google", symbol: "GOOGL"},
	{name: "amazon", symbol: "AMZN"},
	{name: "tesla", symbol: "TSLA"},
	{name: "facebook", symbol: "META"},
	{name: "meta", symbol: "META"},
	{name: "nvidia", symbol: "NVDA"},
	{name: "netflix", symbol: "NFLX"},
	{name: "intel", symbol: "INTC"},
	{name: "amd", symbol: "AMD"},
	{name: "ibm", symbol: "IBM"},
	{name: "oracle", symbol: "ORCL"},
	{name: "salesforce", symbol: "CRM"},
	{name: "adobe", symbol: "ADBE"},
	{name: "paypal", symbol: "PYPL"},
	{name: "cisco", symbol: "CSCO"},
	{name: "walmart", symbol: "WMT"},
	{name: "disney", symbol: "DIS"},
	{name: "coca-cola", symbol: "KO"},
	{name: "coca cola", symbol: "KO"},
	{name: "pepsi", symbol: "PEP"},
	{name: "mcdonald", symbol: "MCD"},
	{name: "home depot", symbol: "HD"},
	{name: "nike", symbol: "NKE"},
	{name: "starbucks", symbol: "SBUX"},
	{name: "jpmorgan", symbol: "JPM"},
	{name: "visa", symbol: "V"},
	{name: "mastercard", symbol: "MA"},
	{name: "boeing", symbol: "BA"},
	{name: "uber", symbol: "UBER"},
	{name: "spotify", symbol: "SPOT"},
}

// tickerExclusions are capitalised words that look like tickers but are not.
var tickerExclusions = map[string]struct{}{
	"THE": {}, "AND": {}, "FOR": {}, "ARE": {}, "BUT": {}, "NOT": {}, "YOU": {},
	"ALL": {}, "ANY": {}, "CAN": {}, "HAD": {}, "HER": {}, "WAS": {}, "ONE": {},
	"OUR": {}, "OUT": {}, "DAY": {}, "GET": {}, "HAS": {}, "HIM": {}, "HIS": {},
	"HOW": {}, "MAN": {}, "NEW": {}, "NOW": {}, "OLD": {}, "SEE": {}, "TWO": {},
	"WAY": {}, "WHO": {}, "BOY": {}, "DID": {}, "ITS": {}, "LET": {}, "PUT": {},
	"SAY": {}, "SHE": {}, "TOO": {}, "USE": {}, "WHAT": {}, "WITH": {}, "THIS": {},
	"THAT": {}, "FROM": {}, "HAVE": {}, "WILL": {}, "YOUR": {}, "WHEN": {}, "SHOW": {},
	"GIVE": {}, "TELL": {}, "INFO": {}, "LIST": {}, "DATA": {}, "LAST": {}, "PAST": {},
	"WEEK": {}, "YEAR": {}, "MUCH": {}, "DOES": {}, "DOING": {}, "PLUS": {}, "ALSO": {},
	"USD": {}, "EUR": {}, "ETF": {}, "CEO": {}, "CFO": {}, "IPO": {}, "API": {},
	"AWS": {}, "SSO": {}, "RDS": {}, "SQL": {}, "CPU": {}, "GPU": {}, "FAQ": {},
	"EPS": {}, "YTD": {}, "USA": {},
}

var cryptoAliases = []struct {
	words  []string
	symbol string
}{
	{words: []string{"bitcoin", "btc"}, symbol: "BTC-USD"},
	{words: []string{"ethereum", "eth", "ether"}, symbol: "ETH-USD"},
	{words: []string{"cardano", "ada"}, symbol: "ADA-USD"},
	{words: []string{"polkadot", "dot"}, symbol: "DOT-USD"},
	{words: []string{"chainlink", "link"}, symbol: "LINK-USD"},
	{words: []string{"solana", "sol"}, symbol: "SOL-USD"},
	{words: []string{"dogecoin", "doge"}, symbol: "DOGE-USD"},
	{words: []string{"ripple", "xrp"}, symbol: "XRP-USD"},
}

var operationRules = []struct {
	operation string
	keywords  []string
}{
	{operation: "sum", keywords: []string{"sum", "add", "total"}},
	{operation: "avg", keywords: []string{"average", "mean", "avg"}},
	{operation: "max", keywords: []string{"max", "maximum", "highest"}},
	{operation: "min", keywords: []string{"min", "minimum", "lowest"}},
}

var periodWordDays = map[string]int{
	"week":    7,
	"month":   30,
	"quarter": 90,
	"year":    365,
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract derives capability arguments from the question. Anything it cannot
// derive is left out so the capability applies its own default.
func (e *Extractor) Extract(question string, capability string) map[string]any {
	params := map[string]any{}

	switch {
	case capability == "get_weather":
		if city, ok := extractCity(question); ok {
			params["city"] = city
		}
	case isSymbolCapability(capability):
		if symbol, ok := extractTicker(question); ok {
			params["symbol"] = symbol
		}
	case capability == "get_crypto_data":
		if symbols := extractCryptoSymbols(question); len(symbols) > 0 {
			params["symbols"] = symbols
		}
	case isPeriodCapability(capability):
		params["days"] = extractDays(question)
	case capability == "web_search":
		params["query"] = question
		params["limit"] = defaultSearchLimit
	case capability == "calculate":
		if numbers := extractNumbers(question); len(numbers) > 0 {
			params["numbers"] = numbers
			params["operation"] = extractOperation(question)
		}
	}

	return params
}

func extractCity(question string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(question))

	for _, pattern := range cityPatterns {
		match := pattern.FindStringSubmatch(lower)
		if match == nil {
			continue
		}

		city := trimCity(match[1])
		if len([]rune(city)) < 2 || strings.IndexFunc(city, unicode.IsDigit) >= 0 {
			continue
		}

		return city, true
	}

	return "", false
}

func trimCity(capture string) string {
	if i := strings.IndexByte(capture, ','); i >= 0 {
		capture = capture[:i]
	}
	words := strings.Fields(capture)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if _, stop := cityStopWords[word]; stop {
			break
		}
		kept = append(kept, word)
	}

	return strings.Trim(strings.Join(kept, " "), ".,?!'- ")
}

func isSymbolCapability(capability string) bool {
	_, ok := symbolCapabilities[capability]
	return ok
}

func extractTicker(question string) (string, bool) {
	lower := strings.ToLower(question)
	for _, alias := range tickerAliases {
		if strings.Contains(lower, alias.name) {
			return alias.symbol, true
		}
	}

	for _, candidate := range tickerPattern.FindAllString(question, -1) {
		if _, excluded := tickerExclusions[candidate]; excluded {
			continue
		}
		return candidate, true
	}

	return "", false
}

func extractCryptoSymbols(question string) []string {
	words := map[string]struct{}{}
	for _, word := range strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[word] = struct{}{}
	}

	var symbols []string
	for _, alias := range cryptoAliases {
		for _, word := range alias.words {
			if _, ok := words[word]; ok {
				symbols = append(symbols, alias.symbol)
				break
			}
		}
	}

	return symbols
}

// isPeriodCapability matches Snowflake and AWS capabilities that take a day
// count. Connect and discovery calls take no period.
func isPeriodCapability(capability string) bool {
	if domain.IsConnectCapability(capability) || capability == "discover_aws_profiles" {
		return false
	}

	return strings.Contains(capability, "snowflake") || strings.Contains(capability, "aws")
}

func extractDays(question string) int {
	if match := dayCountPattern.FindStringSubmatch(question); match != nil {
		if days, err := strconv.Atoi(match[1]); err == nil && days > 0 {
			return days
		}
	}

	if match := periodWordPattern.FindStringSubmatch(question); match != nil {
		return periodWordDays[strings.ToLower(match[1])]
	}

	return defaultPeriodDays
}

func extractNumbers(question string) []float64 {
	matches := numberPattern.FindAllString(question, -1)
	numbers := make([]float64, 0, len(matches))
	for _, match := range matches {
		value, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, value)
	}

	return numbers
}

func extractOperation(question string) string {
	lower := strings.ToLower(question)
	for _, rule := range operationRules {
		if containsAny(lower, rule.keywords) {
			return rule.operation
		}
	}

	return "sum"
}
