package application

import (
	"strings"

	"github.com/bnema/pulse/internal/domain"
)

type intentRule struct {
	intent   domain.Intent
	keywords []string
}

type actionRule struct {
	action   domain.Action
	keywords []string
}

// Rule order is the order tags appear in a QuestionAnalysis and therefore the
// order in which suggestions are produced.
var intentRules = []intentRule{
	{intent: domain.IntentSnowflake, keywords: []string{"snowflake", "warehouse", "credits", "compute", "sf cost"}},
	{intent: domain.IntentAWS, keywords: []string{"aws", "amazon", "ec2", "rds", "s3", "lambda", "cloud cost"}},
	{intent: domain.IntentStock, keywords: []string{"stock", "ticker", "share", "equity", "portfolio", "nasdaq", "dow", "sp500"}},
	{intent: domain.IntentCrypto, keywords: []string{"crypto", "bitcoin", "ethereum", "cryptocurrency", "btc", "eth"}},
	{intent: domain.IntentWeather, keywords: []string{"weather", "temperature", "forecast", "rain", "sunny", "cloudy"}},
	{intent: domain.IntentMath, keywords: []string{"calculate", "compute", "sum", "average", "math", "multiply", "divide"}},
	{intent: domain.IntentSearch, keywords: []string{"search", "find", "look up", "information about", "tell me about"}},
}

var actionRules = []actionRule{
	{action: domain.ActionCostAnalysis, keywords: []string{"cost", "expense", "spending"}},
	{action: domain.ActionGenerateReport, keywords: []string{"report", "summary"}},
	{action: domain.ActionConnect, keywords: []string{"connect", "login"}},
	{action: domain.ActionList, keywords: []string{"list", "show"}},
}

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Classify(question string) domain.QuestionAnalysis {
	lower := strings.ToLower(question)
	analysis := domain.QuestionAnalysis{RawQuestion: question}

	for _, rule := range intentRules {
		if containsAny(lower, rule.keywords) {
			analysis.Intents = append(analysis.Intents, rule.intent)
		}
	}

	for _, rule := range actionRules {
		if containsAny(lower, rule.keywords) {
			analysis.Actions = append(analysis.Actions, rule.action)
		}
	}

	return analysis
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}

	return false
}
