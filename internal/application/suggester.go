package application

import "github.com/bnema/pulse/internal/domain"

type suggestionRow struct {
	actions []domain.Action
	tools   []string
}

// suggestionTable holds, per intent, rows checked in order; the first row
// with a matching action wins. A row without actions is the default.
var suggestionTable = []struct {
	intent domain.Intent
	rows   []suggestionRow
}{
	{
		intent: domain.IntentSnowflake,
		rows: []suggestionRow{
			{actions: []domain.Action{domain.ActionConnect}, tools: []string{"connect_snowflake_auto", "connect_snowflake_sso"}},
			{actions: []domain.Action{domain.ActionCostAnalysis}, tools: []string{"get_snowflake_overall_costs", "get_snowflake_cost_summary"}},
			{actions: []domain.Action{domain.ActionGenerateReport}, tools: []string{"get_snowflake_cost_report"}},
			{actions: []domain.Action{domain.ActionList}, tools: []string{"get_snowflake_top_warehouses"}},
			{tools: []string{"get_snowflake_overall_costs", "get_snowflake_cost_summary"}},
		},
	},
	{
		intent: domain.IntentAWS,
		rows: []suggestionRow{
			{actions: []domain.Action{domain.ActionConnect, domain.ActionList}, tools: []string{"discover_aws_profiles"}},
			{actions: []domain.Action{domain.ActionCostAnalysis}, tools: []string{"analyze_aws_costs"}},
			{actions: []domain.Action{domain.ActionGenerateReport}, tools: []string{"get_aws_cost_report"}},
			{tools: []string{"discover_aws_profiles", "analyze_aws_costs"}},
		},
	},
	{
		intent: domain.IntentStock,
		rows: []suggestionRow{
			{actions: []domain.Action{domain.ActionList}, tools: []string{"get_market_indices"}},
			{tools: []string{"get_stock_info", "get_market_indices"}},
		},
	},
	{intent: domain.IntentCrypto, rows: []suggestionRow{{tools: []string{"get_crypto_data"}}}},
	{intent: domain.IntentWeather, rows: []suggestionRow{{tools: []string{"get_weather"}}}},
	{intent: domain.IntentMath, rows: []suggestionRow{{tools: []string{"calculate"}}}},
	{intent: domain.IntentSearch, rows: []suggestionRow{{tools: []string{"web_search"}}}},
}

type Suggester struct{}

func NewSuggester() *Suggester {
	return &Suggester{}
}

// Suggest returns capability names in intent declaration order. A name
// suggested by several intents is kept at its first position only.
func (s *Suggester) Suggest(analysis domain.QuestionAnalysis) []string {
	var names []string
	seen := map[string]struct{}{}

	for _, entry := range suggestionTable {
		if !analysis.HasIntent(entry.intent) {
			continue
		}

		for _, name := range selectRow(entry.rows, analysis) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	return names
}

func selectRow(rows []suggestionRow, analysis domain.QuestionAnalysis) []string {
	for _, row := range rows {
		if len(row.actions) == 0 {
			return row.tools
		}
		for _, action := range row.actions {
			if analysis.HasAction(action) {
				return row.tools
			}
		}
	}

	return nil
}
