package application

import (
	"testing"

	"github.com/bnema/pulse/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSuggesterSuggest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		analysis domain.QuestionAnalysis
		want     []string
	}{
		{
			name:     "snowflake cost beats list",
			analysis: domain.QuestionAnalysis{Intents: []domain.Intent{domain.IntentSnowflake}, Actions: []domain.Action{domain.ActionCostAnalysis, domain.ActionList}},
			want:     []string{"get_snowflake_overall_costs", "get_snowflake_cost_summary"},
		},
		{
			name:     "snowflake connect",
			analysis: domain.QuestionAnalysis{Intents: []domain.Intent{domain.IntentSnowflake}, Actions: []domain.Action{domain.ActionConnect}},
			want:     []string{"connect_snowflake_auto", "connect_snowflake_sso"},
		},
		{
			name:     "snowflake report",
			analysis: domain.QuestionAnalysis{Intents: []domain.Intent{domain.IntentSnowflake}, Actions: []domain.Action{domain.ActionGenerateReport}},
			want:     []string{"get_snowflake_cost_report"},
		},
		{
			name:     "snowflake list",
			analysis: domain.QuestionAnalysis{Intents: []domain.Intent{domain.IntentSnowflake}, Actions: []domain.Action{domain.ActionList}},
			want:     []string{"get_snowflake_top_warehouses"},
		},
		{
			name:     "snowflake default",
			analysis: domain.QuestionAnalysis{Intents: []domain.Intent{domain.IntentSnowflake}},
			want:     []string{"get_snowflake_overall_costs", "get_snowflake_cost_summary"},
		},
		{
			name:     "aws list discovers profiles",
			analysis: domain.QuestionAnalysis{Intents: []domain.Intent{domain.IntentAWS}, Actions: []domain.Action{domain.ActionList}},
			want:     []string{"discover_aws_profiles"},
		},
		{
			name:     "aws default",
			analysis: domain.QuestionAnalysis{Intents: []domain.Intent{domain.IntentAWS}},
			want:     []string{"discover_aws_profiles", "analyze_aws_costs"},
		},
		{
			name:     "stock default",
			analysis: domain.QuestionAnalysis{Intents: []domain.Intent{domain.IntentStock}},
			want:     []string{"get_stock_info", "get_market_indices"},
		},
		{
			name:     "intents concatenate in declaration order",
			analysis: domain.QuestionAnalysis{Intents: []domain.Intent{domain.IntentWeather, domain.IntentStock, domain.IntentCrypto}},
			want:     []string{"get_stock_info", "get_market_indices", "get_crypto_data", "get_weather"},
		},
		{
			name:     "math",
			analysis: domain.QuestionAnalysis{Intents: []domain.Intent{domain.IntentMath}},
			want:     []string{"calculate"},
		},
		{
			name:     "no intent",
			analysis: domain.QuestionAnalysis{Actions: []domain.Action{domain.ActionList}},
			want:     nil,
		},
	}

	suggester := NewSuggester()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, suggester.Suggest(tt.analysis))
		})
	}
}
