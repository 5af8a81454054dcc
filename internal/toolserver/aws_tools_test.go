package toolserver

import (
	"testing"

	"github.com/bnema/pulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCloud() fakeCloud {
	return fakeCloud{
		profiles: []domain.CloudProfile{
			{Name: "default", Region: "us-east-1", Source: "config+credentials", HasCredentials: true, AccessKeyHint: "AKIAABCD..."},
			{Name: "prod", Region: "eu-west-1", Source: "config", RoleARN: "arn:aws:iam::222:role/ops", HasCredentials: true},
			{Name: "broken", Source: "config"},
		},
		reports: map[string]domain.CloudCostReport{
			"default": {AccountID: "111", Region: "us-east-1", Currency: "USD", Services: []domain.ServiceCost{
				{Service: "Amazon EC2", Cost: 60},
				{Service: "Amazon S3", Cost: 40},
			}},
			"prod": {AccountID: "222", Region: "eu-west-1", Currency: "USD", Services: []domain.ServiceCost{
				{Service: "Amazon EC2", Cost: 100},
				{Service: "Amazon RDS", Cost: 50},
				{Service: "AWS Lambda", Cost: 10},
			}},
		},
	}
}

func TestDiscoverAWSProfiles(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Cloud: testCloud()})

	payload := callJSON(t, c, "discover_aws_profiles", nil)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(3), payload["total_profiles"])

	profiles, ok := payload["profiles"].([]any)
	require.True(t, ok)
	first, ok := profiles[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "default", first["name"])
}

func TestAnalyzeAWSCostsAllProfiles(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Cloud: testCloud()})

	payload := callJSON(t, c, "analyze_aws_costs", map[string]any{"days": 7})
	assert.Equal(t, "all_profiles", payload["analysis_type"])
	assert.Equal(t, float64(7), payload["period_days"])
	assert.Equal(t, 260.0, payload["total_cost"])
	assert.Equal(t, float64(2), payload["profiles_successful"])
	assert.Equal(t, float64(1), payload["profiles_failed"])

	profiles := payload["profiles"].(map[string]any)
	broken := profiles["broken"].(map[string]any)
	assert.Equal(t, false, broken["success"])
	assert.Contains(t, broken["error"], "access denied")

	summary := payload["summary"].(map[string]any)
	top := summary["top_5_services_across_all_accounts"].([]any)
	require.Len(t, top, 4)
	leader := top[0].(map[string]any)
	assert.Equal(t, "Amazon EC2", leader["service"])
	assert.Equal(t, 160.0, leader["cost"])
	assert.Equal(t, 61.54, leader["percentage"])

	expensive := summary["most_expensive_account"].(map[string]any)
	assert.Equal(t, "prod", expensive["profile"])
	assert.Equal(t, "222", expensive["account_id"])
}

func TestAnalyzeAWSCostsSingleProfile(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Cloud: testCloud()})

	payload := callJSON(t, c, "analyze_aws_costs", map[string]any{"profile": "default"})
	assert.Equal(t, "single_profile", payload["analysis_type"])
	assert.Equal(t, 100.0, payload["total_cost"])
	assert.Equal(t, float64(defaultCostDays), payload["period_days"])
	services := payload["services"].([]any)
	require.Len(t, services, 2)
	assert.Equal(t, 60.0, services[0].(map[string]any)["percentage"])

	payload = callJSON(t, c, "analyze_aws_costs", map[string]any{"profile": "broken"})
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "broken", payload["profile"])
}

func TestAnalyzeAWSCostsRejectsDays(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Cloud: testCloud()})

	for _, days := range []any{0, 400, "soon"} {
		_, isError := callTool(t, c, "analyze_aws_costs", map[string]any{"days": days})
		assert.True(t, isError, "days %v", days)
	}
}

func TestAWSCostReport(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Cloud: testCloud()})

	summary, isError := callTool(t, c, "get_aws_cost_report", map[string]any{"format_type": "summary"})
	require.False(t, isError)
	assert.Contains(t, summary, "🏦 AWS COST SUMMARY")
	assert.Contains(t, summary, "💰 Total Cost (All Accounts): $260.00")
	assert.Contains(t, summary, "1. Amazon EC2: $160.00 (61.54%)")
	assert.Contains(t, summary, "Most Expensive Account: prod ($160.00)")

	detailed, isError := callTool(t, c, "get_aws_cost_report", nil)
	require.False(t, isError)
	assert.Contains(t, detailed, "🏦 AWS COST ANALYSIS REPORT")
	assert.Contains(t, detailed, "❌ broken: access denied for broken")
	assert.Contains(t, detailed, "🔹 default (Account: 111)")

	_, isError = callTool(t, c, "get_aws_cost_report", map[string]any{"format_type": "csv"})
	assert.True(t, isError)
}

func TestAWSToolsWithoutProvider(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig()})

	payload := callJSON(t, c, "discover_aws_profiles", nil)
	assert.Equal(t, false, payload["success"])

	text, _ := callTool(t, c, "get_aws_cost_report", nil)
	assert.Contains(t, text, "❌ Analysis failed")
}
