package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bnema/pulse/internal/application"
	"github.com/bnema/pulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWithoutInvocations(t *testing.T) {
	t.Parallel()

	output := NewFormatter().Report("anything", nil)
	assert.Contains(t, output, NoResultsMessage)
}

func TestReportRendersSectionPerInvocationInOrder(t *testing.T) {
	t.Parallel()

	output := NewFormatter().Report("q", []domain.ToolInvocation{
		{CapabilityName: "get_weather", Result: domain.StructuredResult(map[string]any{"city": "paris", "temperature": 21.5})},
		{CapabilityName: "calculate", Result: domain.TextResult("60")},
	})

	weather := strings.Index(output, "🔧 **get_weather**:")
	calculate := strings.Index(output, "🔧 **calculate**:")
	require.GreaterOrEqual(t, weather, 0)
	require.Greater(t, calculate, weather)
	assert.Contains(t, output, "   📊 {\n  \"city\": \"paris\",\n  \"temperature\": 21.5\n}")
	assert.Contains(t, output, "   📊 60")
	assert.True(t, strings.HasPrefix(output, "\n🔧"))
}

func TestReportErrorLines(t *testing.T) {
	t.Parallel()

	output := NewFormatter().Report("q", []domain.ToolInvocation{
		{CapabilityName: "get_snowflake_overall_costs", Result: domain.StructuredResult(map[string]any{"success": false, "error": "Not connected to Snowflake"})},
		{CapabilityName: "get_weather", Result: domain.ErrorResult("Error executing get_weather: boom")},
	})

	assert.Contains(t, output, "   ❌ Error: Not connected to Snowflake")
	assert.Contains(t, output, "   ❌ Error: Error executing get_weather: boom")
}

func TestReportCategoryRenderers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		capability string
		data       map[string]any
		want       []string
	}{
		{
			name:       "snowflake total cost",
			capability: "get_snowflake_overall_costs",
			data:       map[string]any{"total_cost": 1234.5, "warehouses": []any{}},
			want:       []string{"   💰 Total cost: $1234.50"},
		},
		{
			name:       "snowflake warehouses keeps top five",
			capability: "get_snowflake_top_warehouses",
			data: map[string]any{"warehouses": []any{
				map[string]any{"name": "WH_1", "cost": 60.0},
				map[string]any{"name": "WH_2", "cost": 50.0},
				map[string]any{"name": "WH_3", "cost": 40.0},
				map[string]any{"name": "WH_4", "cost": 30.0},
				map[string]any{"name": "WH_5", "cost": 20.0},
				map[string]any{"name": "WH_6", "cost": 10.0},
			}},
			want: []string{"   🏭 Top warehouses by cost:", "      • WH_1: $60.00", "      • WH_5: $20.00"},
		},
		{
			name:       "aws total cost",
			capability: "analyze_aws_costs",
			data:       map[string]any{"total_cost": 99.999},
			want:       []string{"   💰 Total AWS cost: $100.00"},
		},
		{
			name:       "aws profiles",
			capability: "discover_aws_profiles",
			data:       map[string]any{"profiles": []any{"default", "prod"}},
			want:       []string{"   🔧 Found 2 AWS profiles: default, prod"},
		},
		{
			name:       "stock price uses change percent",
			capability: "get_stock_info",
			data:       map[string]any{"price": 189.5, "change": 1.2, "change_percent": 0.64},
			want:       []string{"   📈 Price: $189.50, Change: 0.64%"},
		},
		{
			name:       "market indices sorted by name",
			capability: "get_market_indices",
			data: map[string]any{"indices": map[string]any{
				"S&P 500": map[string]any{"value": 5000.25},
				"NASDAQ":  map[string]any{"value": 16000.0},
				"VIX":     map[string]any{"error": "Data not available"},
			}},
			want: []string{"   📊 Market indices:\n      • NASDAQ: 16000\n      • S&P 500: 5000.25\n      • VIX: N/A"},
		},
		{
			name:       "category dump uses wide indent",
			capability: "get_snowflake_cost_summary",
			data:       map[string]any{"period_days": 30.0},
			want:       []string{"   📊 {\n      \"period_days\": 30\n}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := NewFormatter().Report("q", []domain.ToolInvocation{
				{CapabilityName: tt.capability, Result: domain.StructuredResult(tt.data)},
			})
			for _, want := range tt.want {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestReportWarehouseListStopsAtFive(t *testing.T) {
	t.Parallel()

	warehouses := make([]any, 0, 7)
	for i := 1; i <= 7; i++ {
		warehouses = append(warehouses, map[string]any{"name": fmt.Sprintf("WH_%d", i), "cost": float64(i)})
	}

	output := NewFormatter().Report("q", []domain.ToolInvocation{
		{CapabilityName: "get_snowflake_top_warehouses", Result: domain.StructuredResult(map[string]any{"warehouses": warehouses})},
	})

	assert.Contains(t, output, "WH_5")
	assert.NotContains(t, output, "WH_6")
}

func TestReportIsIdempotent(t *testing.T) {
	t.Parallel()

	invocations := []domain.ToolInvocation{
		{CapabilityName: "get_market_indices", Result: domain.StructuredResult(map[string]any{"indices": map[string]any{
			"Dow Jones": map[string]any{"value": 39000.1},
			"NASDAQ":    map[string]any{"value": 16000.0},
		}})},
		{CapabilityName: "web_search", Result: domain.StructuredResult(map[string]any{"b": 2.0, "a": 1.0})},
		{CapabilityName: "calculate", Result: domain.ErrorResult("boom")},
	}

	formatter := NewFormatter()
	first := formatter.Report("q", invocations)
	second := formatter.Report("q", invocations)
	assert.Equal(t, first, second)
}

func TestHistoryShowsLastTenEntriesTruncated(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	entries := make([]domain.HistoryEntry, 0, 12)
	for i := 0; i < 12; i++ {
		entries = append(entries, domain.HistoryEntry{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Type:      domain.EntryQuestion,
			Content:   fmt.Sprintf("question-%02d %s", i, strings.Repeat("x", 120)),
		})
	}
	entries[11] = domain.HistoryEntry{Timestamp: start.Add(11 * time.Minute), Type: domain.EntryResponse, ToolsUsed: []string{"get_weather", "calculate"}}

	output := NewFormatter().History(entries)

	assert.NotContains(t, output, "question-00")
	assert.NotContains(t, output, "question-01")
	assert.Contains(t, output, "🤔 [2026-02-14T12:02:00] Q: question-02")
	assert.Contains(t, output, strings.Repeat("x", 88)+"...")
	assert.NotContains(t, output, strings.Repeat("x", 89))
	assert.Contains(t, output, "🤖 [2026-02-14T12:11:00] A: Used tools [get_weather, calculate]")
}

func TestHistoryEmpty(t *testing.T) {
	t.Parallel()

	assert.Contains(t, NewFormatter().History(nil), "No conversation history yet.")
}

func TestToolsGroupsByCategory(t *testing.T) {
	t.Parallel()

	registry, err := application.NewRegistry([]domain.CapabilityDescriptor{
		{Name: "get_weather", Description: "Weather for a city", Category: domain.CategoryWeather},
		{Name: "analyze_aws_costs", Category: domain.CategoryAWS},
	}, application.RegistrySourceFallback)
	require.NoError(t, err)

	output := NewFormatter().Tools(registry.Grouped())

	aws := strings.Index(output, "AWS:")
	weather := strings.Index(output, "WEATHER:")
	require.GreaterOrEqual(t, aws, 0)
	require.Greater(t, weather, aws)
	assert.Contains(t, output, "get_weather: Weather for a city")
	assert.Contains(t, output, "analyze_aws_costs: No description")
}

func TestHelpListsCommands(t *testing.T) {
	t.Parallel()

	output := NewFormatter().Help()
	for _, command := range []string{"help", "tools", "history", "session, status", "clear", "quit, exit, bye"} {
		assert.Contains(t, output, command)
	}
}

func TestSessionStates(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	connected := domain.ExternalSession{
		ID:          "s-1",
		Method:      domain.SessionMethodSSO,
		Payload:     map[string]any{"account": "acme-prod", "user": "ana"},
		ConnectedAt: now.Add(-time.Hour),
		ExpiresAt:   now.Add(3 * time.Hour),
	}

	formatter := NewFormatter()

	assert.Contains(t, formatter.Session(domain.SessionStatus{State: domain.SessionDisconnected, Now: now}), "status: disconnected")

	output := formatter.Session(domain.SessionStatus{State: domain.SessionConnected, Session: connected, Now: now})
	assert.Contains(t, output, "status: connected")
	assert.Contains(t, output, "method: sso")
	assert.Contains(t, output, "account: acme-prod")
	assert.Contains(t, output, "user: ana")
	assert.Contains(t, output, "[==================------]")
	assert.Contains(t, output, "expires in 3 hours (15:00)")

	skipped := domain.ExternalSession{ID: "s-2", Method: domain.SessionMethodSkipped, ConnectedAt: now, ExpiresAt: now.Add(30 * time.Minute)}
	output = formatter.Session(domain.SessionStatus{State: domain.SessionDegraded, Session: skipped, Now: now})
	assert.Contains(t, output, "skipped (mock data likely)")
	assert.Contains(t, output, "expires in 30 minutes (12:30)")

	output = formatter.Session(domain.SessionStatus{State: domain.SessionExpired, Session: connected, Now: now.Add(4 * time.Hour)})
	assert.Contains(t, output, "status: expired")
}

func TestConnectionFailedMessage(t *testing.T) {
	t.Parallel()

	assert.Contains(t, NewFormatter().ConnectionFailed("account is required"), "❌ Snowflake connection failed: account is required")
	assert.Equal(t, UnknownIntentMessage, NewFormatter().UnknownIntent())
}
