package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/pulse/internal/version"
	"github.com/mark3labs/mcp-go/mcp"
)

const jsonMIME = "application/json"

type resourceHandler func(ctx context.Context) (any, error)

func (s *Server) registerResources() {
	s.addResource("config://settings", "Server configuration",
		"Server features and non-secret settings", s.settingsResource)
	s.addResource("status://server", "Server status",
		"Uptime, registered tools and the Snowflake session", s.statusResource)
	s.addResource("aws://profiles", "AWS profiles",
		"AWS profiles discovered in the local configuration", s.awsProfilesResource)
	s.addResource("stocks://market-overview", "Market overview",
		"Major indices and cryptocurrencies", s.marketOverviewResource)
}

func (s *Server) addResource(uri, name, description string, handler resourceHandler) {
	resource := mcp.NewResource(uri, name,
		mcp.WithResourceDescription(description),
		mcp.WithMIMEType(jsonMIME),
	)

	s.mcp.AddResource(resource, func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		payload, err := handler(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode resource %s: %w", uri, err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: jsonMIME, Text: string(data)},
		}, nil
	})
}

func (s *Server) settingsResource(context.Context) (any, error) {
	cfg := s.deps.Config
	return map[string]any{
		"app_name": Name,
		"version":  version.Version,
		"features": []string{"tools", "resources", "prompts", "aws_cost_analysis", "stock_market_analysis", "snowflake_cost_analysis"},
		"transport": map[string]any{
			"mode": cfg.Server.ResolvedTransport(),
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
		},
		"weather": map[string]any{
			"units":        cfg.Weather.Units,
			"live_weather": cfg.Weather.APIKey != "",
		},
		"search": map[string]any{
			"providers":     s.searchProviderNames(),
			"openai_model":  cfg.Search.OpenAIModel,
			"openai_search": cfg.Search.OpenAIKey != "",
		},
		"aws_features": map[string]any{
			"cost_analysis":          s.deps.Cloud != nil,
			"profile_discovery":      s.deps.Cloud != nil,
			"multi_account_support":  true,
			"default_region":         cfg.AWS.Region,
			"cost_explorer_currency": "USD",
		},
		"stock_market_features": map[string]any{
			"real_time_data":     s.deps.Market != nil,
			"technical_analysis": true,
			"portfolio_tracking": true,
			"market_screening":   true,
			"crypto_support":     true,
			"market_indices":     true,
		},
		"snowflake_features": map[string]any{
			"sso_authentication":      true,
			"overall_cost_monitoring": true,
			"warehouse_cost_analysis": true,
			"storage_cost_tracking":   true,
			"credit_price":            cfg.Snowflake.CreditPrice,
			"storage_price_per_gb":    cfg.Snowflake.StoragePrice,
			"session_ttl":             cfg.Snowflake.SessionTTL.String(),
			"auto_connect_configured": cfg.Snowflake.Account != "" && cfg.Snowflake.User != "",
		},
	}, nil
}

func (s *Server) searchProviderNames() []string {
	names := make([]string, 0, len(s.deps.Search))
	for _, provider := range s.deps.Search {
		names = append(names, provider.Name())
	}
	return names
}

func (s *Server) statusResource(context.Context) (any, error) {
	now := s.deps.Clock.Now()
	return map[string]any{
		"status":    "online",
		"timestamp": now.UTC().Format(time.RFC3339),
		"uptime":    now.Sub(s.started).Truncate(time.Second).String(),
		"tools":     len(s.tools),
		"snowflake": s.warehouseStatus(),
		"integrations": map[string]bool{
			"weather":   s.deps.Weather != nil,
			"search":    len(s.deps.Search) > 0,
			"aws":       s.deps.Cloud != nil,
			"market":    s.deps.Market != nil,
			"snowflake": s.deps.Warehouse != nil,
		},
	}, nil
}

func (s *Server) awsProfilesResource(ctx context.Context) (any, error) {
	if s.deps.Cloud == nil {
		return map[string]any{"success": false, "error": "aws " + errProviderMissing.Error()}, nil
	}

	profiles, err := s.deps.Cloud.Profiles(ctx)
	if err != nil {
		return map[string]any{"success": false, "error": err.Error()}, nil
	}
	return map[string]any{
		"success":        true,
		"profiles":       profilePayloads(profiles),
		"total_profiles": len(profiles),
	}, nil
}

func (s *Server) marketOverviewResource(ctx context.Context) (any, error) {
	if s.deps.Market == nil {
		return map[string]any{"success": false, "error": "market data " + errProviderMissing.Error()}, nil
	}

	now := s.deps.Clock.Now()
	coins, _ := s.cryptoQuotes(ctx, append([]string(nil), defaultCryptoSymbols...))
	return map[string]any{
		"success":          true,
		"market_indices":   s.indices(ctx),
		"cryptocurrencies": coins,
		"timestamp":        now.UTC().Format(time.RFC3339),
		"market_status":    marketStatus(now),
	}, nil
}

// marketStatus only knows about weekends, not exchange holidays.
func marketStatus(now time.Time) string {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return "closed"
	default:
		return "open"
	}
}
