package toolserver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bnema/pulse/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

const defaultSearchLimit = 5

func (s *Server) registerInfoTools() {
	s.addTool(mcp.NewTool("get_weather",
		mcp.WithDescription("Get current weather conditions for a city"),
		mcp.WithString("city", mcp.Required(), mcp.Description("City name, for example Paris or New York")),
		mcp.WithString("units", mcp.Description("metric or imperial"), mcp.Enum("metric", "imperial")),
	), s.getWeather)

	s.addTool(mcp.NewTool("web_search",
		mcp.WithDescription("Search the web for information"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results"), mcp.DefaultNumber(defaultSearchLimit)),
	), s.webSearch)
}

func (s *Server) getWeather(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	city := stringArg(args, "city", "")
	if city == "" {
		return argumentError(errors.New("city is required"))
	}
	if s.deps.Weather == nil {
		return failure(fmt.Errorf("weather %w", errProviderMissing), map[string]any{"city": city})
	}

	units := stringArg(args, "units", s.deps.Config.Weather.Units)
	report, err := s.deps.Weather.Current(ctx, city, units)
	if err != nil {
		return failure(fmt.Errorf("error fetching weather data: %w", err), map[string]any{"city": city})
	}

	return jsonResult(weatherPayload(report))
}

func weatherPayload(report domain.WeatherReport) map[string]any {
	payload := map[string]any{
		"city":        report.City,
		"temperature": round2(report.Temperature),
		"feels_like":  round2(report.FeelsLike),
		"conditions":  report.Conditions,
		"description": report.Description,
		"humidity":    report.Humidity,
		"wind_speed":  round2(report.WindSpeed),
		"units":       report.Units,
	}
	if report.Mock {
		payload["mock"] = true
	}
	return payload
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// webSearch walks the providers in order and keeps the first non-empty answer.
func (s *Server) webSearch(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	query := stringArg(args, "query", "")
	if query == "" {
		return argumentError(errors.New("query is required"))
	}
	limit, err := intArg(args, "limit", defaultSearchLimit, 1)
	if err != nil {
		return argumentError(err)
	}

	for _, provider := range s.deps.Search {
		hits, err := provider.Search(ctx, query, limit)
		if err != nil {
			if ctx.Err() != nil {
				return failure(ctx.Err(), nil)
			}
			s.deps.Logger.Debug("search provider failed", zap.String("provider", provider.Name()), zap.Error(err))
			continue
		}
		if len(hits) == 0 {
			continue
		}
		if len(hits) > limit {
			hits = hits[:limit]
		}
		return jsonResult(searchResults(hits))
	}

	return jsonResult([]searchResult{{
		Title:   "Search: " + query,
		URL:     "https://duckduckgo.com/?q=" + url.QueryEscape(query),
		Snippet: fmt.Sprintf("No specific results found for '%s'. Try refining the query or open the link for live results.", strings.TrimSpace(query)),
		Source:  "DuckDuckGo",
	}})
}

func searchResults(hits []domain.SearchHit) []searchResult {
	out := make([]searchResult, 0, len(hits))
	for _, hit := range hits {
		out = append(out, searchResult{Title: hit.Title, URL: hit.URL, Snippet: hit.Snippet, Source: hit.Source})
	}
	return out
}
