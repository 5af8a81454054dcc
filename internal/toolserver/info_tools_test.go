package toolserver

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWeather(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{
		Config: testConfig(),
		Weather: fakeWeather{report: domain.WeatherReport{
			Temperature: 21.456,
			FeelsLike:   20,
			Conditions:  "Clouds",
			Description: "broken clouds",
			Humidity:    60,
			WindSpeed:   3.1,
			Mock:        true,
		}},
	})

	payload := callJSON(t, c, "get_weather", map[string]any{"city": "Paris"})
	assert.Equal(t, "Paris", payload["city"])
	assert.Equal(t, 21.46, payload["temperature"])
	assert.Equal(t, "metric", payload["units"], "units default to the configured units")
	assert.Equal(t, "Clouds", payload["conditions"])
	assert.Equal(t, true, payload["mock"])

	payload = callJSON(t, c, "get_weather", map[string]any{"city": "Boston", "units": "imperial"})
	assert.Equal(t, "imperial", payload["units"])

	text, isError := callTool(t, c, "get_weather", map[string]any{})
	assert.True(t, isError)
	assert.Contains(t, text, "city is required")
}

func TestGetWeatherProviderFailureIsInline(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig(), Weather: fakeWeather{err: errors.New("city not found")}})

	payload := callJSON(t, c, "get_weather", map[string]any{"city": "Atlantis"})
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "Atlantis", payload["city"])
	assert.Contains(t, payload["error"], "error fetching weather data: city not found")
}

func TestWebSearch(t *testing.T) {
	t.Parallel()

	hits := []domain.SearchHit{
		{Title: "Go", URL: "https://go.dev", Snippet: "The Go language", Source: "DuckDuckGo Abstract"},
		{Title: "Tour", URL: "https://go.dev/tour", Snippet: "A tour of Go", Source: "DuckDuckGo Related"},
		{Title: "Blog", URL: "https://go.dev/blog", Snippet: "The Go blog", Source: "DuckDuckGo Related"},
	}

	testCases := []struct {
		name      string
		providers []ports.SearchProvider
		limit     int
		wantTitle []string
		wantSrc   string
	}{
		{
			name: "first provider answers",
			providers: []ports.SearchProvider{
				fakeSearch{name: "instant", hits: hits},
				fakeSearch{name: "html", err: errors.New("must not be called")},
			},
			limit:     2,
			wantTitle: []string{"Go", "Tour"},
			wantSrc:   "DuckDuckGo Abstract",
		},
		{
			name: "failures and empty answers fall through",
			providers: []ports.SearchProvider{
				fakeSearch{name: "instant", err: errors.New("timeout")},
				fakeSearch{name: "html"},
				fakeSearch{name: "openai", hits: []domain.SearchHit{{Title: "Information about: golang", Source: "AI Knowledge Base"}}},
			},
			limit:     5,
			wantTitle: []string{"Information about: golang"},
			wantSrc:   "AI Knowledge Base",
		},
		{
			name:      "nothing found",
			providers: []ports.SearchProvider{fakeSearch{name: "instant"}},
			limit:     5,
			wantTitle: []string{"Search: golang"},
			wantSrc:   "DuckDuckGo",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, c := newTestServer(t, Deps{Config: testConfig(), Search: tc.providers})
			text, isError := callTool(t, c, "web_search", map[string]any{"query": "golang", "limit": tc.limit})
			require.False(t, isError, text)

			var results []searchResult
			require.NoError(t, json.Unmarshal([]byte(text), &results))
			titles := make([]string, 0, len(results))
			for _, result := range results {
				titles = append(titles, result.Title)
			}
			assert.Equal(t, tc.wantTitle, titles)
			assert.Equal(t, tc.wantSrc, results[0].Source)
		})
	}
}

func TestWebSearchFallbackEntry(t *testing.T) {
	t.Parallel()

	_, c := newTestServer(t, Deps{Config: testConfig()})
	text, _ := callTool(t, c, "web_search", map[string]any{"query": "rust vs go"})

	var results []searchResult
	require.NoError(t, json.Unmarshal([]byte(text), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "https://duckduckgo.com/?q=rust+vs+go", results[0].URL)
	assert.Contains(t, results[0].Snippet, "No specific results found for 'rust vs go'")
}
