package openweather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bnema/pulse/internal/adapters/httpapi"
	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	UnitsMetric    = "metric"
	UnitsImperial  = "imperial"
)

// Client reads current conditions. Without an API key it serves a fixed
// mock report so the tool stays usable offline.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    httpapi.Client
}

var _ ports.WeatherProvider = (*Client)(nil)

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (c *Client) Current(ctx context.Context, city string, units string) (domain.WeatherReport, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return domain.WeatherReport{}, errors.New("city is required")
	}
	units, err := normalizeUnits(units)
	if err != nil {
		return domain.WeatherReport{}, err
	}
	if c.APIKey == "" {
		return mockReport(city, units), nil
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint, err := httpapi.BuildURL(base, "weather", url.Values{
		"q":     {city},
		"appid": {c.APIKey},
		"units": {units},
	})
	if err != nil {
		return domain.WeatherReport{}, err
	}

	var payload currentResponse
	if err := c.HTTP.GetJSON(ctx, endpoint, &payload); err != nil {
		return domain.WeatherReport{}, fmt.Errorf("fetch weather for %s: %w", city, err)
	}

	report := domain.WeatherReport{
		City:        payload.Name,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Units:       units,
	}
	if report.City == "" {
		report.City = city
	}
	if len(payload.Weather) > 0 {
		report.Conditions = payload.Weather[0].Main
		report.Description = payload.Weather[0].Description
	}

	return report, nil
}

func normalizeUnits(units string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(units)) {
	case "", UnitsMetric:
		return UnitsMetric, nil
	case UnitsImperial:
		return UnitsImperial, nil
	default:
		return "", fmt.Errorf("unsupported units %q (want metric or imperial)", units)
	}
}

func mockReport(city string, units string) domain.WeatherReport {
	temperature := 24.0
	if units == UnitsImperial {
		temperature = 75.0
	}

	return domain.WeatherReport{
		City:        city,
		Temperature: temperature,
		FeelsLike:   temperature,
		Conditions:  "Sunny",
		Description: "Mock weather data (set OPENWEATHER_API_KEY for live conditions)",
		Humidity:    45,
		WindSpeed:   8.5,
		Units:       units,
		Mock:        true,
	}
}
