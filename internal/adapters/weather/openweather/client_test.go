package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bnema/pulse/internal/adapters/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentParsesResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "key-123", r.URL.Query().Get("appid"))
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(`{"name":"Paris","main":{"temp":61.5,"feels_like":60.1,"humidity":72},"weather":[{"main":"Clouds","description":"broken clouds"}],"wind":{"speed":4.1}}`))
	}))
	t.Cleanup(server.Close)

	client := &Client{APIKey: "key-123", BaseURL: server.URL + "/data/2.5", HTTP: httpapi.Client{HTTPClient: server.Client()}}

	report, err := client.Current(context.Background(), "Paris", "Imperial")
	require.NoError(t, err)
	assert.Equal(t, "Paris", report.City)
	assert.InDelta(t, 61.5, report.Temperature, 1e-9)
	assert.Equal(t, "Clouds", report.Conditions)
	assert.Equal(t, "broken clouds", report.Description)
	assert.Equal(t, 72, report.Humidity)
	assert.Equal(t, "imperial", report.Units)
	assert.False(t, report.Mock)
}

func TestCurrentWithoutKeyIsMock(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		units string
		want  float64
	}{
		{units: "", want: 24},
		{units: "metric", want: 24},
		{units: "imperial", want: 75},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.units, func(t *testing.T) {
			t.Parallel()

			report, err := (&Client{}).Current(context.Background(), "Tokyo", tc.units)
			require.NoError(t, err)
			assert.True(t, report.Mock)
			assert.Equal(t, "Tokyo", report.City)
			assert.InDelta(t, tc.want, report.Temperature, 1e-9)
			assert.Equal(t, 45, report.Humidity)
		})
	}
}

func TestCurrentValidatesInput(t *testing.T) {
	t.Parallel()

	_, err := (&Client{}).Current(context.Background(), "  ", "metric")
	assert.ErrorContains(t, err, "city is required")

	_, err = (&Client{}).Current(context.Background(), "Oslo", "kelvin")
	assert.ErrorContains(t, err, "unsupported units")
}

func TestCurrentWrapsHTTPErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := &Client{APIKey: "k", BaseURL: server.URL, HTTP: httpapi.Client{HTTPClient: server.Client()}}
	_, err := client.Current(context.Background(), "Atlantis", "")
	assert.ErrorContains(t, err, "fetch weather for Atlantis")
	assert.ErrorContains(t, err, "city not found")
}
