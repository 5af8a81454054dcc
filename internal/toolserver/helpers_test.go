package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/pulse/internal/config"
	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeWeather struct {
	report domain.WeatherReport
	err    error
}

func (f fakeWeather) Current(_ context.Context, city string, units string) (domain.WeatherReport, error) {
	if f.err != nil {
		return domain.WeatherReport{}, f.err
	}
	report := f.report
	report.City = city
	report.Units = units
	return report, nil
}

type fakeSearch struct {
	name string
	hits []domain.SearchHit
	err  error
}

func (f fakeSearch) Name() string { return f.name }

func (f fakeSearch) Search(context.Context, string, int) ([]domain.SearchHit, error) {
	return f.hits, f.err
}

type fakeCloud struct {
	profiles []domain.CloudProfile
	reports  map[string]domain.CloudCostReport
}

func (f fakeCloud) Profiles(context.Context) ([]domain.CloudProfile, error) {
	return f.profiles, nil
}

func (f fakeCloud) CostByService(_ context.Context, profile string, start, end time.Time) (domain.CloudCostReport, error) {
	report, ok := f.reports[profile]
	if !ok {
		return domain.CloudCostReport{}, errors.New("access denied for " + profile)
	}
	report.Profile = profile
	report.Start, report.End = start, end
	return report, nil
}

type fakeMarket struct {
	quotes       map[string]domain.Quote
	fundamentals map[string]domain.Fundamentals
	history      []domain.Bar
}

func (f fakeMarket) Quote(_ context.Context, symbol string) (domain.Quote, error) {
	quote, ok := f.quotes[symbol]
	if !ok {
		return domain.Quote{}, errors.New("no data for " + symbol)
	}
	return quote, nil
}

func (f fakeMarket) Quotes(ctx context.Context, symbols []string) (map[string]domain.Quote, map[string]error) {
	quotes := map[string]domain.Quote{}
	failures := map[string]error{}
	for _, symbol := range symbols {
		quote, err := f.Quote(ctx, symbol)
		if err != nil {
			failures[symbol] = err
			continue
		}
		quotes[symbol] = quote
	}
	return quotes, failures
}

func (f fakeMarket) Fundamentals(_ context.Context, symbols []string) (map[string]domain.Fundamentals, map[string]error) {
	found := map[string]domain.Fundamentals{}
	failures := map[string]error{}
	for _, symbol := range symbols {
		fundamentals, ok := f.fundamentals[symbol]
		if !ok {
			failures[symbol] = errors.New("no summary for " + symbol)
			continue
		}
		found[symbol] = fundamentals
	}
	return found, failures
}

func (f fakeMarket) History(context.Context, string, string, string) ([]domain.Bar, error) {
	return f.history, nil
}

type fakeWarehouse struct {
	mu          sync.Mutex
	credentials []domain.WarehouseCredentials
	conn        *fakeConn
	err         error
}

func (f *fakeWarehouse) Connect(_ context.Context, credentials domain.WarehouseCredentials) (ports.WarehouseConn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credentials = append(f.credentials, credentials)
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

func (f *fakeWarehouse) calls() []domain.WarehouseCredentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.WarehouseCredentials(nil), f.credentials...)
}

type fakeConn struct {
	compute    domain.ComputeUsage
	storage    domain.StorageUsage
	warehouses []domain.WarehouseUsage

	mu     sync.Mutex
	closed int
}

func (c *fakeConn) ComputeUsage(context.Context, time.Time, time.Time) (domain.ComputeUsage, error) {
	return c.compute, nil
}

func (c *fakeConn) TopWarehouses(_ context.Context, _, _ time.Time, limit int) ([]domain.WarehouseUsage, error) {
	if len(c.warehouses) > limit {
		return c.warehouses[:limit], nil
	}
	return c.warehouses, nil
}

func (c *fakeConn) StorageUsage(context.Context, time.Time, time.Time) (domain.StorageUsage, error) {
	return c.storage, nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Server:  config.ServerConfig{Transport: config.TransportAuto, Host: "127.0.0.1"},
		Weather: config.WeatherConfig{Units: "metric"},
		Snowflake: config.SnowflakeConfig{
			Authenticator: "externalbrowser",
			CreditPrice:   2.0,
			StoragePrice:  0.023,
			SessionTTL:    4 * time.Hour,
		},
	}
}

// newTestServer starts an in-process MCP client against a server built from deps.
func newTestServer(t *testing.T, deps Deps) (*Server, *client.Client) {
	t.Helper()

	if deps.Clock == nil {
		deps.Clock = &fakeClock{now: testNow}
	}
	srv := New(deps)
	t.Cleanup(func() { _ = srv.Close() })

	c, err := client.NewInProcessClient(srv.MCP())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{Name: "pulse-test", Version: "test"}
	_, err = c.Initialize(ctx, initRequest)
	require.NoError(t, err)

	return srv, c
}

func callTool(t *testing.T, c *client.Client, name string, args map[string]any) (string, bool) {
	t.Helper()

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := c.CallTool(context.Background(), request)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	return contentText(t, result.Content[0]), result.IsError
}

func callJSON(t *testing.T, c *client.Client, name string, args map[string]any) map[string]any {
	t.Helper()

	text, isError := callTool(t, c, name, args)
	require.False(t, isError, text)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &payload), text)
	return payload
}

func contentText(t *testing.T, content mcp.Content) string {
	t.Helper()

	switch c := content.(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("unexpected content %T", content)
		return ""
	}
}

func readResource(t *testing.T, c *client.Client, uri string) map[string]any {
	t.Helper()

	request := mcp.ReadResourceRequest{}
	request.Params.URI = uri
	result, err := c.ReadResource(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	var text string
	switch contents := result.Contents[0].(type) {
	case mcp.TextResourceContents:
		text = contents.Text
	case *mcp.TextResourceContents:
		text = contents.Text
	default:
		t.Fatalf("unexpected resource contents %T", result.Contents[0])
	}

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	return payload
}

func mustJSON(t *testing.T, value any) string {
	t.Helper()

	data, err := json.Marshal(value)
	require.NoError(t, err)
	return string(data)
}
