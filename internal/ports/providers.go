package ports

import (
	"context"
	"time"

	"github.com/bnema/pulse/internal/domain"
)

type WeatherProvider interface {
	Current(ctx context.Context, city string, units string) (domain.WeatherReport, error)
}

type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error)
}

type CloudCostProvider interface {
	Profiles(ctx context.Context) ([]domain.CloudProfile, error)
	CostByService(ctx context.Context, profile string, start, end time.Time) (domain.CloudCostReport, error)
}

// MarketDataProvider serves quotes, fundamentals and price history. The
// batch methods return what they could fetch plus one error per failed symbol.
type MarketDataProvider interface {
	Quote(ctx context.Context, symbol string) (domain.Quote, error)
	Quotes(ctx context.Context, symbols []string) (map[string]domain.Quote, map[string]error)
	Fundamentals(ctx context.Context, symbols []string) (map[string]domain.Fundamentals, map[string]error)
	History(ctx context.Context, symbol string, period string, interval string) ([]domain.Bar, error)
}

type WarehouseConnector interface {
	Connect(ctx context.Context, credentials domain.WarehouseCredentials) (WarehouseConn, error)
}

// WarehouseConn reads account usage over the half-open range [start, end).
type WarehouseConn interface {
	ComputeUsage(ctx context.Context, start, end time.Time) (domain.ComputeUsage, error)
	TopWarehouses(ctx context.Context, start, end time.Time, limit int) ([]domain.WarehouseUsage, error)
	StorageUsage(ctx context.Context, start, end time.Time) (domain.StorageUsage, error)
	Close() error
}
