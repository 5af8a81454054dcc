package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
)

const bytesPerGB = 1 << 30

// Conn runs usage queries over an open connection. Any driver that accepts
// ? placeholders works.
type Conn struct {
	db            *sql.DB
	meteringTable string
	storageTable  string
}

var _ ports.WarehouseConn = (*Conn)(nil)

func NewConn(db *sql.DB, meteringTable string, storageTable string) (*Conn, error) {
	metering, storage, err := tables(meteringTable, storageTable)
	if err != nil {
		return nil, err
	}

	return &Conn{db: db, meteringTable: metering, storageTable: storage}, nil
}

func (c *Conn) ComputeUsage(ctx context.Context, start, end time.Time) (domain.ComputeUsage, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(CREDITS_USED), 0), COUNT(DISTINCT WAREHOUSE_NAME), COUNT(*)
FROM %s
WHERE START_TIME >= ? AND START_TIME < ?`, c.meteringTable)

	var usage domain.ComputeUsage
	if err := c.db.QueryRowContext(ctx, query, start.UTC(), end.UTC()).Scan(&usage.Credits, &usage.Warehouses, &usage.Samples); err != nil {
		return domain.ComputeUsage{}, fmt.Errorf("query compute usage: %w", err)
	}

	return usage, nil
}

func (c *Conn) TopWarehouses(ctx context.Context, start, end time.Time, limit int) ([]domain.WarehouseUsage, error) {
	if limit <= 0 {
		limit = 5
	}

	query := fmt.Sprintf(`SELECT WAREHOUSE_NAME,
       SUM(CREDITS_USED) AS TOTAL_CREDITS,
       COUNT(*),
       AVG(CREDITS_USED),
       MAX(CREDITS_USED),
       MIN(START_TIME),
       MAX(START_TIME)
FROM %s
WHERE START_TIME >= ? AND START_TIME < ?
GROUP BY WAREHOUSE_NAME
ORDER BY TOTAL_CREDITS DESC
LIMIT ?`, c.meteringTable)

	rows, err := c.db.QueryContext(ctx, query, start.UTC(), end.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query top warehouses: %w", err)
	}
	defer rows.Close()

	var usage []domain.WarehouseUsage
	for rows.Next() {
		var (
			row         domain.WarehouseUsage
			first, last flexTime
		)
		if err := rows.Scan(&row.Name, &row.Credits, &row.Samples, &row.AvgCredits, &row.MaxCredits, &first, &last); err != nil {
			return nil, fmt.Errorf("scan warehouse usage: %w", err)
		}
		row.FirstUsage = first.Time
		row.LastUsage = last.Time
		usage = append(usage, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read warehouse usage: %w", err)
	}

	return usage, nil
}

func (c *Conn) StorageUsage(ctx context.Context, start, end time.Time) (domain.StorageUsage, error) {
	query := fmt.Sprintf(`SELECT COALESCE(AVG(STORAGE_BYTES), 0), COALESCE(AVG(STAGE_BYTES), 0), COALESCE(AVG(FAILSAFE_BYTES), 0)
FROM %s
WHERE USAGE_DATE >= ? AND USAGE_DATE < ?`, c.storageTable)

	var storage, stage, failsafe float64
	if err := c.db.QueryRowContext(ctx, query, start.UTC(), end.UTC()).Scan(&storage, &stage, &failsafe); err != nil {
		return domain.StorageUsage{}, fmt.Errorf("query storage usage: %w", err)
	}

	return domain.StorageUsage{
		StorageGB:  storage / bytesPerGB,
		StageGB:    stage / bytesPerGB,
		FailsafeGB: failsafe / bytesPerGB,
	}, nil
}

func (c *Conn) Close() error {
	return c.db.Close()
}

// flexTime scans timestamps that drivers return either as time.Time or as
// text, which happens for aggregated columns.
type flexTime struct {
	time.Time
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *flexTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", value)
	}
}

func (t *flexTime) parse(text string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q", text)
}
