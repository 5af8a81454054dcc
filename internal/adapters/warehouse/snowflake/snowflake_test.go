package snowflake

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/bnema/pulse/internal/domain"
	_ "github.com/mattn/go-sqlite3"
	sf "github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

func newUsageDB(t *testing.T) *Conn {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metering (WAREHOUSE_NAME TEXT, START_TIME TIMESTAMP, CREDITS_USED REAL);
CREATE TABLE storage (USAGE_DATE TIMESTAMP, STORAGE_BYTES REAL, STAGE_BYTES REAL, FAILSAFE_BYTES REAL);`)
	require.NoError(t, err)

	metering := []struct {
		name    string
		at      time.Time
		credits float64
	}{
		{"ETL_WH", day, 10},
		{"ETL_WH", day.Add(time.Hour), 30},
		{"BI_WH", day.Add(2 * time.Hour), 5},
		{"ADHOC_WH", day.Add(3 * time.Hour), 1},
		{"OLD_WH", day.AddDate(0, -3, 0), 999},
	}
	for _, row := range metering {
		_, err := db.Exec(`INSERT INTO metering VALUES (?, ?, ?)`, row.name, row.at, row.credits)
		require.NoError(t, err)
	}
	for i, gb := range []float64{100, 300} {
		_, err := db.Exec(`INSERT INTO storage VALUES (?, ?, ?, ?)`, day.AddDate(0, 0, i), gb*bytesPerGB, 2*bytesPerGB, bytesPerGB)
		require.NoError(t, err)
	}

	conn, err := NewConn(db, "metering", "storage")
	require.NoError(t, err)
	return conn
}

func TestComputeUsage(t *testing.T) {
	t.Parallel()

	conn := newUsageDB(t)
	usage, err := conn.ComputeUsage(context.Background(), day.AddDate(0, 0, -30), day.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.InDelta(t, 46.0, usage.Credits, 1e-9)
	assert.Equal(t, int64(3), usage.Warehouses)
	assert.Equal(t, int64(4), usage.Samples)
}

func TestComputeUsageEmptyRange(t *testing.T) {
	t.Parallel()

	conn := newUsageDB(t)
	usage, err := conn.ComputeUsage(context.Background(), day.AddDate(1, 0, 0), day.AddDate(1, 1, 0))
	require.NoError(t, err)
	assert.Zero(t, usage.Credits)
}

func TestTopWarehousesOrdersByCredits(t *testing.T) {
	t.Parallel()

	conn := newUsageDB(t)
	usage, err := conn.TopWarehouses(context.Background(), day.AddDate(0, 0, -30), day.AddDate(0, 0, 1), 2)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	assert.Equal(t, "ETL_WH", usage[0].Name)
	assert.InDelta(t, 40.0, usage[0].Credits, 1e-9)
	assert.Equal(t, int64(2), usage[0].Samples)
	assert.InDelta(t, 20.0, usage[0].AvgCredits, 1e-9)
	assert.InDelta(t, 30.0, usage[0].MaxCredits, 1e-9)
	assert.True(t, usage[0].FirstUsage.Equal(day))
	assert.True(t, usage[0].LastUsage.Equal(day.Add(time.Hour)))
	assert.Equal(t, "BI_WH", usage[1].Name)
}

func TestStorageUsageAveragesBytes(t *testing.T) {
	t.Parallel()

	conn := newUsageDB(t)
	storage, err := conn.StorageUsage(context.Background(), day.AddDate(0, 0, -30), day.AddDate(0, 0, 5))
	require.NoError(t, err)

	assert.InDelta(t, 200.0, storage.StorageGB, 1e-9)
	assert.InDelta(t, 2.0, storage.StageGB, 1e-9)
	assert.InDelta(t, 1.0, storage.FailsafeGB, 1e-9)
	assert.InDelta(t, 203.0, storage.TotalGB(), 1e-9)
}

func TestNewConnRejectsUnsafeTableNames(t *testing.T) {
	t.Parallel()

	_, err := NewConn(nil, "usage; DROP TABLE x", "")
	assert.ErrorContains(t, err, "invalid table name")
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		creds    domain.WarehouseCredentials
		wantAuth sf.AuthType
		wantErr  string
	}{
		{
			name:     "browser by default",
			creds:    domain.WarehouseCredentials{Account: "https://xy12345.eu-west-1.snowflakecomputing.com/", User: "jane"},
			wantAuth: sf.AuthTypeExternalBrowser,
		},
		{
			name:     "password implies snowflake auth",
			creds:    domain.WarehouseCredentials{Account: "xy12345", User: "jane", Password: "pw", Role: "ANALYST"},
			wantAuth: sf.AuthTypeSnowflake,
		},
		{
			name:    "password auth needs a password",
			creds:   domain.WarehouseCredentials{Account: "xy12345", User: "jane", Authenticator: "snowflake"},
			wantErr: "password is required",
		},
		{
			name:    "unknown authenticator",
			creds:   domain.WarehouseCredentials{Account: "xy12345", User: "jane", Authenticator: "okta-ish"},
			wantErr: "unsupported snowflake authenticator",
		},
		{
			name:    "missing user",
			creds:   domain.WarehouseCredentials{Account: "xy12345"},
			wantErr: "account and user are required",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := BuildConfig(tc.creds)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantAuth, cfg.Authenticator)
			assert.Equal(t, "jane", cfg.User)
		})
	}
}

func TestNormalizeAccount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "xy12345.eu-west-1", NormalizeAccount("https://XY12345.eu-west-1.snowflakecomputing.com/console"))
	assert.Equal(t, "myorg-acct", NormalizeAccount(" myorg-acct "))
}

func TestConnectWrapsOpenErrors(t *testing.T) {
	t.Parallel()

	connector, err := NewConnector("", "")
	require.NoError(t, err)
	connector.open = func(context.Context, *sf.Config) (*sql.DB, error) {
		return nil, errors.New("390100: incorrect username or password")
	}

	_, err = connector.Connect(context.Background(), domain.WarehouseCredentials{Account: "acct", User: "jane", Password: "x"})
	assert.ErrorContains(t, err, "connect to snowflake account acct")
	assert.ErrorContains(t, err, "incorrect username")
}
