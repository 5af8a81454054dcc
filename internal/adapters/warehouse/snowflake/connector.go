// Package snowflake reads warehouse metering and storage usage from the
// account usage views.
package snowflake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	sf "github.com/snowflakedb/gosnowflake"
)

const (
	DefaultMeteringTable = "SNOWFLAKE.ACCOUNT_USAGE.WAREHOUSE_METERING_HISTORY"
	DefaultStorageTable  = "SNOWFLAKE.ACCOUNT_USAGE.STORAGE_USAGE"

	AuthenticatorExternalBrowser = "externalbrowser"
	AuthenticatorPassword        = "snowflake"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*){0,2}$`)

type Connector struct {
	meteringTable string
	storageTable  string
	open          func(ctx context.Context, cfg *sf.Config) (*sql.DB, error)
}

var _ ports.WarehouseConnector = (*Connector)(nil)

func NewConnector(meteringTable string, storageTable string) (*Connector, error) {
	metering, storage, err := tables(meteringTable, storageTable)
	if err != nil {
		return nil, err
	}

	return &Connector{meteringTable: metering, storageTable: storage, open: openDB}, nil
}

func (c *Connector) Connect(ctx context.Context, credentials domain.WarehouseCredentials) (ports.WarehouseConn, error) {
	cfg, err := BuildConfig(credentials)
	if err != nil {
		return nil, err
	}

	db, err := c.open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to snowflake account %s: %w", cfg.Account, err)
	}

	return &Conn{db: db, meteringTable: c.meteringTable, storageTable: c.storageTable}, nil
}

// BuildConfig maps credentials onto a driver config. An empty authenticator
// means password auth when a password is present, browser SSO otherwise.
func BuildConfig(credentials domain.WarehouseCredentials) (*sf.Config, error) {
	account := NormalizeAccount(credentials.Account)
	user := strings.TrimSpace(credentials.User)
	if account == "" || user == "" {
		return nil, errors.New("snowflake account and user are required")
	}

	cfg := &sf.Config{
		Account:   account,
		User:      user,
		Role:      strings.TrimSpace(credentials.Role),
		Warehouse: strings.TrimSpace(credentials.Warehouse),
	}

	authenticator := strings.ToLower(strings.TrimSpace(credentials.Authenticator))
	if authenticator == "" {
		authenticator = AuthenticatorExternalBrowser
		if credentials.Password != "" {
			authenticator = AuthenticatorPassword
		}
	}

	switch authenticator {
	case AuthenticatorExternalBrowser:
		cfg.Authenticator = sf.AuthTypeExternalBrowser
	case AuthenticatorPassword:
		if credentials.Password == "" {
			return nil, errors.New("snowflake password is required for password authentication")
		}
		cfg.Authenticator = sf.AuthTypeSnowflake
		cfg.Password = credentials.Password
	default:
		return nil, fmt.Errorf("unsupported snowflake authenticator %q", credentials.Authenticator)
	}

	return cfg, nil
}

// NormalizeAccount strips a URL scheme and the snowflakecomputing.com suffix.
func NormalizeAccount(account string) string {
	account = strings.TrimSpace(account)
	if _, rest, found := strings.Cut(account, "://"); found {
		account = rest
	}
	account, _, _ = strings.Cut(account, "/")
	account = strings.TrimSuffix(strings.ToLower(account), ".snowflakecomputing.com")

	return account
}

func openDB(ctx context.Context, cfg *sf.Config) (*sql.DB, error) {
	dsn, err := sf.DSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("build dsn: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func tables(metering string, storage string) (string, string, error) {
	if metering == "" {
		metering = DefaultMeteringTable
	}
	if storage == "" {
		storage = DefaultStorageTable
	}

	var errs []error
	for _, name := range []string{metering, storage} {
		if !tableName.MatchString(name) {
			errs = append(errs, fmt.Errorf("invalid table name %q", name))
		}
	}

	return metering, storage, errors.Join(errs...)
}
