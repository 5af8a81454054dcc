package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/pulse/internal/logging"
	"github.com/spf13/viper"
)

const (
	envPrefix   = "PULSE"
	defaultPort = 8000

	TransportStdio = "stdio"
	TransportHTTP  = "http"
	TransportAuto  = "auto"
)

type Config struct {
	LogLevel  string
	Server    ServerConfig
	Client    ClientConfig
	Weather   WeatherConfig
	Search    SearchConfig
	AWS       AWSConfig
	Snowflake SnowflakeConfig
	Market    MarketConfig
	Secrets   SecretsConfig
}

type ServerConfig struct {
	Transport string
	Host      string
	// Port is zero when no port was configured.
	Port int
}

type ClientConfig struct {
	Command string
	URL     string
	Timeout time.Duration
}

type WeatherConfig struct {
	APIKey  string
	BaseURL string
	Units   string
}

type SearchConfig struct {
	DuckDuckGoURL     string
	DuckDuckGoHTMLURL string
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIModel       string
}

type AWSConfig struct {
	ConfigFile      string
	CredentialsFile string
	Region          string
}

type SnowflakeConfig struct {
	Account       string
	User          string
	Password      string
	PasswordRef   string
	Authenticator string
	Role          string
	Warehouse     string
	CreditPrice   float64
	StoragePrice  float64
	MeteringTable string
	StorageTable  string
	SessionTTL    time.Duration
}

type MarketConfig struct {
	BaseURL     string
	Concurrency int
}

type SecretsConfig struct {
	Dir string
}

// legacyEnv maps keys to the unprefixed variables older deployments export.
// Every other key is read from PULSE_<SECTION>_<NAME>.
var legacyEnv = map[string][]string{
	"weather.api_key":             {"OPENWEATHER_API_KEY"},
	"search.openai_key":           {"OPENAI_API_KEY"},
	"snowflake.account":           {"SNOWFLAKE_ACCOUNT"},
	"snowflake.user":              {"SNOWFLAKE_USER"},
	"snowflake.password":          {"SNOWFLAKE_PASSWORD"},
	"snowflake.password_ref":      {"SNOWFLAKE_PASSWORD_REF"},
	"snowflake.authenticator":     {"SNOWFLAKE_AUTHENTICATOR"},
	"snowflake.role":              {"SNOWFLAKE_ROLE"},
	"snowflake.warehouse":         {"SNOWFLAKE_WAREHOUSE"},
	"server.transport":            {"MCP_TRANSPORT"},
	"server.host":                 {"MCP_HOST"},
	"server.port":                 {"MCP_PORT"},
	"aws.config_file":             {"AWS_CONFIG_FILE"},
	"aws.shared_credentials_file": {"AWS_SHARED_CREDENTIALS_FILE"},
	"aws.region":                  {"AWS_REGION", "AWS_DEFAULT_REGION"},
}

func setDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("server.transport", TransportAuto)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("weather.units", "metric")
	v.SetDefault("search.duckduckgo_url", "https://api.duckduckgo.com/")
	v.SetDefault("search.duckduckgo_html_url", "https://html.duckduckgo.com/html/")
	v.SetDefault("search.openai_model", "gpt-4o-mini")
	v.SetDefault("aws.config_file", filepath.Join(homeDir, ".aws", "config"))
	v.SetDefault("aws.shared_credentials_file", filepath.Join(homeDir, ".aws", "credentials"))
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("snowflake.authenticator", "externalbrowser")
	v.SetDefault("snowflake.credit_price", 2.0)
	v.SetDefault("snowflake.storage_price_per_gb", 0.023)
	v.SetDefault("snowflake.session_ttl", 4*time.Hour)
	v.SetDefault("snowflake.metering_table", "SNOWFLAKE.ACCOUNT_USAGE.WAREHOUSE_METERING_HISTORY")
	v.SetDefault("snowflake.storage_table", "SNOWFLAKE.ACCOUNT_USAGE.STORAGE_USAGE")
	v.SetDefault("market.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("market.concurrency", 4)
	v.SetDefault("secrets.dir", filepath.Join(homeDir, ".config", "pulse", "secrets"))
}

// Load reads the optional config file and the environment into v and returns
// the validated settings. Keys already set on v take precedence.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	setDefaults(v, homeDir)
	if err := bindEnv(v); err != nil {
		return Config{}, err
	}
	if err := readConfigFile(v, homeDir); err != nil {
		return Config{}, err
	}

	cfg := Config{
		LogLevel: v.GetString("log.level"),
		Server: ServerConfig{
			Transport: strings.ToLower(strings.TrimSpace(v.GetString("server.transport"))),
			Host:      v.GetString("server.host"),
			Port:      v.GetInt("server.port"),
		},
		Client: ClientConfig{
			Command: v.GetString("client.command"),
			URL:     v.GetString("client.url"),
			Timeout: v.GetDuration("client.timeout"),
		},
		Weather: WeatherConfig{
			APIKey:  v.GetString("weather.api_key"),
			BaseURL: v.GetString("weather.base_url"),
			Units:   v.GetString("weather.units"),
		},
		Search: SearchConfig{
			DuckDuckGoURL:     v.GetString("search.duckduckgo_url"),
			DuckDuckGoHTMLURL: v.GetString("search.duckduckgo_html_url"),
			OpenAIKey:         v.GetString("search.openai_key"),
			OpenAIBaseURL:     v.GetString("search.openai_base_url"),
			OpenAIModel:       v.GetString("search.openai_model"),
		},
		AWS: AWSConfig{
			ConfigFile:      v.GetString("aws.config_file"),
			CredentialsFile: v.GetString("aws.shared_credentials_file"),
			Region:          v.GetString("aws.region"),
		},
		Snowflake: SnowflakeConfig{
			Account:       v.GetString("snowflake.account"),
			User:          v.GetString("snowflake.user"),
			Password:      v.GetString("snowflake.password"),
			PasswordRef:   v.GetString("snowflake.password_ref"),
			Authenticator: v.GetString("snowflake.authenticator"),
			Role:          v.GetString("snowflake.role"),
			Warehouse:     v.GetString("snowflake.warehouse"),
			CreditPrice:   v.GetFloat64("snowflake.credit_price"),
			StoragePrice:  v.GetFloat64("snowflake.storage_price_per_gb"),
			MeteringTable: v.GetString("snowflake.metering_table"),
			StorageTable:  v.GetString("snowflake.storage_table"),
			SessionTTL:    v.GetDuration("snowflake.session_ttl"),
		},
		Market: MarketConfig{
			BaseURL:     v.GetString("market.base_url"),
			Concurrency: v.GetInt("market.concurrency"),
		},
		Secrets: SecretsConfig{
			Dir: v.GetString("secrets.dir"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP, TransportAuto:
	default:
		errs = append(errs, fmt.Errorf("unsupported transport %q (want stdio, http or auto)", c.Server.Transport))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Server.Port))
	}
	if c.Snowflake.CreditPrice <= 0 {
		errs = append(errs, fmt.Errorf("snowflake credit price must be positive, got %v", c.Snowflake.CreditPrice))
	}
	if c.Snowflake.StoragePrice < 0 {
		errs = append(errs, fmt.Errorf("snowflake storage price must not be negative, got %v", c.Snowflake.StoragePrice))
	}
	if c.Market.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("market concurrency must be at least 1, got %d", c.Market.Concurrency))
	}
	if c.Client.Command != "" && c.Client.URL != "" {
		errs = append(errs, errors.New("client.command and client.url are mutually exclusive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	return nil
}

// ResolvedTransport resolves auto: a configured port selects http, else stdio.
func (s ServerConfig) ResolvedTransport() string {
	if s.Transport != TransportAuto {
		return s.Transport
	}
	if s.Port > 0 {
		return TransportHTTP
	}

	return TransportStdio
}

func (s ServerConfig) Addr() string {
	port := s.Port
	if port == 0 {
		port = defaultPort
	}

	return net.JoinHostPort(s.Host, strconv.Itoa(port))
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		names := append([]string{envName(key)}, legacy...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	return nil
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func readConfigFile(v *viper.Viper, homeDir string) error {
	path := strings.TrimSpace(os.Getenv(envPrefix + "_CONFIG"))
	if path == "" {
		path = DefaultPath(homeDir)
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	return nil
}

// DefaultPath honours XDG_CONFIG_HOME and falls back to ~/.config.
func DefaultPath(homeDir string) string {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		base = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(base, "pulse", "config.toml")
}
