package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/pulse/internal/adapters/cloud/awscost"
	"github.com/bnema/pulse/internal/adapters/httpapi"
	"github.com/bnema/pulse/internal/adapters/market/yahoo"
	"github.com/bnema/pulse/internal/adapters/mcpclient"
	"github.com/bnema/pulse/internal/adapters/render/report"
	tomlrepo "github.com/bnema/pulse/internal/adapters/repo/toml"
	"github.com/bnema/pulse/internal/adapters/search/duckduckgo"
	openaisearch "github.com/bnema/pulse/internal/adapters/search/openai"
	chainstore "github.com/bnema/pulse/internal/adapters/secrets/chain"
	"github.com/bnema/pulse/internal/adapters/session/memory"
	"github.com/bnema/pulse/internal/adapters/warehouse/snowflake"
	"github.com/bnema/pulse/internal/adapters/weather/openweather"
	"github.com/bnema/pulse/internal/application"
	"github.com/bnema/pulse/internal/config"
	"github.com/bnema/pulse/internal/logging"
	"github.com/bnema/pulse/internal/ports"
	"github.com/bnema/pulse/internal/toolserver"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	cfg       config.Config
	logger    *zap.Logger
	secrets   ports.SecretStore
	catalog   ports.CapabilityCatalog
	formatter *report.Formatter
	clock     ports.Clock
}

type wireOptions struct {
	stderr    io.Writer
	verbose   bool
	logLevel  string
	serverCmd string
	serverURL string
	overrides map[string]any
}

func wireApp(opts wireOptions) (*app, error) {
	v := viper.New()
	for key, value := range opts.overrides {
		v.Set(key, value)
	}
	if opts.serverCmd != "" {
		v.Set("client.command", opts.serverCmd)
	}
	if opts.serverURL != "" {
		v.Set("client.url", opts.serverURL)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, opts.stderr)
	if err != nil {
		return nil, err
	}

	catalog, err := tomlrepo.NewCatalog(v)
	if err != nil {
		return nil, fmt.Errorf("wire capability catalog: %w", err)
	}

	secrets, err := chainstore.NewPassFirstWithFileFallback(cfg.Secrets.Dir)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		secrets:   secrets,
		catalog:   catalog,
		formatter: report.NewFormatter(),
		clock:     ports.SystemClock{},
	}, nil
}

// toolServer builds the MCP server over the live providers.
func (a *app) toolServer() (*toolserver.Server, error) {
	cfg := a.cfg
	httpClient := httpapi.Client{RequestTimeout: cfg.Client.Timeout}

	search := []ports.SearchProvider{
		&duckduckgo.InstantAnswer{BaseURL: cfg.Search.DuckDuckGoURL, HTTP: httpClient},
		&duckduckgo.HTML{BaseURL: cfg.Search.DuckDuckGoHTMLURL, HTTP: httpClient},
	}
	if ai := openaisearch.NewProvider(cfg.Search.OpenAIKey, cfg.Search.OpenAIBaseURL, cfg.Search.OpenAIModel); ai != nil {
		search = append(search, ai)
	}

	warehouse, err := snowflake.NewConnector(cfg.Snowflake.MeteringTable, cfg.Snowflake.StorageTable)
	if err != nil {
		return nil, fmt.Errorf("wire snowflake connector: %w", err)
	}

	return toolserver.New(toolserver.Deps{
		Config:    cfg,
		Weather:   &openweather.Client{APIKey: cfg.Weather.APIKey, BaseURL: cfg.Weather.BaseURL, HTTP: httpClient},
		Search:    search,
		Cloud:     awscost.NewExplorer(cfg.AWS.ConfigFile, cfg.AWS.CredentialsFile, cfg.AWS.Region),
		Market:    &yahoo.Client{BaseURL: cfg.Market.BaseURL, HTTP: httpClient, Concurrency: cfg.Market.Concurrency},
		Warehouse: warehouse,
		Secrets:   a.secrets,
		Clock:     a.clock,
		Logger:    a.logger.Named("toolserver"),
	}), nil
}

type agentSession struct {
	agent  *application.Agent
	client ports.ToolClient
	closer func() error
}

func (s *agentSession) Close() error {
	if s == nil {
		return nil
	}
	err := s.client.Close()
	if s.closer != nil {
		if closeErr := s.closer(); err == nil {
			err = closeErr
		}
	}
	return err
}

// serverTarget names the tool server dial will reach, for progress output.
func (a *app) serverTarget() string {
	switch {
	case a.cfg.Client.Command != "":
		return "stdio server " + a.cfg.Client.Command
	case a.cfg.Client.URL != "":
		return a.cfg.Client.URL
	default:
		return "in-process tool server"
	}
}

func readySummary(tools int, target string) string {
	if tools == 1 {
		return fmt.Sprintf("1 tool ready on %s", target)
	}
	return fmt.Sprintf("%d tools ready on %s", tools, target)
}

// dial picks the tool server: an explicit command or URL, else the embedded one.
func (a *app) dial(ctx context.Context) (ports.ToolClient, func() error, error) {
	opts := mcpclient.Options{CallTimeout: a.cfg.Client.Timeout, Logger: a.logger.Named("mcp")}

	switch {
	case a.cfg.Client.Command != "":
		client, err := mcpclient.NewStdio(ctx, a.cfg.Client.Command, nil, opts)
		return client, nil, err
	case a.cfg.Client.URL != "":
		client, err := mcpclient.NewHTTP(ctx, a.cfg.Client.URL, opts)
		return client, nil, err
	}

	srv, err := a.toolServer()
	if err != nil {
		return nil, nil, err
	}
	client, err := mcpclient.NewInProcess(ctx, srv.MCP(), opts)
	if err != nil {
		_ = srv.Close()
		return nil, nil, err
	}
	return client, srv.Close, nil
}

func (a *app) openAgent(ctx context.Context, prompter ports.Prompter) (*agentSession, error) {
	client, closer, err := a.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to tool server: %w", err)
	}
	session := &agentSession{client: client, closer: closer}

	registry, err := application.DiscoverRegistry(ctx, client, a.catalog, a.logger)
	if err != nil {
		_ = session.Close()
		return nil, err
	}

	executor := application.NewExecutor(client, a.logger)
	sessions := application.NewSessionManager(memory.NewStore(), executor, prompter, a.clock, a.logger).
		WithTTL(a.cfg.Snowflake.SessionTTL)

	session.agent = application.NewAgent(application.AgentConfig{
		Registry:  registry,
		Invoker:   executor,
		Sessions:  sessions,
		Formatter: a.formatter,
		Clock:     a.clock,
		Logger:    a.logger,
	})

	return session, nil
}
