// Package toolserver exposes the Pulse tools, resources and prompts over MCP.
package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/bnema/pulse/internal/config"
	"github.com/bnema/pulse/internal/ports"
	"github.com/bnema/pulse/internal/version"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	Name        = "Pulse"
	instruction = "Pulse answers questions about cloud and warehouse costs, markets, weather and the web. " +
		"Connect to Snowflake before calling the Snowflake cost tools."
)

type Deps struct {
	Config    config.Config
	Weather   ports.WeatherProvider
	Search    []ports.SearchProvider
	Cloud     ports.CloudCostProvider
	Market    ports.MarketDataProvider
	Warehouse ports.WarehouseConnector
	Secrets   ports.SecretStore
	Clock     ports.Clock
	Logger    *zap.Logger
}

type Server struct {
	deps    Deps
	mcp     *server.MCPServer
	started time.Time
	tools   []string

	mu        sync.Mutex
	warehouse *warehouseSession
}

// New builds the MCP server and registers every tool, resource and prompt.
// Providers left nil make their tools answer with an error payload.
func New(deps Deps) *Server {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		deps:    deps,
		started: deps.Clock.Now(),
		mcp: server.NewMCPServer(Name, version.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithPromptCapabilities(false),
			server.WithInstructions(instruction),
			server.WithRecovery(),
		),
	}

	s.registerMathTools()
	s.registerInfoTools()
	s.registerAWSTools()
	s.registerMarketTools()
	s.registerSnowflakeTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ToolNames lists registered tools in registration order.
func (s *Server) ToolNames() []string {
	return append([]string(nil), s.tools...)
}

func (s *Server) ServeStdio() error {
	s.deps.Logger.Info("serving mcp over stdio", zap.Int("tools", len(s.tools)))
	return server.ServeStdio(s.mcp)
}

// ServeHTTP serves the streamable HTTP transport on addr until ctx ends.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp)
	s.deps.Logger.Info("serving mcp over http", zap.String("addr", addr), zap.String("endpoint", "/mcp"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown mcp http server: %w", err)
		}
		return nil
	}
}

// Close drops the warehouse connection, if any.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dropWarehouseLocked()
}

type toolHandler func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error)

func (s *Server) addTool(tool mcp.Tool, handler toolHandler) {
	s.tools = append(s.tools, tool.Name)
	logger := s.deps.Logger.With(zap.String("tool", tool.Name))

	s.mcp.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		started := time.Now()
		result, err := handler(ctx, request.GetArguments())

		fields := []zap.Field{zap.Duration("duration", time.Since(started))}
		switch {
		case err != nil:
			logger.Warn("tool failed", append(fields, zap.Error(err))...)
		case result != nil && result.IsError:
			logger.Info("tool rejected arguments", fields...)
		default:
			logger.Debug("tool completed", fields...)
		}

		return result, err
	})
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// failure is the inline error payload for provider failures.
func failure(err error, extra map[string]any) (*mcp.CallToolResult, error) {
	payload := map[string]any{"success": false, "error": err.Error()}
	for key, value := range extra {
		payload[key] = value
	}
	return jsonResult(payload)
}

func argumentError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

var errProviderMissing = errors.New("provider is not configured")
