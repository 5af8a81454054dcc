// Package mcpclient adapts mcp-go clients to the ToolClient port.
package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"github.com/bnema/pulse/internal/version"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const clientName = "pulse"

// ToolError is a tool result flagged as an error by the server.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tool %s failed", e.Tool)
	}
	return e.Message
}

type Options struct {
	// CallTimeout bounds each tool call; zero leaves calls to the caller's context.
	// Connect calls are never bounded: they may wait on an interactive login.
	CallTimeout time.Duration
	Logger      *zap.Logger
}

type Client struct {
	inner     *client.Client
	transport string
	timeout   time.Duration
	logger    *zap.Logger
}

var _ ports.ToolClient = (*Client)(nil)

// NewInProcess talks to srv without any transport in between.
func NewInProcess(ctx context.Context, srv *server.MCPServer, opts Options) (*Client, error) {
	inner, err := client.NewInProcessClient(srv)
	if err != nil {
		return nil, fmt.Errorf("create in-process mcp client: %w", err)
	}

	return connect(ctx, inner, "inprocess", true, opts)
}

// NewStdio spawns command and speaks MCP over its stdin and stdout.
func NewStdio(ctx context.Context, command string, env []string, opts Options) (*Client, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("server command is empty")
	}

	inner, err := client.NewStdioMCPClient(fields[0], env, fields[1:]...)
	if err != nil {
		return nil, fmt.Errorf("start mcp server %q: %w", fields[0], err)
	}

	// The stdio transport is already running once the process is spawned.
	return connect(ctx, inner, "stdio", false, opts)
}

// NewHTTP connects to a streamable HTTP endpoint such as http://host:8000/mcp.
func NewHTTP(ctx context.Context, url string, opts Options) (*Client, error) {
	inner, err := client.NewStreamableHttpClient(url)
	if err != nil {
		return nil, fmt.Errorf("create mcp http client for %s: %w", url, err)
	}

	return connect(ctx, inner, "http", true, opts)
}

func connect(ctx context.Context, inner *client.Client, transport string, start bool, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if start {
		if err := inner.Start(ctx); err != nil {
			_ = inner.Close()
			return nil, fmt.Errorf("start %s mcp transport: %w", transport, err)
		}
	}

	request := mcp.InitializeRequest{}
	request.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	request.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: version.Version}

	initialized, err := inner.Initialize(ctx, request)
	if err != nil {
		_ = inner.Close()
		return nil, fmt.Errorf("initialize %s mcp session: %w", transport, err)
	}

	logger.Debug("connected to tool server",
		zap.String("transport", transport),
		zap.String("server", initialized.ServerInfo.Name),
		zap.String("server_version", initialized.ServerInfo.Version),
	)

	return &Client{inner: inner, transport: transport, timeout: opts.CallTimeout, logger: logger}, nil
}

func (c *Client) Transport() string {
	return c.transport
}

// ListCapabilities pages through the advertised tools. Categories are
// inferred from the tool names.
func (c *Client) ListCapabilities(ctx context.Context) ([]domain.CapabilityDescriptor, error) {
	var (
		descriptors []domain.CapabilityDescriptor
		request     mcp.ListToolsRequest
	)

	for {
		result, err := c.inner.ListTools(ctx, request)
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}

		for _, tool := range result.Tools {
			schema, err := schemaMap(tool.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("tool %s: %w", tool.Name, err)
			}
			descriptors = append(descriptors, domain.CapabilityDescriptor{
				Name:            tool.Name,
				Description:     tool.Description,
				Category:        domain.CategoryForName(tool.Name),
				ParameterSchema: schema,
			})
		}

		if result.NextCursor == "" {
			return descriptors, nil
		}
		request.Params.Cursor = result.NextCursor
	}
}

func schemaMap(schema mcp.ToolInputSchema) (map[string]any, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode input schema: %w", err)
	}

	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode input schema: %w", err)
	}
	return out, nil
}

// CallTool returns the result content as text envelopes. Results the server
// flags as errors come back as *ToolError.
func (c *Client) CallTool(ctx context.Context, name string, params map[string]any) (any, error) {
	if c.timeout > 0 && !domain.IsConnectCapability(name) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = params

	result, err := c.inner.CallTool(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("call tool %s: %w", name, err)
	}

	envelopes := Envelopes(result.Content)
	if result.IsError {
		return nil, &ToolError{Tool: name, Message: joinText(envelopes)}
	}
	return envelopes, nil
}

func (c *Client) Close() error {
	return c.inner.Close()
}

// Envelopes keeps text items verbatim and records other content by type only.
func Envelopes(content []mcp.Content) []domain.TextEnvelope {
	envelopes := make([]domain.TextEnvelope, 0, len(content))
	for _, item := range content {
		switch c := item.(type) {
		case mcp.TextContent:
			envelopes = append(envelopes, domain.TextEnvelope{Type: c.Type, Text: c.Text})
		case *mcp.TextContent:
			envelopes = append(envelopes, domain.TextEnvelope{Type: c.Type, Text: c.Text})
		case mcp.ImageContent:
			envelopes = append(envelopes, domain.TextEnvelope{Type: c.Type})
		case mcp.EmbeddedResource:
			envelopes = append(envelopes, domain.TextEnvelope{Type: c.Type})
		default:
			envelopes = append(envelopes, domain.TextEnvelope{Type: fmt.Sprintf("%T", item)})
		}
	}
	return envelopes
}

func joinText(envelopes []domain.TextEnvelope) string {
	parts := make([]string, 0, len(envelopes))
	for _, envelope := range envelopes {
		if envelope.Text != "" {
			parts = append(parts, envelope.Text)
		}
	}
	return strings.Join(parts, "\n")
}
