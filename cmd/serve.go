package cmd

import (
	"fmt"

	"github.com/bnema/pulse/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(verbose *bool) *cobra.Command {
	var (
		transport string
		host      string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Pulse tools over MCP",
		Long: "serve exposes the tools, resources and prompts over MCP. " +
			"auto picks http when a port is configured and stdio otherwise.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			if cmd.Flags().Changed("transport") {
				switch transport {
				case config.TransportStdio, config.TransportHTTP, config.TransportAuto:
				default:
					return fmt.Errorf("unsupported transport %q (want stdio, http or auto)", transport)
				}
				overrides["server.transport"] = transport
			}
			if cmd.Flags().Changed("host") {
				overrides["server.host"] = host
			}
			if cmd.Flags().Changed("port") {
				overrides["server.port"] = port
			}

			app, err := wireApp(wireOptions{
				stderr:    cmd.ErrOrStderr(),
				verbose:   *verbose,
				logLevel:  "info",
				overrides: overrides,
			})
			if err != nil {
				return err
			}
			defer func() { _ = app.logger.Sync() }()

			srv, err := app.toolServer()
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			mode := app.cfg.Server.ResolvedTransport()
			app.logger.Info("starting tool server",
				zap.String("transport", mode),
				zap.Int("tools", len(srv.ToolNames())),
			)

			if mode == config.TransportHTTP {
				addr := app.cfg.Server.Addr()
				app.logger.Info("listening", zap.String("addr", addr), zap.String("endpoint", "/mcp"))
				return srv.ServeHTTP(cmd.Context(), addr)
			}

			return srv.ServeStdio()
		},
	}

	cmd.Flags().StringVar(&transport, "transport", config.TransportAuto, "stdio, http or auto")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "http listen host")
	cmd.Flags().IntVar(&port, "port", 0, "http listen port (selects http under auto)")

	return cmd
}
