package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	question  string
	listTools bool
	serverCmd string
	serverURL string
	verbose   bool
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	rootCmd := &cobra.Command{
		Use:   "pulse",
		Short: "Pulse: ask about cloud costs, markets, weather and more",
		Long: "pulse routes plain-language questions to MCP tools covering Snowflake and AWS costs, " +
			"stock and crypto markets, weather, arithmetic and web search. Without flags it starts an interactive session.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(wireOptions{
				stderr:    cmd.ErrOrStderr(),
				verbose:   opts.verbose,
				serverCmd: opts.serverCmd,
				serverURL: opts.serverURL,
			})
			if err != nil {
				return err
			}

			return runAgent(cmd, app, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.question, "question", "q", "", "answer a single question and exit")
	flags.BoolVar(&opts.listTools, "list-tools", false, "list the available tools and exit")
	flags.StringVar(&opts.serverCmd, "server-cmd", "", "spawn this MCP server command and talk to it over stdio")
	flags.StringVar(&opts.serverURL, "server-url", "", "connect to a streamable HTTP MCP server, for example http://127.0.0.1:8000/mcp")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.MarkFlagsMutuallyExclusive("server-cmd", "server-url")
	rootCmd.MarkFlagsMutuallyExclusive("question", "list-tools")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(&opts.verbose),
		newSecretCmd(&opts.verbose),
	)

	return rootCmd
}
