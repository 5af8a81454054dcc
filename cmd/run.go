package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/pulse/internal/adapters/prompt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runAgent(cmd *cobra.Command, app *app, opts rootOptions) error {
	ctx := cmd.Context()
	defer func() { _ = app.logger.Sync() }()

	terminal := prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())

	var session *agentSession
	target := app.serverTarget()
	err := runConnectSpinner(ctx, cmd.ErrOrStderr(), "Connecting to "+target+"...", func(ctx context.Context) (string, error) {
		var err error
		session, err = app.openAgent(ctx, terminal)
		if err != nil {
			return "", err
		}
		return readySummary(session.agent.Capabilities().Len(), target), nil
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			app.logger.Debug("close tool client", zap.Error(err))
		}
	}()

	out := cmd.OutOrStdout()
	switch {
	case opts.listTools:
		_, err := fmt.Fprintln(out, app.formatter.Tools(session.agent.Capabilities().Grouped()))
		return err
	case opts.question != "":
		answer, err := session.agent.HandleQuestion(ctx, opts.question)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, answer)
		return err
	default:
		return runInteractive(ctx, out, app, session, terminal)
	}
}
