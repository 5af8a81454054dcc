package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/pulse/internal/adapters/prompt"
	"github.com/bnema/pulse/internal/domain"
)

const (
	interactiveBanner = "🚀 Pulse Agent\n" +
		"Ask about Snowflake or AWS costs, stocks, crypto, weather, math or the web.\n" +
		"Type 'help' for examples, 'tools' for the tool list, 'quit' to leave."
	goodbyeMessage = "👋 Goodbye!"
)

func runInteractive(ctx context.Context, out io.Writer, app *app, session *agentSession, terminal *prompt.Terminal) error {
	agent := session.agent
	fmt.Fprintf(out, "%s\n%d tools available (%s registry).\n", interactiveBanner,
		agent.Capabilities().Len(), agent.Capabilities().Source())

	for {
		line, err := terminal.Prompt(ctx, "\n💬 You: ")
		if err != nil {
			if errors.Is(err, domain.ErrPromptAborted) || ctx.Err() != nil {
				fmt.Fprintln(out, "\n"+goodbyeMessage)
				return nil
			}
			return err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "quit", "exit", "bye":
			fmt.Fprintln(out, goodbyeMessage)
			return nil
		case "help":
			fmt.Fprintln(out, app.formatter.Help())
		case "tools":
			fmt.Fprintln(out, app.formatter.Tools(agent.Capabilities().Grouped()))
		case "history":
			fmt.Fprintln(out, app.formatter.History(agent.History()))
		case "session", "status":
			fmt.Fprintln(out, app.formatter.Session(agent.SessionStatus(ctx)))
		case "clear":
			if err := agent.ClearSession(ctx); err != nil {
				fmt.Fprintf(out, "❌ Could not clear the Snowflake session: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "🧹 Snowflake session cleared.")
		default:
			answer, err := agent.HandleQuestion(ctx, line)
			if err != nil {
				if ctx.Err() != nil {
					fmt.Fprintln(out, "\n"+goodbyeMessage)
					return nil
				}
				fmt.Fprintf(out, "❌ %v\n", err)
				continue
			}
			fmt.Fprintf(out, "\n🤖 Agent:\n%s\n", answer)
		}
	}
}
