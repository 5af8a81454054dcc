package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/pulse/internal/adapters/prompt"
	"github.com/spf13/cobra"
)

func newSecretCmd(verbose *bool) *cobra.Command {
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets in pass with a file fallback",
	}

	var value string
	setCmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a secret, for example snowflake/password",
		Long: "set stores a secret under key. Point snowflake.password_ref at the key " +
			"to let auto-connect use it. Without --value the secret is read without echo.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if key == "" {
				return errors.New("secret key is required")
			}

			app, err := wireApp(wireOptions{stderr: cmd.ErrOrStderr(), verbose: *verbose})
			if err != nil {
				return err
			}

			secret := value
			if !cmd.Flags().Changed("value") {
				terminal := prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
				secret, err = terminal.PromptSecret(cmd.Context(), fmt.Sprintf("Secret for %s: ", key))
				if err != nil {
					return err
				}
			}
			if secret == "" {
				return fmt.Errorf("secret value for %s is empty", key)
			}

			if err := app.secrets.Put(cmd.Context(), key, secret); err != nil {
				return fmt.Errorf("store secret %s: %w", key, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored secret %s\n", key)
			return err
		},
	}
	setCmd.Flags().StringVar(&value, "value", "", "secret value (prompted when omitted)")

	secretCmd.AddCommand(setCmd)
	return secretCmd
}
