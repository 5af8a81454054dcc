package ports

import "context"

// Prompter asks the operator for input. Implementations return
// domain.ErrPromptAborted when the input stream is closed.
type Prompter interface {
	Prompt(ctx context.Context, label string) (string, error)
	PromptSecret(ctx context.Context, label string) (string, error)
	Notify(message string)
}
