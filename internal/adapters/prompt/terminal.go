// Package prompt reads operator input from a terminal or any line stream.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"golang.org/x/term"
)

// Terminal prompts on out and reads lines from in. Secrets are read without
// echo when in is a terminal; otherwise they are read like any other line.
type Terminal struct {
	mu       sync.Mutex
	reader   *bufio.Reader
	out      io.Writer
	secretFd int
	hidden   bool

	readPassword func(fd int) ([]byte, error)
}

var _ ports.Prompter = (*Terminal)(nil)

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{
		reader:       bufio.NewReader(in),
		out:          out,
		readPassword: term.ReadPassword,
	}
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		t.secretFd = int(file.Fd())
		t.hidden = true
	}

	return t
}

func (t *Terminal) Prompt(ctx context.Context, label string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, _ = fmt.Fprint(t.out, label)

	return t.readLine()
}

func (t *Terminal) PromptSecret(ctx context.Context, label string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, _ = fmt.Fprint(t.out, label)

	if !t.hidden {
		return t.readLine()
	}

	secret, err := t.readPassword(t.secretFd)
	_, _ = fmt.Fprintln(t.out)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", domain.ErrPromptAborted
		}
		return "", fmt.Errorf("read secret input: %w", err)
	}

	return strings.TrimSpace(string(secret)), nil
}

func (t *Terminal) Notify(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, _ = fmt.Fprintln(t.out, message)
}

// readLine returns the trimmed line. A final line without a newline is still
// returned; a closed stream with nothing left aborts the prompt.
func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			return "", domain.ErrPromptAborted
		}
	}

	return sanitize(strings.TrimSpace(line)), nil
}

func sanitize(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}
