package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type connectDoneMsg struct {
	summary string
	err     error
}

type connectSpinnerModel struct {
	spinner spinner.Model
	label   string
	connect tea.Cmd
	summary string
	err     error
	done    bool
}

func newConnectSpinnerModel(label string, connect tea.Cmd) connectSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return connectSpinnerModel{
		spinner: s,
		label:   label,
		connect: connect,
	}
}

func (m connectSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.connect)
}

func (m connectSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case connectDoneMsg:
		m.done = true
		m.summary = msg.summary
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m connectSpinnerModel) View() string {
	if m.done {
		if m.err != nil || m.summary == "" {
			return ""
		}
		return readyStyle.Render("✓ "+m.summary) + "\n"
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

var readyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

// runConnectSpinner animates on output until connect returns, then leaves the
// summary connect reported in place of the label.
func runConnectSpinner(ctx context.Context, output io.Writer, label string, connect func(context.Context) (string, error)) error {
	connectCmd := func() tea.Msg {
		summary, err := connect(ctx)
		return connectDoneMsg{summary: summary, err: err}
	}

	p := tea.NewProgram(
		newConnectSpinnerModel(label, connectCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(connectSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
