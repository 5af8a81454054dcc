package report

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	tool       lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	errorLine  lipgloss.Style
	category   lipgloss.Style
	empty      lipgloss.Style
	question   lipgloss.Style
	answer     lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		tool:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		errorLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		category:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		empty:      lipgloss.NewStyle().Faint(true),
		question:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		answer:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
