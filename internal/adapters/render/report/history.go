package report

import (
	"fmt"
	"strings"

	"github.com/bnema/pulse/internal/domain"
)

const (
	historyDisplayLimit = 10
	historyContentLimit = 100
	historyTimeLayout   = "2006-01-02T15:04:05"
)

func (f *Formatter) History(entries []domain.HistoryEntry) string {
	if len(entries) == 0 {
		return f.styles.empty.Render("📝 No conversation history yet.")
	}

	if len(entries) > historyDisplayLimit {
		entries = entries[len(entries)-historyDisplayLimit:]
	}

	lines := []string{"", f.styles.title.Render("📝 Conversation History:")}
	for _, entry := range entries {
		timestamp := entry.Timestamp.Format(historyTimeLayout)
		switch entry.Type {
		case domain.EntryQuestion:
			lines = append(lines, f.styles.question.Render(fmt.Sprintf("🤔 [%s] Q: %s", timestamp, truncate(entry.Content, historyContentLimit))))
		default:
			lines = append(lines, f.styles.answer.Render(fmt.Sprintf("🤖 [%s] A: Used tools [%s]", timestamp, strings.Join(entry.ToolsUsed, ", "))))
		}
	}

	return strings.Join(lines, "\n")
}

func truncate(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}

	return string(runes[:limit]) + "..."
}
