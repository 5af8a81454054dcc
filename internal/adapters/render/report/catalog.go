package report

import (
	"fmt"
	"strings"

	"github.com/bnema/pulse/internal/application"
	"github.com/charmbracelet/lipgloss"
)

func (f *Formatter) Tools(groups []application.CategoryGroup) string {
	if len(groups) == 0 {
		return f.styles.empty.Render("No tools available.")
	}

	lines := []string{"", f.styles.title.Render("🛠️  Available Tools by Category:")}
	for _, group := range groups {
		lines = append(lines, "", f.styles.category.Render(strings.ToUpper(string(group.Category))+":"))
		for _, capability := range group.Capabilities {
			description := capability.Description
			if description == "" {
				description = "No description"
			}
			lines = append(lines, fmt.Sprintf("  • %s: %s", f.styles.tool.Render(capability.Name), description))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (f *Formatter) Help() string {
	return strings.Join([]string{
		"",
		f.styles.title.Render("🤖 Pulse Agent Help"),
		"",
		f.styles.category.Render("Available Categories:"),
		"• 📊 Snowflake: Cost analysis, warehouse usage, billing reports",
		"• ☁️  AWS: Cost analysis, profile discovery, billing reports",
		"• 📈 Finance: Stock info, market data, crypto prices",
		"• 🌤️  Weather: Current weather for any city",
		"• 🧮 Math: Calculations (sum, average, min, max)",
		"• 🔍 Search: Web search for information",
		"",
		f.styles.category.Render("Example Questions:"),
		`• "What's my Snowflake cost for the last 30 days?"`,
		`• "Show me AWS costs for the past week"`,
		`• "What's the weather in New York?"`,
		`• "Get stock info for AAPL"`,
		`• "Calculate the sum of 10, 20, 30"`,
		`• "Search for information about Go"`,
		"",
		f.styles.category.Render("Commands:"),
		"• help - Show this help",
		"• tools - List all available tools",
		"• history - Show conversation history",
		"• session, status - Show the Snowflake session",
		"• clear - Forget the Snowflake session",
		"• quit, exit, bye - Leave the agent",
	}, "\n")
}
