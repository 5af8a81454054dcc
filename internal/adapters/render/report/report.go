package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bnema/pulse/internal/domain"
)

const (
	NoResultsMessage     = "❌ No results were obtained from the tools."
	UnknownIntentMessage = "🤷 I'm not sure which tools to use for your question. Available categories: AWS, Snowflake, Stocks, Weather, Math, Search"

	maxListedWarehouses = 5
	categoryDumpIndent  = 6
	genericDumpIndent   = 2
)

// Formatter renders tool invocations into the answer shown to the operator.
// Output depends only on its input, so formatting twice yields the same text.
type Formatter struct {
	styles styles
}

func NewFormatter() *Formatter {
	return &Formatter{styles: newStyles()}
}

func (f *Formatter) Report(_ string, invocations []domain.ToolInvocation) string {
	if len(invocations) == 0 {
		return f.styles.errorLine.Render(NoResultsMessage)
	}

	parts := make([]string, 0, len(invocations)*2)
	for _, invocation := range invocations {
		parts = append(parts, "\n🔧 "+f.styles.tool.Render("**"+invocation.CapabilityName+"**")+":")
		parts = append(parts, f.renderResult(invocation)...)
	}

	return strings.Join(parts, "\n")
}

func (f *Formatter) UnknownIntent() string {
	return UnknownIntentMessage
}

func (f *Formatter) ConnectionFailed(message string) string {
	return f.styles.errorLine.Render("❌ Snowflake connection failed: " + message)
}

func (f *Formatter) renderResult(invocation domain.ToolInvocation) []string {
	result := invocation.Result
	if message, ok := result.ErrorMessage(); ok {
		return []string{f.styles.errorLine.Render("   ❌ Error: " + message)}
	}
	if result.Kind != domain.ResultStructured {
		return []string{"   📊 " + result.Text}
	}

	name := strings.ToLower(invocation.CapabilityName)
	switch {
	case strings.Contains(name, "snowflake"):
		return renderSnowflake(result.Data)
	case strings.Contains(name, "aws"):
		return renderAWS(result.Data)
	case strings.Contains(name, "stock"), strings.Contains(name, "market"):
		return renderMarket(result.Data)
	default:
		return []string{"   📊 " + dump(result.Data, genericDumpIndent)}
	}
}

func renderSnowflake(data map[string]any) []string {
	if total, ok := data["total_cost"]; ok {
		return []string{fmt.Sprintf("   💰 Total cost: $%.2f", toFloat(total))}
	}

	if warehouses, ok := data["warehouses"].([]any); ok {
		lines := []string{"   🏭 Top warehouses by cost:"}
		for i, raw := range warehouses {
			if i == maxListedWarehouses {
				break
			}
			warehouse, _ := raw.(map[string]any)
			lines = append(lines, fmt.Sprintf("      • %s: $%.2f", stringOr(warehouse["name"], "Unknown"), toFloat(warehouse["cost"])))
		}
		return lines
	}

	return []string{"   📊 " + dump(data, categoryDumpIndent)}
}

func renderAWS(data map[string]any) []string {
	if total, ok := data["total_cost"]; ok {
		return []string{fmt.Sprintf("   💰 Total AWS cost: $%.2f", toFloat(total))}
	}

	if profiles, ok := data["profiles"].([]any); ok {
		names := make([]string, 0, len(profiles))
		for _, profile := range profiles {
			if detail, isMap := profile.(map[string]any); isMap {
				names = append(names, stringOr(detail["name"], "unknown"))
				continue
			}
			names = append(names, fmt.Sprint(profile))
		}
		return []string{fmt.Sprintf("   🔧 Found %d AWS profiles: %s", len(names), strings.Join(names, ", "))}
	}

	return []string{"   📊 " + dump(data, categoryDumpIndent)}
}

func renderMarket(data map[string]any) []string {
	if price, ok := data["price"]; ok {
		change, hasPercent := data["change_percent"]
		if !hasPercent {
			change = data["change"]
		}
		return []string{fmt.Sprintf("   📈 Price: $%.2f, Change: %.2f%%", toFloat(price), toFloat(change))}
	}

	if indices, ok := data["indices"].(map[string]any); ok {
		names := make([]string, 0, len(indices))
		for name := range indices {
			names = append(names, name)
		}
		sort.Strings(names)

		lines := []string{"   📊 Market indices:"}
		for _, name := range names {
			value := "N/A"
			if detail, isMap := indices[name].(map[string]any); isMap {
				if raw, present := detail["value"]; present && raw != nil {
					value = formatNumber(raw)
				}
			}
			lines = append(lines, fmt.Sprintf("      • %s: %s", name, value))
		}
		return lines
	}

	return []string{"   📊 " + dump(data, categoryDumpIndent)}
}

func dump(data map[string]any, indent int) string {
	encoded, err := json.MarshalIndent(data, "", strings.Repeat(" ", indent))
	if err != nil {
		return fmt.Sprint(data)
	}

	return string(encoded)
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func formatNumber(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func stringOr(value any, fallback string) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}

	return fallback
}
