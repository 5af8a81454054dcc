package toolserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

type promptTemplate struct {
	name        string
	description string
	arguments   map[string]string
	order       []string
	body        string
}

var promptTemplates = []promptTemplate{
	{
		name:        "data_analyst",
		description: "A template for analyzing data",
		order:       []string{"data"},
		arguments:   map[string]string{"data": "Dataset to analyze"},
		body: `You are a data analyst examining the following dataset:

{data}

Please analyze this data and provide:
1. A summary of key statistics
2. Identification of trends and patterns
3. Actionable insights based on the data
4. Recommendations for further analysis

Use clear explanations and visual descriptions where helpful.`,
	},
	{
		name:        "aws_cost_analyst",
		description: "A template for AWS cost analysis",
		order:       []string{"cost_data"},
		arguments:   map[string]string{"cost_data": "AWS cost data, for example analyze_aws_costs output"},
		body: `You are an AWS cost optimization analyst examining the following cost data:

{cost_data}

Please provide:
1. Cost breakdown analysis by service
2. Identification of cost optimization opportunities
3. Recommendations for reducing AWS spending
4. Potential cost anomalies or unexpected charges
5. Best practices for cost management

Focus on actionable insights that can help reduce costs while maintaining performance.`,
	},
	{
		name:        "stock_market_analyst",
		description: "A template for stock market analysis",
		order:       []string{"stock_data"},
		arguments:   map[string]string{"stock_data": "Quotes, history or indicator output"},
		body: `You are a professional stock market analyst examining the following data:

{stock_data}

Please provide:
1. Current stock performance analysis
2. Technical indicator interpretation (RSI, MACD, moving averages)
3. Risk assessment and volatility analysis
4. Investment recommendation with rationale
5. Price targets and key support/resistance levels

Focus on actionable insights for both short-term trading and long-term investing.`,
	},
	{
		name:        "snowflake_cost_analyst",
		description: "A template for Snowflake cost analysis",
		order:       []string{"snowflake_data"},
		arguments:   map[string]string{"snowflake_data": "Snowflake cost summary output"},
		body: `You are a Snowflake cost optimization expert examining the following cost data:

{snowflake_data}

Please provide:
1. Overall cost breakdown analysis (compute vs storage)
2. Warehouse utilization and efficiency analysis
3. Cost optimization opportunities and recommendations
4. Identification of potential cost anomalies or spikes
5. Best practices for Snowflake cost management
6. Warehouse sizing and auto-suspend recommendations

Focus on actionable insights that can help reduce Snowflake costs while maintaining performance.`,
	},
	{
		name:        "api_documentation",
		description: "A template for generating API documentation",
		order: []string{
			"endpoint_name", "description", "http_method", "endpoint_path",
			"request_params", "response_format", "example_usage", "error_codes",
		},
		arguments: map[string]string{
			"endpoint_name":   "Endpoint name",
			"description":     "What the endpoint does",
			"http_method":     "HTTP method",
			"endpoint_path":   "Request path",
			"request_params":  "Request parameters",
			"response_format": "Response body format",
			"example_usage":   "Example request",
			"error_codes":     "Error codes",
		},
		body: "# API Documentation for {endpoint_name}\n\n" +
			"## Overview\n{description}\n\n" +
			"## Endpoint\n`{http_method} {endpoint_path}`\n\n" +
			"## Request Parameters\n{request_params}\n\n" +
			"## Response Format\n{response_format}\n\n" +
			"## Example Usage\n```\n{example_usage}\n```\n\n" +
			"## Error Codes\n{error_codes}",
	},
}

func (s *Server) registerPrompts() {
	for _, tmpl := range promptTemplates {
		tmpl := tmpl
		options := []mcp.PromptOption{mcp.WithPromptDescription(tmpl.description)}
		for _, name := range tmpl.order {
			options = append(options, mcp.WithArgument(name, mcp.ArgumentDescription(tmpl.arguments[name])))
		}

		s.mcp.AddPrompt(mcp.NewPrompt(tmpl.name, options...), func(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			text := tmpl.render(request.Params.Arguments)
			return mcp.NewGetPromptResult(tmpl.description, []mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
			}), nil
		})
	}
}

// render fills the placeholders it has values for and leaves the rest in
// place so the caller can see what was not supplied.
func (t promptTemplate) render(values map[string]string) string {
	pairs := make([]string, 0, 2*len(t.order))
	for _, name := range t.order {
		if value, ok := values[name]; ok && strings.TrimSpace(value) != "" {
			pairs = append(pairs, "{"+name+"}", value)
		}
	}
	return strings.NewReplacer(pairs...).Replace(t.body)
}
