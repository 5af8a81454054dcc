package toolserver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/montanaflynn/stats"
)

const (
	opSum        = "sum"
	opAvg        = "avg"
	opMax        = "max"
	opMin        = "min"
	opMedian     = "median"
	opStdDev     = "stddev"
	opProduct    = "product"
	opExpression = "expression"
)

var operationAliases = map[string]string{
	"add":     opSum,
	"total":   opSum,
	"average": opAvg,
	"mean":    opAvg,
	"maximum": opMax,
	"minimum": opMin,
}

var expressionFunctions = map[string]govaluate.ExpressionFunction{
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"round": unary(math.Round),
	"pow": func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, errors.New("pow takes two arguments")
		}
		base, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		exponent, err := toFloat(args[1])
		if err != nil {
			return nil, err
		}
		return math.Pow(base, exponent), nil
	},
}

func (s *Server) registerMathTools() {
	s.addTool(mcp.NewTool("calculate",
		mcp.WithDescription("Perform mathematical calculations (sum, avg, min, max, median, stddev, product) on a list of numbers, or evaluate an arithmetic expression"),
		mcp.WithString("operation",
			mcp.Description("Operation to apply; defaults to sum"),
			mcp.Enum(opSum, opAvg, "average", "mean", opMax, opMin, opMedian, opStdDev, opProduct, opExpression),
		),
		mcp.WithArray("numbers",
			mcp.Description("Numbers to operate on; referenced as n1, n2, ... in expressions"),
			mcp.Items(map[string]any{"type": "number"}),
		),
		mcp.WithString("expression",
			mcp.Description("Arithmetic expression such as (n1 + n2) * 2 or sqrt(16); used with operation=expression"),
		),
	), s.calculate)
}

func (s *Server) calculate(_ context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	numbers, err := floatsArg(args, "numbers")
	if err != nil {
		return argumentError(err)
	}

	operation := stringArg(args, "operation", opSum)
	expression := stringArg(args, "expression", "")
	if expression != "" && operation == opSum && len(numbers) == 0 {
		operation = opExpression
	}

	result, err := Calculate(operation, numbers, expression)
	if err != nil {
		return argumentError(err)
	}

	return mcp.NewToolResultText(formatNumber(result)), nil
}

// Calculate applies operation to numbers, or evaluates expression with
// numbers bound to n1..nN.
func Calculate(operation string, numbers []float64, expression string) (float64, error) {
	operation = strings.ToLower(strings.TrimSpace(operation))
	if alias, ok := operationAliases[operation]; ok {
		operation = alias
	}

	if operation == opExpression {
		return evaluate(expression, numbers)
	}
	if len(numbers) == 0 {
		return 0, errors.New("numbers must not be empty")
	}

	var (
		result float64
		err    error
	)
	switch operation {
	case opSum:
		result, err = stats.Sum(numbers)
	case opAvg:
		result, err = stats.Mean(numbers)
	case opMax:
		result, err = stats.Max(numbers)
	case opMin:
		result, err = stats.Min(numbers)
	case opMedian:
		result, err = stats.Median(numbers)
	case opStdDev:
		result, err = stats.StandardDeviation(numbers)
	case opProduct:
		result = 1
		for _, n := range numbers {
			result *= n
		}
	default:
		return 0, fmt.Errorf("unknown operation %q", operation)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", operation, err)
	}

	return result, nil
}

func evaluate(expression string, numbers []float64) (float64, error) {
	if strings.TrimSpace(expression) == "" {
		return 0, errors.New("expression is required for operation expression")
	}

	compiled, err := govaluate.NewEvaluableExpressionWithFunctions(expression, expressionFunctions)
	if err != nil {
		return 0, fmt.Errorf("parse expression: %w", err)
	}

	params := make(map[string]any, len(numbers)+1)
	for i, n := range numbers {
		params["n"+strconv.Itoa(i+1)] = n
	}
	params["pi"] = math.Pi

	value, err := compiled.Evaluate(params)
	if err != nil {
		return 0, fmt.Errorf("evaluate expression: %w", err)
	}

	result, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("expression evaluated to %v, want a number", value)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, errors.New("expression result is not a finite number")
	}

	return result, nil
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, errors.New("function takes one argument")
		}
		n, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		return fn(n), nil
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
