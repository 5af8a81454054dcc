package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"go.uber.org/zap"
)

// Invoker runs one capability and never fails: call errors come back as
// domain.ResultError.
type Invoker interface {
	Invoke(ctx context.Context, name string, params map[string]any) domain.Result
}

type Executor struct {
	client ports.ToolClient
	logger *zap.Logger
}

var _ Invoker = (*Executor)(nil)

func NewExecutor(client ports.ToolClient, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{client: client, logger: logger}
}

func (e *Executor) Invoke(ctx context.Context, name string, params map[string]any) domain.Result {
	if params == nil {
		params = map[string]any{}
	}

	started := time.Now()
	raw, err := e.client.CallTool(ctx, name, params)
	if err != nil {
		e.logger.Warn("tool invocation failed", zap.String("tool", name), zap.Error(err))
		return domain.ErrorResult(fmt.Sprintf("Error executing %s: %v", name, err))
	}

	result := Normalize(raw)
	e.logger.Debug("tool invoked",
		zap.String("tool", name),
		zap.String("kind", string(result.Kind)),
		zap.Duration("duration", time.Since(started)),
	)

	return result
}

// Normalize maps the shapes a tool client may return onto the result variant.
// Text envelopes are decoded as JSON: objects become structured results,
// arrays are pretty-printed and anything else is kept verbatim.
func Normalize(raw any) domain.Result {
	switch value := raw.(type) {
	case nil:
		return domain.TextResult("")
	case domain.Result:
		return value
	case map[string]any:
		return domain.StructuredResult(value)
	case string:
		return domain.TextResult(value)
	case domain.TextEnvelope:
		return normalizeText(value.Text)
	case []domain.TextEnvelope:
		if len(value) == 0 {
			return domain.TextResult("")
		}
		return normalizeText(value[0].Text)
	default:
		return domain.TextResult(fmt.Sprint(value))
	}
}

func normalizeText(text string) domain.Result {
	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return domain.TextResult(text)
	}

	switch value := decoded.(type) {
	case map[string]any:
		return domain.StructuredResult(value)
	case []any:
		pretty, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return domain.TextResult(text)
		}
		return domain.TextResult(string(pretty))
	default:
		return domain.TextResult(text)
	}
}
