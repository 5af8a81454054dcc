package ports

import (
	"context"

	"github.com/bnema/pulse/internal/domain"
)

// ToolClient invokes capabilities on a tool server. CallTool returns one of
// map[string]any, string or []domain.TextEnvelope.
type ToolClient interface {
	ListCapabilities(ctx context.Context) ([]domain.CapabilityDescriptor, error)
	CallTool(ctx context.Context, name string, params map[string]any) (any, error)
	Close() error
}
