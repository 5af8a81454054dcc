package ports

import (
	"context"

	"github.com/bnema/pulse/internal/domain"
)

// CapabilityCatalog supplies the capabilities to advertise when live
// discovery returns nothing.
type CapabilityCatalog interface {
	FallbackCapabilities(ctx context.Context) ([]domain.CapabilityDescriptor, error)
}
