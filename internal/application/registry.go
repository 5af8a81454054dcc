package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	"go.uber.org/zap"
)

type RegistrySource string

const (
	RegistrySourceLive     RegistrySource = "live"
	RegistrySourceFallback RegistrySource = "fallback"
)

// Registry is immutable once built and keeps registration order.
type Registry struct {
	order  []string
	byName map[string]domain.CapabilityDescriptor
	source RegistrySource
}

type CategoryGroup struct {
	Category     domain.Category
	Capabilities []domain.CapabilityDescriptor
}

func NewRegistry(descriptors []domain.CapabilityDescriptor, source RegistrySource) (*Registry, error) {
	registry := &Registry{
		order:  make([]string, 0, len(descriptors)),
		byName: make(map[string]domain.CapabilityDescriptor, len(descriptors)),
		source: source,
	}

	for _, descriptor := range descriptors {
		descriptor.Name = strings.TrimSpace(descriptor.Name)
		if descriptor.Category == "" {
			descriptor.Category = domain.CategoryForName(descriptor.Name)
		}
		if err := descriptor.Validate(); err != nil {
			return nil, err
		}
		if _, exists := registry.byName[descriptor.Name]; exists {
			return nil, fmt.Errorf("capability %q registered twice", descriptor.Name)
		}

		registry.order = append(registry.order, descriptor.Name)
		registry.byName[descriptor.Name] = descriptor
	}

	return registry, nil
}

// DiscoverRegistry introspects the tool server and falls back to the catalog
// when discovery fails or yields nothing.
func DiscoverRegistry(ctx context.Context, client ports.ToolClient, catalog ports.CapabilityCatalog, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	live, err := client.ListCapabilities(ctx)
	switch {
	case err != nil:
		logger.Warn("capability discovery failed, using fallback table", zap.Error(err))
	case len(live) == 0:
		logger.Warn("tool server advertised no capabilities, using fallback table")
	default:
		registry, buildErr := NewRegistry(live, RegistrySourceLive)
		if buildErr == nil {
			logger.Info("discovered capabilities", zap.Int("count", registry.Len()))
			return registry, nil
		}
		logger.Warn("discovered capabilities are invalid, using fallback table", zap.Error(buildErr))
	}

	fallback, err := catalog.FallbackCapabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fallback capabilities: %w", err)
	}

	return NewRegistry(fallback, RegistrySourceFallback)
}

func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

func (r *Registry) Get(name string) (domain.CapabilityDescriptor, error) {
	descriptor, ok := r.byName[name]
	if !ok {
		return domain.CapabilityDescriptor{}, fmt.Errorf("%w: %s", domain.ErrCapabilityNotFound, name)
	}

	return descriptor, nil
}

func (r *Registry) All() []domain.CapabilityDescriptor {
	descriptors := make([]domain.CapabilityDescriptor, 0, len(r.order))
	for _, name := range r.order {
		descriptors = append(descriptors, r.byName[name])
	}

	return descriptors
}

// Grouped returns non-empty groups in domain.Categories order. Unknown
// categories follow in first-seen order.
func (r *Registry) Grouped() []CategoryGroup {
	byCategory := map[domain.Category][]domain.CapabilityDescriptor{}
	var extra []domain.Category
	known := map[domain.Category]struct{}{}
	for _, category := range domain.Categories {
		known[category] = struct{}{}
	}

	for _, descriptor := range r.All() {
		if _, ok := known[descriptor.Category]; !ok {
			if _, seen := byCategory[descriptor.Category]; !seen {
				extra = append(extra, descriptor.Category)
			}
		}
		byCategory[descriptor.Category] = append(byCategory[descriptor.Category], descriptor)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	for _, category := range append(append([]domain.Category{}, domain.Categories...), extra...) {
		if capabilities := byCategory[category]; len(capabilities) > 0 {
			groups = append(groups, CategoryGroup{Category: category, Capabilities: capabilities})
		}
	}

	return groups
}

func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) Source() RegistrySource {
	return r.source
}
