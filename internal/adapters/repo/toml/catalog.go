package toml

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const catalogPathKey = "catalog.path"

//go:embed fallback_capabilities.toml
var defaultCatalog []byte

// Catalog reads the fallback capability table. An operator file configured
// under catalog.path replaces the embedded table when it exists.
type Catalog struct {
	path string
}

var _ ports.CapabilityCatalog = (*Catalog)(nil)

func NewCatalog(cfg *viper.Viper) (*Catalog, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := strings.TrimSpace(cfg.GetString(catalogPathKey))
	if path == "" {
		return &Catalog{}, nil
	}

	path, err := normalizeCatalogPath(path)
	if err != nil {
		return nil, err
	}

	return &Catalog{path: path}, nil
}

func (c *Catalog) FallbackCapabilities(ctx context.Context) ([]domain.CapabilityDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := c.read()
	if err != nil {
		return nil, err
	}

	return decodeCatalog(data)
}

func (c *Catalog) read() ([]byte, error) {
	if c.path == "" {
		return defaultCatalog, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultCatalog, nil
		}
		return nil, fmt.Errorf("read capability catalog %q: %w", c.path, err)
	}

	return data, nil
}

func decodeCatalog(data []byte) ([]domain.CapabilityDescriptor, error) {
	var schema fileSchema
	if err := toml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("decode capability catalog: %w", err)
	}
	schema.applyDefaults()
	if err := schema.validateVersion(); err != nil {
		return nil, err
	}

	descriptors := make([]domain.CapabilityDescriptor, 0, len(schema.Capabilities))
	for _, capability := range schema.Capabilities {
		descriptor := toDomainCapability(capability)
		if err := descriptor.Validate(); err != nil {
			return nil, fmt.Errorf("validate capability catalog: %w", err)
		}
		descriptors = append(descriptors, descriptor)
	}

	return descriptors, nil
}

func toDomainCapability(capability capabilitySchema) domain.CapabilityDescriptor {
	category := domain.Category(strings.TrimSpace(capability.Category))
	if category == "" {
		category = domain.CategoryForName(capability.Name)
	}

	var schema map[string]any
	if len(capability.Parameters) > 0 {
		schema = make(map[string]any, len(capability.Parameters))
		for name, kind := range capability.Parameters {
			schema[name] = kind
		}
	}

	return domain.CapabilityDescriptor{
		Name:            strings.TrimSpace(capability.Name),
		Description:     capability.Description,
		Category:        category,
		ParameterSchema: schema,
	}
}

func normalizeCatalogPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve capability catalog path: %w", err)
	}

	return absolute, nil
}
