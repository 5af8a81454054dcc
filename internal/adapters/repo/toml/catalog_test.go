package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/pulse/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEmbeddedTableListsAllCapabilities(t *testing.T) {
	t.Parallel()

	catalog, err := NewCatalog(nil)
	require.NoError(t, err)

	descriptors, err := catalog.FallbackCapabilities(context.Background())
	require.NoError(t, err)
	require.Len(t, descriptors, 21)

	byName := map[string]domain.CapabilityDescriptor{}
	for _, descriptor := range descriptors {
		byName[descriptor.Name] = descriptor
	}

	assert.Equal(t, "calculate", descriptors[0].Name)
	assert.Equal(t, domain.CategoryMath, byName["calculate"].Category)
	assert.Equal(t, domain.CategoryWeather, byName["get_weather"].Category)
	assert.Equal(t, domain.CategoryFinance, byName["get_crypto_data"].Category)
	assert.Equal(t, domain.CategorySnowflake, byName["connect_snowflake_auto"].Category)
	assert.Equal(t, "string", byName["get_weather"].ParameterSchema["city"])
	assert.Nil(t, byName["get_market_indices"].ParameterSchema)
}

func TestCatalogOverrideFileReplacesEmbeddedTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "capabilities.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
version = 1

[[capabilities]]
name = "get_weather"
description = "Weather"

[[capabilities]]
name = "echo"
description = "Echo"
category = "utility"
`), 0o600))

	cfg := viper.New()
	cfg.Set("catalog.path", path)
	catalog, err := NewCatalog(cfg)
	require.NoError(t, err)

	descriptors, err := catalog.FallbackCapabilities(context.Background())
	require.NoError(t, err)
	require.Len(t, descriptors, 2)
	assert.Equal(t, domain.CategoryWeather, descriptors[0].Category)
	assert.Equal(t, domain.CategoryUtility, descriptors[1].Category)
}

func TestCatalogMissingOverrideFallsBackToEmbeddedTable(t *testing.T) {
	t.Parallel()

	cfg := viper.New()
	cfg.Set("catalog.path", filepath.Join(t.TempDir(), "missing.toml"))
	catalog, err := NewCatalog(cfg)
	require.NoError(t, err)

	descriptors, err := catalog.FallbackCapabilities(context.Background())
	require.NoError(t, err)
	assert.Len(t, descriptors, 21)
}

func TestCatalogRejectsNewerSchemaVersion(t *testing.T) {
	t.Parallel()

	_, err := decodeCatalog([]byte("version = 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported capabilities schema version 2")
}

func TestCatalogRejectsNamelessCapability(t *testing.T) {
	t.Parallel()

	_, err := decodeCatalog([]byte("version = 1\n[[capabilities]]\ndescription = \"anonymous\"\n"))
	require.ErrorIs(t, err, domain.ErrCapabilityNameRequired)
}
