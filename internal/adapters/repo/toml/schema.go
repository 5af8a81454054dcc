package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version      int                `toml:"version"`
	Capabilities []capabilitySchema `toml:"capabilities"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported capabilities schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type capabilitySchema struct {
	Name        string            `toml:"name"`
	Description string            `toml:"description"`
	Category    string            `toml:"category,omitempty"`
	Parameters  map[string]string `toml:"parameters,omitempty"`
}
