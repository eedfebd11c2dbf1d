package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LixConfig represents the top-level lix.yaml configuration. Unlike the
// teacher's funxy.yaml (which declares arbitrary Go ext/* bindings), lix.yaml
// only selects which of the built-in internal/stdlib modules to register —
// grounded in internal/ext/config.go's Config/LoadConfig/FindConfig shape,
// trimmed to the one field this language's stdlib actually needs.
type LixConfig struct {
	// Modules lists the optional host stdlib modules to register, by name
	// (e.g. "io", "file", "db"). Names must be keys of stdlib.Builders.
	Modules []string `yaml:"modules"`
}

// LoadLixConfig reads and parses a lix.yaml file.
func LoadLixConfig(path string) (*LixConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseLixConfig(data, path)
}

// ParseLixConfig parses lix.yaml content from bytes. The path argument is
// used only for error messages.
func ParseLixConfig(data []byte, path string) (*LixConfig, error) {
	var cfg LixConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// FindLixConfig looks for lix.yaml (or lix.yml) in dir, the same single-
// directory lookup cmd/lix's --config flag falls back to when no explicit
// path is given. Unlike FindConfig in internal/ext, it does not walk up to
// parent directories: spec.md §6 scopes the config to the invocation
// directory only. Returns "" with a nil error when no file is present —
// an absent lix.yaml means no optional stdlib modules are registered.
func FindLixConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for _, name := range []string{"lix.yaml", "lix.yml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}
