// Package defaults holds the built-in configuration, embedded at build time.
package defaults

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ConfigYAML is the default configuration file.
//
//go:embed config.yaml
var ConfigYAML []byte

// Map decodes ConfigYAML into nested maps suitable for a koanf confmap
// provider.
func Map() (map[string]any, error) {
	m := make(map[string]any)
	if err := yaml.Unmarshal(ConfigYAML, &m); err != nil {
		return nil, fmt.Errorf("decode embedded defaults: %w", err)
	}
	return m, nil
}
