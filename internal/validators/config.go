package validators

import (
	"os"

	"go.yaml.in/yaml/v3"
)

// FileConfig is the shape of configs/validators.yaml: per-validator
// default kwargs applied under whatever the schema declares.
type FileConfig struct {
	Validators map[string]map[string]any `yaml:"validators"`
}

// LoadFileConfig reads the validator defaults file. The path comes
// from VALIDATORS_CONFIG_PATH, falling back to configs/validators.yaml.
func LoadFileConfig() (*FileConfig, error) {
	path := os.Getenv("VALIDATORS_CONFIG_PATH")
	if path == "" {
		path = "configs/validators.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyTo seeds a registry with the file's per-validator defaults.
func (c *FileConfig) ApplyTo(registry *Registry) {
	for id, kwargs := range c.Validators {
		registry.SetDefaults(id, kwargs)
	}
}
