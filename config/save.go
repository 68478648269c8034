package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveConfig provides methods to save configuration values.
type SaveConfig struct {
	// GlobalConfigDir is the directory under ~/.config/ for global config.
	GlobalConfigDir string

	// GlobalConfigFile is the filename. Defaults to "config.yaml".
	GlobalConfigFile string

	// LocalConfigName is the filename for local config in the working directory.
	LocalConfigName string

	// ValidKeys lists keys that can be saved. If nil, all keys are valid.
	ValidKeys []string
}

// DefaultSaveConfig returns the save configuration matching
// DefaultResolverConfig.
func DefaultSaveConfig() SaveConfig {
	rc := DefaultResolverConfig()
	return SaveConfig{
		GlobalConfigDir: rc.GlobalConfigDir,
		LocalConfigName: rc.LocalConfigName,
		ValidKeys:       rc.ValidKeys,
	}
}

func (c SaveConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

func (c SaveConfig) validate(key string) error {
	if len(c.ValidKeys) > 0 && !contains(c.ValidKeys, key) {
		return fmt.Errorf("unknown config key: %s\n\nValid keys: %s",
			key, strings.Join(c.ValidKeys, ", "))
	}
	return nil
}

// SaveGlobal saves a key-value pair to the global config file.
func (c SaveConfig) SaveGlobal(key, value string) error {
	if c.GlobalConfigDir == "" {
		return fmt.Errorf("global config directory not configured")
	}
	if err := c.validate(key); err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".config", c.GlobalConfigDir, c.globalConfigFile())

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return err
	}

	return writeKey(configPath, key, value, 0o600)
}

// SaveLocal saves a key-value pair to the local config file in dir.
func (c SaveConfig) SaveLocal(dir, key, value string) error {
	if dir == "" {
		return fmt.Errorf("directory not specified")
	}
	if c.LocalConfigName == "" {
		return fmt.Errorf("local config name not configured")
	}
	if err := c.validate(key); err != nil {
		return err
	}

	// Local config is shared and should be readable
	return writeKey(filepath.Join(dir, c.LocalConfigName), key, value, 0o644)
}

// DeleteGlobalKey removes a key from the global config.
func (c SaveConfig) DeleteGlobalKey(key string) error {
	if c.GlobalConfigDir == "" {
		return fmt.Errorf("global config directory not configured")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".config", c.GlobalConfigDir, c.globalConfigFile())

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil // Nothing to delete
	}

	var existing map[string]interface{}
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return nil
	}

	delete(existing, key)

	data, err = yaml.Marshal(existing)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o600)
}

// writeKey merges a single key into the YAML file at path.
func writeKey(path, key, value string, perm os.FileMode) error {
	var existing map[string]interface{}
	if data, readErr := os.ReadFile(path); readErr == nil {
		_ = yaml.Unmarshal(data, &existing)
	}
	if existing == nil {
		existing = make(map[string]interface{})
	}

	existing[key] = parseValue(value)

	data, err := yaml.Marshal(existing)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, perm) //nolint:gosec
}

// parseValue converts string values to appropriate types for YAML.
func parseValue(value string) interface{} {
	lower := strings.ToLower(value)
	if lower == "true" {
		return true
	}
	if lower == "false" {
		return false
	}
	return value
}
