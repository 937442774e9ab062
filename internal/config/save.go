package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SettingsPath returns the file viewer settings are written back to: the
// explicit -config file, else the first config file found, else config.yaml
// in ConfigDir.
func SettingsPath() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	if path := findConfigFile(); path != "" {
		return path
	}
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SavePlayback replaces the animation section of the config file at path.
// Other sections are kept as the file has them; a missing file is created
// from the defaults.
func SavePlayback(path string, playback AnimationConfig) error {
	stored := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, stored); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	stored.Animation = playback
	return stored.SaveTo(path)
}

// SaveTo validates the config and writes it to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
