package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)
	cfg.applyMeshDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "objscene")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "objscene")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "objscene")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "objscene")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// Relative mesh paths are resolved against the config file's directory.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	base := filepath.Dir(path)
	for i := range cfg.Scene.Meshes {
		m := &cfg.Scene.Meshes[i]
		if m.Path != "" && !filepath.IsAbs(m.Path) {
			m.Path = filepath.Join(base, m.Path)
		}
		if m.Texture != "" && !filepath.IsAbs(m.Texture) {
			m.Texture = filepath.Join(base, m.Texture)
		}
	}
	return nil
}
