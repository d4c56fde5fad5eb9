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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the renderer cannot work with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if len(c.Assets.EnvMapFaces) != 6 {
		return fmt.Errorf("env_map_faces: want 6 faces, got %d", len(c.Assets.EnvMapFaces))
	}
	if c.Render.MaxPixelRatio <= 0 {
		return fmt.Errorf("max_pixel_ratio must be positive, got %v", c.Render.MaxPixelRatio)
	}
	if c.Scene.Light.ShadowMapSize <= 0 {
		return fmt.Errorf("shadow_map_size must be positive, got %d", c.Scene.Light.ShadowMapSize)
	}
	switch c.Render.ToneMapping {
	case "none", "linear", "cineon", "aces":
	default:
		return fmt.Errorf("unknown tone_mapping %q", c.Render.ToneMapping)
	}
	switch c.Render.ShadowType {
	case "", "basic", "pcf", "pcfsoft":
	default:
		return fmt.Errorf("unknown shadow_type %q", c.Render.ShadowType)
	}
	// Same ranges as the debug panel sliders.
	if v := c.Scene.EnvMapIntensity; v < 0 || v > 4 {
		return fmt.Errorf("env_map_intensity %v outside [0, 4]", v)
	}
	if v := c.Scene.Light.Intensity; v < 0 || v > 10 {
		return fmt.Errorf("light intensity %v outside [0, 10]", v)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
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
		return filepath.Join(home, "Library", "Application Support", "EnvScene")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "EnvScene")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "envscene")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "envscene")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
