package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded config fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. All problems are reported together.
func (c *Config) Validate() error {
	var errs error
	if c.Scene.UnitScale <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("scene.unit_scale must be positive, got %g", c.Scene.UnitScale))
	}
	if c.Scene.SlopeMaxStep < 0 {
		errs = multierr.Append(errs, fmt.Errorf("scene.slope_max_step must not be negative, got %g", c.Scene.SlopeMaxStep))
	}
	if c.Scene.CollinearTolerance < 0 {
		errs = multierr.Append(errs, fmt.Errorf("scene.collinear_tolerance must not be negative, got %g", c.Scene.CollinearTolerance))
	}
	switch strings.ToLower(c.TextureDump.Format) {
	case "png", "bmp", "tga", "webp":
	default:
		errs = multierr.Append(errs, fmt.Errorf("texture_dump.format %q is not one of png, bmp, tga, webp", c.TextureDump.Format))
	}
	if c.TextureDump.Workers < 1 {
		errs = multierr.Append(errs, fmt.Errorf("texture_dump.workers must be at least 1, got %d", c.TextureDump.Workers))
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./wadglb.yaml",
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
		return filepath.Join(home, "Library", "Application Support", "wadglb")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "wadglb")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "wadglb")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "wadglb")
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
