// Package config handles converter configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Input       string            `yaml:"input"`
	Map         string            `yaml:"map"`
	OutputDir   string            `yaml:"output_dir"`
	Scene       SceneConfig       `yaml:"scene"`
	TextureDump TextureDumpConfig `yaml:"texture_dump"`
	Logging     LoggingConfig     `yaml:"logging"`
	Progress    bool              `yaml:"progress"`
}

// SceneConfig holds geometry and scene output settings.
type SceneConfig struct {
	UnitScale          float32 `yaml:"unit_scale"`          // level units per scene unit
	SlopeMaxStep       float32 `yaml:"slope_max_step"`      // floor gaps up to this height get a slope quad
	CollinearTolerance float32 `yaml:"collinear_tolerance"` // radians
	LightLevels        bool    `yaml:"light_levels"`        // sector light level -> vertex color
	SkyHack            bool    `yaml:"sky_hack"`            // no upper walls between two sky ceilings
}

// TextureDumpConfig holds texture dump settings.
type TextureDumpConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Dir      string `yaml:"dir"`
	Format   string `yaml:"format"` // png | bmp | tga | webp
	Workers  int    `yaml:"workers"`
	OnlyUsed bool   `yaml:"only_used"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		OutputDir: ".",
		Scene: SceneConfig{
			UnitScale:          20,
			SlopeMaxStep:       24,
			CollinearTolerance: 0.05,
			LightLevels:        true,
		},
		TextureDump: TextureDumpConfig{
			Enabled:  false,
			Dir:      "textures",
			Format:   "png",
			Workers:  4,
			OnlyUsed: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Progress: true,
	}
}
