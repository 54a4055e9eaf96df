package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagMap          = flag.String("map", "", "Level to convert (default: first in the WAD)")
	flagOut          = flag.String("out", "", "Output directory")
	flagDumpTextures = flag.Bool("dump-textures", false, "Write the scene's textures as images")
	flagDumpFormat   = flag.String("dump-format", "", "Texture dump format: png, bmp, tga, webp")
	flagNoProgress   = flag.Bool("no-progress", false, "Hide the progress bar")
	flagSkyHack      = flag.Bool("sky-hack", false, "Leave out upper walls between two sky ceilings")
	flagList         = flag.Bool("list", false, "List the levels in the WAD and exit")
	flagSaveConfig   = flag.Bool("save-config", false, "Write the effective config to the user config directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// ListOnly reports whether -list was given.
func ListOnly() bool {
	return *flagList
}

// SaveRequested reports whether -save-config was given.
func SaveRequested() bool {
	return *flagSaveConfig
}

// inputArg returns the positional WAD path, if any.
var inputArg = func() string {
	return flag.Arg(0)
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if in := inputArg(); in != "" {
		cfg.Input = in
	}
	if *flagMap != "" {
		cfg.Map = *flagMap
	}
	if *flagOut != "" {
		cfg.OutputDir = *flagOut
	}
	if *flagDumpTextures {
		cfg.TextureDump.Enabled = true
	}
	if *flagDumpFormat != "" {
		cfg.TextureDump.Format = *flagDumpFormat
	}
	if *flagNoProgress {
		cfg.Progress = false
	}
	if *flagSkyHack {
		cfg.Scene.SkyHack = true
	}
}
