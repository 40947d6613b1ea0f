package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagReference  = flag.String("reference", "", "Source of the reference model")
	flagReality    = flag.String("reality", "", "Source of the reality model")
	flagNoUpload   = flag.Bool("no-upload", false, "Disable model uploads")
	flagWatch      = flag.Bool("watch", false, "Reload models when their files change")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Graphics.ShowFPS = true
		cfg.Scene.ShowBounds = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagReference != "" {
		setRoleSource(cfg, "reference", *flagReference)
	}
	if *flagReality != "" {
		setRoleSource(cfg, "reality", *flagReality)
	}
	if *flagNoUpload {
		cfg.Upload.Enabled = false
	}
	if *flagWatch {
		cfg.Assets.Watch = true
	}
}

// setRoleSource sets the source of the first model with the given role.
func setRoleSource(cfg *Config, role, source string) {
	for i := range cfg.Scene.Models {
		if cfg.Scene.Models[i].Role == role {
			cfg.Scene.Models[i].Source = source
			return
		}
	}
}
