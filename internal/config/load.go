package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/twinview/internal/scene"
)

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
		// Relative asset roots are relative to the config file.
		if cfg.Assets.Root != "" && !filepath.IsAbs(cfg.Assets.Root) {
			cfg.Assets.Root = filepath.Join(filepath.Dir(configPath), cfg.Assets.Root)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
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
		return filepath.Join(home, "Library", "Application Support", "TwinView")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "TwinView")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "twinview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "twinview")
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

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Graphics.Width > 0 && c.Graphics.Height > 0, "graphics: size %dx%d must be positive", c.Graphics.Width, c.Graphics.Height)
	check(c.Graphics.MSAA >= 0, "graphics.msaa must not be negative")

	check(c.Camera.MinDistance > 0, "camera.min_distance must be positive")
	check(c.Camera.MaxDistance >= c.Camera.MinDistance, "camera.max_distance must be >= min_distance")
	check(c.Camera.FovDegrees > 0 && c.Camera.FovDegrees < 180, "camera.fov_degrees must be in (0, 180)")
	check(c.Camera.FocusFrequency > 0, "camera.focus_frequency must be positive")
	check(c.Camera.FocusDamping >= 0, "camera.focus_damping must not be negative")

	check(c.Scene.GroundExtent > 0, "scene.ground_extent must be positive")
	check(c.Scene.GridDivisions > 0, "scene.grid_divisions must be positive")

	seen := make(map[string]bool)
	for i, m := range c.Scene.Models {
		check(m.ID != "", "scene.models[%d]: id is required", i)
		check(!seen[m.ID], "scene.models[%d]: duplicate id %q", i, m.ID)
		seen[m.ID] = true
		if _, err := scene.ParseRole(m.Role); err != nil {
			errs = append(errs, fmt.Errorf("scene.models[%d]: %w", i, err))
		}
		if m.Opacity != nil {
			check(*m.Opacity >= 0 && *m.Opacity <= 1, "scene.models[%d]: opacity must be in [0, 1]", i)
		}
	}

	check(c.Interaction.DragSensitivity > 0, "interaction.drag_sensitivity must be positive")
	check(c.Interaction.ClickDeadZone >= 0, "interaction.click_dead_zone must not be negative")
	check(c.Interaction.EaseRate >= 0, "interaction.ease_rate must not be negative")
	check(c.Interaction.SnapEpsilon >= 0, "interaction.snap_epsilon must not be negative")
	check(c.Interaction.OpacityStep > 0 && c.Interaction.OpacityStep <= 1, "interaction.opacity_step must be in (0, 1]")

	check(c.Render.OverlapOpacity >= 0 && c.Render.OverlapOpacity <= 1, "render.overlap_opacity must be in [0, 1]")
	for name := range c.Render.Roles {
		if _, err := scene.ParseRole(name); err != nil {
			errs = append(errs, fmt.Errorf("render.roles: %w", err))
		}
	}

	check(c.Upload.MaxBytes >= 0, "upload.max_bytes must not be negative")

	return errors.Join(errs...)
}
