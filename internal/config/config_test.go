package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Graphics
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Scene
	if cfg.Scene.GroundExtent != 3 {
		t.Errorf("expected ground extent 3, got %v", cfg.Scene.GroundExtent)
	}
	if len(cfg.Scene.Models) != 2 {
		t.Fatalf("expected two default models, got %d", len(cfg.Scene.Models))
	}
	if cfg.Scene.Models[0].Role != "reference" || cfg.Scene.Models[1].Role != "reality" {
		t.Errorf("unexpected default roles %q, %q", cfg.Scene.Models[0].Role, cfg.Scene.Models[1].Role)
	}

	// Interaction and render policy
	if cfg.Interaction.ClickDeadZone != 4 {
		t.Errorf("expected dead zone 4, got %v", cfg.Interaction.ClickDeadZone)
	}
	if !cfg.Interaction.SelectOnDrag {
		t.Error("expected select_on_drag to be true by default")
	}
	if cfg.Render.OverlapOpacity != 0.4 {
		t.Errorf("expected overlap opacity 0.4, got %v", cfg.Render.OverlapOpacity)
	}
	if cfg.Render.SelectedOutline.Thickness <= cfg.Render.HoveredOutline.Thickness {
		t.Error("expected selected outline thicker than hovered")
	}

	// Logging
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  vsync: false

scene:
  ground_extent: 5
  models:
    - id: design
      source: design.glb
      role: reference
      position: [0, 0.5, 0]
      rotation: [0, 90, 0]
    - id: scan
      source: scan.glb
      role: reality
      opacity: 0.6
      hidden: true

interaction:
  ease_rate: 12
  snap_epsilon: 0

render:
  overlap_opacity: 0.25
  roles:
    reality:
      color: [1, 0, 0]
      opacity: 0.8

logging:
  level: "debug"
  log_file: "twinview.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Scene.GroundExtent != 5 {
		t.Errorf("expected ground extent 5, got %v", cfg.Scene.GroundExtent)
	}

	if len(cfg.Scene.Models) != 2 {
		t.Fatalf("expected file models to replace defaults, got %d", len(cfg.Scene.Models))
	}
	design, scan := cfg.Scene.Models[0], cfg.Scene.Models[1]
	if design.ID != "design" || design.Rotation[1] != 90 {
		t.Errorf("unexpected design model %+v", design)
	}
	if design.ScaleOrDefault() != [3]float32{1, 1, 1} {
		t.Errorf("expected default scale, got %v", design.ScaleOrDefault())
	}
	if design.Opacity != nil {
		t.Error("expected nil opacity when omitted")
	}
	if scan.Opacity == nil || *scan.Opacity != 0.6 {
		t.Errorf("expected opacity 0.6, got %v", scan.Opacity)
	}
	if !scan.Hidden {
		t.Error("expected scan hidden")
	}

	if cfg.Interaction.EaseRate != 12 || cfg.Interaction.SnapEpsilon != 0 {
		t.Errorf("unexpected interaction %+v", cfg.Interaction)
	}
	// Untouched fields keep defaults.
	if cfg.Interaction.ClickDeadZone != 4 {
		t.Errorf("expected default dead zone, got %v", cfg.Interaction.ClickDeadZone)
	}

	if cfg.Render.OverlapOpacity != 0.25 {
		t.Errorf("expected overlap opacity 0.25, got %v", cfg.Render.OverlapOpacity)
	}
	if cfg.Render.Roles["reality"].Color != [3]float32{1, 0, 0} {
		t.Errorf("expected reality color override, got %v", cfg.Render.Roles["reality"])
	}
	if _, ok := cfg.Render.Roles["reference"]; !ok {
		t.Error("expected default reference role style to survive merge")
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "twinview.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }, "graphics"},
		{"negative extent", func(c *Config) { c.Scene.GroundExtent = -1 }, "ground_extent"},
		{"duplicate ids", func(c *Config) { c.Scene.Models[1].ID = c.Scene.Models[0].ID }, "duplicate id"},
		{"missing id", func(c *Config) { c.Scene.Models[0].ID = "" }, "id is required"},
		{"bad role", func(c *Config) { c.Scene.Models[0].Role = "blueprint" }, "unknown role"},
		{"opacity range", func(c *Config) {
			o := float32(1.5)
			c.Scene.Models[0].Opacity = &o
		}, "opacity"},
		{"overlap opacity", func(c *Config) { c.Render.OverlapOpacity = 2 }, "overlap_opacity"},
		{"negative epsilon", func(c *Config) { c.Interaction.SnapEpsilon = -1 }, "snap_epsilon"},
		{"zero opacity step", func(c *Config) { c.Interaction.OpacityStep = 0 }, "opacity_step"},
		{"bad role style", func(c *Config) { c.Render.Roles["ghost"] = RoleStyleConfig{} }, "render.roles"},
		{"camera range", func(c *Config) { c.Camera.MaxDistance = 0.5 }, "max_distance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Graphics.Width = 0
	cfg.Scene.GroundExtent = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "graphics") || !strings.Contains(msg, "ground_extent") {
		t.Errorf("expected both problems reported, got %v", msg)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Scene.ShowBounds {
					t.Error("expected bounds shown with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "model source flags",
			setup: func() {
				*flagReference = "/data/bim.glb"
				*flagReality = "/data/scan.glb"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Models[0].Source != "/data/bim.glb" {
					t.Errorf("expected reference source override, got %s", cfg.Scene.Models[0].Source)
				}
				if cfg.Scene.Models[1].Source != "/data/scan.glb" {
					t.Errorf("expected reality source override, got %s", cfg.Scene.Models[1].Source)
				}
			},
			teardown: func() {
				*flagReference = ""
				*flagReality = ""
			},
		},
		{
			name: "upload and watch flags",
			setup: func() {
				*flagNoUpload = true
				*flagWatch = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Upload.Enabled {
					t.Error("expected uploads disabled")
				}
				if !cfg.Assets.Watch {
					t.Error("expected watch enabled")
				}
			},
			teardown: func() {
				*flagNoUpload = false
				*flagWatch = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
assets:
  root: models
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
	if want := filepath.Join(tmpDir, "models"); cfg.Assets.Root != want {
		t.Errorf("expected asset root %s, got %s", want, cfg.Assets.Root)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("scene:\n  ground_extent: -2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject invalid config")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Scene.GroundExtent = 7

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Scene.GroundExtent != 7 {
		t.Errorf("expected ground extent 7, got %v", loaded.Scene.GroundExtent)
	}
}
