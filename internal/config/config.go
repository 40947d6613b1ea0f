// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics    GraphicsConfig    `yaml:"graphics"`
	Camera      CameraConfig      `yaml:"camera"`
	Scene       SceneConfig       `yaml:"scene"`
	Interaction InteractionConfig `yaml:"interaction"`
	Render      RenderConfig      `yaml:"render"`
	Assets      AssetsConfig      `yaml:"assets"`
	Upload      UploadConfig      `yaml:"upload"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	MSAA       int        `yaml:"msaa"`
	FPSLimit   int        `yaml:"fps_limit"`
	ShowFPS    bool       `yaml:"show_fps"`
	Background [3]float32 `yaml:"background,flow"`
}

// CameraConfig holds orbit camera settings. Angles are in degrees.
type CameraConfig struct {
	Distance         float32 `yaml:"distance"`
	MinDistance      float32 `yaml:"min_distance"`
	MaxDistance      float32 `yaml:"max_distance"`
	Pitch            float32 `yaml:"pitch"`
	Yaw              float32 `yaml:"yaw"`
	FovDegrees       float32 `yaml:"fov_degrees"`
	OrbitSensitivity float32 `yaml:"orbit_sensitivity"`
	ZoomSensitivity  float32 `yaml:"zoom_sensitivity"`
	FocusFrequency   float64 `yaml:"focus_frequency"`
	FocusDamping     float64 `yaml:"focus_damping"`
}

// SceneConfig describes the ground and the initial models.
type SceneConfig struct {
	GroundExtent  float32       `yaml:"ground_extent"`
	GridDivisions int           `yaml:"grid_divisions"`
	ShowBounds    bool          `yaml:"show_bounds"`
	Light         LightConfig   `yaml:"light"`
	Models        []ModelConfig `yaml:"models"`
}

// LightConfig sets the directional light. Angles are in degrees.
type LightConfig struct {
	Azimuth   float32 `yaml:"azimuth"`
	Elevation float32 `yaml:"elevation"`
}

// ModelConfig is one initial model.
type ModelConfig struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name,omitempty"`
	Source   string     `yaml:"source"`
	Role     string     `yaml:"role"`
	Position [3]float32 `yaml:"position,flow"`
	Rotation [3]float32 `yaml:"rotation,flow"` // degrees
	Scale    [3]float32 `yaml:"scale,flow"`
	Hidden   bool       `yaml:"hidden,omitempty"`
	Opacity  *float32   `yaml:"opacity,omitempty"` // nil uses the role default
}

// ScaleOrDefault returns Scale with zero components replaced by 1.
func (m ModelConfig) ScaleOrDefault() [3]float32 {
	s := m.Scale
	for i := range s {
		if s[i] == 0 {
			s[i] = 1
		}
	}
	return s
}

// InteractionConfig tunes gestures and rotation easing.
type InteractionConfig struct {
	DragSensitivity   float32 `yaml:"drag_sensitivity"`
	ClickDeadZone     float32 `yaml:"click_dead_zone"`
	SelectOnDrag      bool    `yaml:"select_on_drag"`
	EaseRate          float32 `yaml:"ease_rate"`
	SnapEpsilon       float32 `yaml:"snap_epsilon"`
	RotateStepDegrees float32 `yaml:"rotate_step_degrees"`
	ToggleDegrees     float32 `yaml:"toggle_degrees"`
	RaiseStep         float32 `yaml:"raise_step"`
	OpacityStep       float32 `yaml:"opacity_step"`
}

// RenderConfig holds the material policy.
type RenderConfig struct {
	OverlapOpacity  float32                    `yaml:"overlap_opacity"`
	Ghosts          bool                       `yaml:"ghosts"`
	SelectedOutline OutlineConfig              `yaml:"selected_outline"`
	HoveredOutline  OutlineConfig              `yaml:"hovered_outline"`
	Roles           map[string]RoleStyleConfig `yaml:"roles"`
}

// OutlineConfig styles an outline.
type OutlineConfig struct {
	Color     [3]float32 `yaml:"color,flow"`
	Thickness float32    `yaml:"thickness"`
	Opacity   float32    `yaml:"opacity"`
}

// RoleStyleConfig styles a role.
type RoleStyleConfig struct {
	Color   [3]float32 `yaml:"color,flow"`
	Opacity float32    `yaml:"opacity"`
}

// AssetsConfig controls model loading.
type AssetsConfig struct {
	Root      string `yaml:"root"`
	Normalize bool   `yaml:"normalize"`
	Watch     bool   `yaml:"watch"`
}

// UploadConfig controls runtime model uploads.
type UploadConfig struct {
	Enabled  bool  `yaml:"enabled"`
	MaxBytes int64 `yaml:"max_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			MSAA:       4,
			FPSLimit:   0,
			ShowFPS:    true,
			Background: [3]float32{0.12, 0.13, 0.15},
		},
		Camera: CameraConfig{
			Distance:         8,
			MinDistance:      1.5,
			MaxDistance:      60,
			Pitch:            28,
			Yaw:              35,
			FovDegrees:       45,
			OrbitSensitivity: 0.005,
			ZoomSensitivity:  0.1,
			FocusFrequency:   6,
			FocusDamping:     1,
		},
		Scene: SceneConfig{
			GroundExtent:  3,
			GridDivisions: 12,
			ShowBounds:    false,
			Light:         LightConfig{Azimuth: 45, Elevation: 60},
			Models: []ModelConfig{
				{
					ID:       "reference",
					Name:     "Design model",
					Source:   "models/reference.glb",
					Role:     "reference",
					Position: [3]float32{-1.2, 0.5, 0},
					Scale:    [3]float32{1, 1, 1},
				},
				{
					ID:       "reality",
					Name:     "As-built scan",
					Source:   "models/reality.glb",
					Role:     "reality",
					Position: [3]float32{1.2, 0.5, 0},
					Scale:    [3]float32{1, 1, 1},
				},
			},
		},
		Interaction: InteractionConfig{
			DragSensitivity:   0.01,
			ClickDeadZone:     4,
			SelectOnDrag:      true,
			EaseRate:          8,
			SnapEpsilon:       1e-4,
			RotateStepDegrees: 45,
			ToggleDegrees:     90,
			RaiseStep:         0.25,
			OpacityStep:       0.1,
		},
		Render: RenderConfig{
			OverlapOpacity:  0.4,
			Ghosts:          true,
			SelectedOutline: OutlineConfig{Color: [3]float32{1, 0.9, 0.2}, Thickness: 3, Opacity: 1},
			HoveredOutline:  OutlineConfig{Color: [3]float32{1, 1, 1}, Thickness: 1.5, Opacity: 0.5},
			Roles: map[string]RoleStyleConfig{
				"reference": {Color: [3]float32{0.35, 0.62, 0.95}, Opacity: 1},
				"reality":   {Color: [3]float32{0.95, 0.62, 0.30}, Opacity: 1},
				"neutral":   {Color: [3]float32{0.75, 0.75, 0.75}, Opacity: 1},
			},
		},
		Assets: AssetsConfig{
			Root:      ".",
			Normalize: true,
			Watch:     false,
		},
		Upload: UploadConfig{
			Enabled:  true,
			MaxBytes: 256 << 20,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
