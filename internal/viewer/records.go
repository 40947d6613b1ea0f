package viewer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/twinview/internal/config"
	"github.com/Faultbox/twinview/internal/engine/camera"
	"github.com/Faultbox/twinview/internal/gesture"
	"github.com/Faultbox/twinview/internal/render"
	"github.com/Faultbox/twinview/internal/scene"
)

// BuildRecords converts the configured models into registry records.
// Rotations are given in degrees in the config and stored in radians.
func BuildRecords(cfg *config.Config) ([]scene.ModelRecord, error) {
	styles := BuildStyles(cfg.Render)

	records := make([]scene.ModelRecord, 0, len(cfg.Scene.Models))
	for _, m := range cfg.Scene.Models {
		role, err := scene.ParseRole(m.Role)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", m.ID, err)
		}

		rec := scene.NewModelRecord(m.ID, m.Name, m.Source, role)
		rec.Position = mgl32.Vec3(m.Position)
		rec.Rotation = mgl32.Vec3{
			mgl32.DegToRad(m.Rotation[0]),
			mgl32.DegToRad(m.Rotation[1]),
			mgl32.DegToRad(m.Rotation[2]),
		}
		rec.Scale = mgl32.Vec3(m.ScaleOrDefault())
		rec.Visible = !m.Hidden
		if m.Opacity != nil {
			rec.Opacity = *m.Opacity
		} else {
			rec.Opacity = styles.Role(role).Opacity
		}
		records = append(records, rec)
	}
	return records, nil
}

// BuildStyles converts the render config into draw styles. Unknown role
// names were rejected by validation and are skipped here.
func BuildStyles(rc config.RenderConfig) render.Styles {
	s := render.DefaultStyles()
	s.OverlapOpacity = rc.OverlapOpacity
	s.Ghosts = rc.Ghosts
	s.Selected = outlineStyle(rc.SelectedOutline)
	s.Hovered = outlineStyle(rc.HoveredOutline)

	for name, rs := range rc.Roles {
		role, err := scene.ParseRole(name)
		if err != nil {
			continue
		}
		s.Roles[role] = render.RoleStyle{Color: mgl32.Vec3(rs.Color), Opacity: rs.Opacity}
	}
	return s
}

func outlineStyle(o config.OutlineConfig) render.OutlineStyle {
	return render.OutlineStyle{
		Color:     mgl32.Vec3(o.Color),
		Thickness: o.Thickness,
		Opacity:   o.Opacity,
	}
}

// CameraSettings converts the camera config. Angles are degrees in the config.
func CameraSettings(cc config.CameraConfig) camera.Settings {
	return camera.Settings{
		Distance:        cc.Distance,
		MinDistance:     cc.MinDistance,
		MaxDistance:     cc.MaxDistance,
		Pitch:           mgl32.DegToRad(cc.Pitch),
		Yaw:             mgl32.DegToRad(cc.Yaw),
		FovY:            mgl32.DegToRad(cc.FovDegrees),
		DragSensitivity: cc.OrbitSensitivity,
		ZoomSensitivity: cc.ZoomSensitivity,
		FocusFrequency:  cc.FocusFrequency,
		FocusDamping:    cc.FocusDamping,
	}
}

// GestureParams returns the drag tuning for the configured scene.
func GestureParams(cfg *config.Config) gesture.Params {
	return gesture.Params{
		Sensitivity:  cfg.Interaction.DragSensitivity,
		DeadZone:     cfg.Interaction.ClickDeadZone,
		Extent:       cfg.Scene.GroundExtent,
		SelectOnDrag: cfg.Interaction.SelectOnDrag,
	}
}
