package viewer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/twinview/internal/config"
	"github.com/Faultbox/twinview/internal/scene"
)

func TestBuildRecordsDefaults(t *testing.T) {
	records, err := BuildRecords(config.Default())
	if err != nil {
		t.Fatalf("BuildRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	ref, real := records[0], records[1]
	if ref.Role != scene.RoleReference || real.Role != scene.RoleReality {
		t.Errorf("unexpected roles %v, %v", ref.Role, real.Role)
	}
	if ref.Position != (mgl32.Vec3{-1.2, 0.5, 0}) {
		t.Errorf("unexpected position %v", ref.Position)
	}
	if !ref.Visible || ref.Selected {
		t.Error("expected visible, unselected records")
	}
	if scene.Overlaps(ref, real) {
		t.Error("default models should not overlap")
	}
}

func TestBuildRecordsConversions(t *testing.T) {
	half := float32(0.5)
	cfg := config.Default()
	cfg.Render.Roles["reality"] = config.RoleStyleConfig{Color: [3]float32{1, 0, 0}, Opacity: 0.7}
	cfg.Scene.Models = []config.ModelConfig{
		{ID: "a", Source: "a.glb", Role: "reference", Rotation: [3]float32{90, 0, 180}, Opacity: &half},
		{ID: "b", Source: "b.glb", Role: "reality", Hidden: true},
	}

	records, err := BuildRecords(cfg)
	if err != nil {
		t.Fatalf("BuildRecords failed: %v", err)
	}

	a, b := records[0], records[1]
	want := mgl32.Vec3{mgl32.DegToRad(90), 0, mgl32.DegToRad(180)}
	if !a.Rotation.ApproxEqual(want) {
		t.Errorf("expected rotation %v, got %v", want, a.Rotation)
	}
	if a.Name != "a" {
		t.Errorf("expected name to default to id, got %q", a.Name)
	}
	if a.Opacity != 0.5 {
		t.Errorf("expected explicit opacity 0.5, got %v", a.Opacity)
	}
	if a.Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("expected unit scale, got %v", a.Scale)
	}
	if b.Opacity != 0.7 {
		t.Errorf("expected role default opacity 0.7, got %v", b.Opacity)
	}
	if b.Visible {
		t.Error("expected hidden model to be invisible")
	}
}

func TestBuildRecordsUnknownRole(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.Models = []config.ModelConfig{{ID: "x", Role: "blueprint"}}
	if _, err := BuildRecords(cfg); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestBuildStyles(t *testing.T) {
	rc := config.Default().Render
	rc.OverlapOpacity = 0.25
	rc.Ghosts = false
	rc.SelectedOutline.Thickness = 5
	rc.Roles["neutral"] = config.RoleStyleConfig{Color: [3]float32{0, 1, 0}, Opacity: 0.8}

	s := BuildStyles(rc)
	if s.OverlapOpacity != 0.25 || s.Ghosts {
		t.Errorf("unexpected ghost settings %v/%v", s.OverlapOpacity, s.Ghosts)
	}
	if s.Selected.Thickness != 5 {
		t.Errorf("expected selected thickness 5, got %v", s.Selected.Thickness)
	}
	n := s.Role(scene.RoleNeutral)
	if n.Color != (mgl32.Vec3{0, 1, 0}) || n.Opacity != 0.8 {
		t.Errorf("unexpected neutral style %+v", n)
	}
}

func TestCameraSettingsAndGestureParams(t *testing.T) {
	cfg := config.Default()
	cs := CameraSettings(cfg.Camera)
	if cs.Distance != cfg.Camera.Distance {
		t.Errorf("expected distance %v, got %v", cfg.Camera.Distance, cs.Distance)
	}
	if d := cs.FovY - mgl32.DegToRad(45); d > 1e-6 || d < -1e-6 {
		t.Errorf("expected fov in radians, got %v", cs.FovY)
	}

	p := GestureParams(cfg)
	if p.Extent != 3 || p.Sensitivity != 0.01 || !p.SelectOnDrag {
		t.Errorf("unexpected gesture params %+v", p)
	}
}
