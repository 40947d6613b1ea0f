package viewer

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/twinview/internal/engine/input"
	"github.com/Faultbox/twinview/internal/scene"
)

type fakeCamera struct {
	fits   int
	resets int
	lo, hi mgl32.Vec3
}

func (c *fakeCamera) FitToBounds(lo, hi mgl32.Vec3) {
	c.fits++
	c.lo, c.hi = lo, hi
}

func (c *fakeCamera) Reset() { c.resets++ }

func newTestRegistry(t *testing.T) *scene.Registry {
	t.Helper()
	a := scene.NewModelRecord("ref", "Design", "a.glb", scene.RoleReference)
	a.Position = mgl32.Vec3{-2, 0.5, 0}
	b := scene.NewModelRecord("scan", "Scan", "b.glb", scene.RoleReality)
	b.Position = mgl32.Vec3{2, 0.5, 0}
	reg, err := scene.NewRegistry(a, b)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return reg
}

var testSteps = Steps{Turn: mgl32.DegToRad(45), Toggle: mgl32.DegToRad(90), Raise: 0.25, Opacity: 0.25}

func TestModelCommandsNeedTarget(t *testing.T) {
	a := NewActions(newTestRegistry(t), nil, testSteps)
	for _, cmd := range []Command{CmdTiltX, CmdTurnRight, CmdRaise, CmdToggleVisible, CmdOpacityDown, CmdFocus} {
		if err := a.Run(cmd, ""); !errors.Is(err, ErrNoTarget) {
			t.Errorf("%v: expected ErrNoTarget, got %v", cmd, err)
		}
	}
}

func TestRunOnSelection(t *testing.T) {
	reg := newTestRegistry(t)
	a := NewActions(reg, nil, testSteps)

	if err := a.Run(CmdSelect, "scan"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	steps := []Command{CmdTurnRight, CmdTurnRight, CmdTurnLeft, CmdTiltX, CmdRaise, CmdRaise, CmdLower}
	for _, cmd := range steps {
		if err := a.Run(cmd, ""); err != nil {
			t.Fatalf("%v failed: %v", cmd, err)
		}
	}

	rec, _ := reg.Get("scan")
	want := mgl32.Vec3{mgl32.DegToRad(90), mgl32.DegToRad(45), 0}
	if !rec.Rotation.ApproxEqual(want) {
		t.Errorf("expected rotation %v, got %v", want, rec.Rotation)
	}
	if d := rec.Position.Y() - 0.75; d > 1e-6 || d < -1e-6 {
		t.Errorf("expected y 0.75, got %v", rec.Position.Y())
	}

	other, _ := reg.Get("ref")
	if other.Rotation != (mgl32.Vec3{}) || other.Position.Y() != 0.5 {
		t.Error("commands leaked to an unselected model")
	}
}

func TestTiltTwiceRestores(t *testing.T) {
	reg := newTestRegistry(t)
	a := NewActions(reg, nil, testSteps)

	for i := 0; i < 2; i++ {
		if err := a.Run(CmdTiltX, "ref"); err != nil {
			t.Fatal(err)
		}
	}
	rec, _ := reg.Get("ref")
	if rec.Rotation.X() != 0 {
		t.Errorf("expected X rotation restored to 0, got %v", rec.Rotation.X())
	}
}

func TestHidingClearsSelection(t *testing.T) {
	reg := newTestRegistry(t)
	a := NewActions(reg, nil, testSteps)
	_ = a.Run(CmdSelect, "ref")

	before, _ := reg.Get("ref")
	if err := a.Run(CmdToggleVisible, ""); err != nil {
		t.Fatal(err)
	}
	after, _ := reg.Get("ref")
	if after.Visible || after.Selected {
		t.Errorf("expected hidden, unselected model, got %+v", after)
	}
	if after.Position != before.Position || after.Rotation != before.Rotation {
		t.Error("hiding changed the transform")
	}
}

func TestOpacitySteps(t *testing.T) {
	reg := newTestRegistry(t)
	a := NewActions(reg, nil, testSteps)

	tests := []struct {
		cmd  Command
		want float32
	}{
		{CmdOpacityDown, 0.75},
		{CmdOpacityDown, 0.5},
		{CmdOpacityUp, 0.75},
		{CmdOpacityUp, 1},
		{CmdOpacityUp, 1},
		{CmdOpacityDown, 0.75},
		{CmdOpacityDown, 0.5},
		{CmdOpacityDown, 0.25},
		{CmdOpacityDown, 0},
		{CmdOpacityDown, 0},
	}
	for i, tt := range tests {
		if err := a.Run(tt.cmd, "ref"); err != nil {
			t.Fatalf("step %d: %v failed: %v", i, tt.cmd, err)
		}
		rec, _ := reg.Get("ref")
		if rec.Opacity != tt.want {
			t.Errorf("step %d: %v: expected opacity %v, got %v", i, tt.cmd, tt.want, rec.Opacity)
		}
	}

	if other, _ := reg.Get("scan"); other.Opacity != 1 {
		t.Errorf("opacity leaked to scan: %v", other.Opacity)
	}
}

func TestCameraCommands(t *testing.T) {
	reg := newTestRegistry(t)
	cam := &fakeCamera{}
	a := NewActions(reg, cam, testSteps)

	if err := a.Run(CmdFocus, "scan"); err != nil {
		t.Fatal(err)
	}
	if cam.fits != 1 {
		t.Fatalf("expected one fit, got %d", cam.fits)
	}
	center := cam.lo.Add(cam.hi).Mul(0.5)
	if !center.ApproxEqual(mgl32.Vec3{2, 0.5, 0}) {
		t.Errorf("expected focus on model center, got %v", center)
	}

	if err := a.Run(CmdResetCamera, ""); err != nil {
		t.Fatal(err)
	}
	if cam.resets != 1 {
		t.Errorf("expected one reset, got %d", cam.resets)
	}
}

func TestSelectNextAndClear(t *testing.T) {
	reg := newTestRegistry(t)
	a := NewActions(reg, nil, testSteps)

	_ = a.Run(CmdSelectNext, "")
	if sel, ok := reg.Selected(); !ok || sel.ID != "ref" {
		t.Fatalf("expected ref selected, got %v %v", sel.ID, ok)
	}
	_ = a.Run(CmdSelectNext, "")
	if sel, _ := reg.Selected(); sel.ID != "scan" {
		t.Errorf("expected scan selected, got %v", sel.ID)
	}
	_ = a.Run(CmdClearSelection, "")
	if _, ok := reg.Selected(); ok {
		t.Error("expected no selection")
	}
}

func TestKeyCommand(t *testing.T) {
	key := func(sc sdl.Scancode, mod uint16, repeat bool) input.Event {
		return input.Event{Type: input.EventKeyDown, Key: sc, Mod: mod, Repeat: repeat}
	}

	tests := []struct {
		name string
		ev   input.Event
		want Command
	}{
		{"tab", key(sdl.SCANCODE_TAB, 0, false), CmdSelectNext},
		{"escape", key(sdl.SCANCODE_ESCAPE, 0, false), CmdClearSelection},
		{"r", key(sdl.SCANCODE_R, 0, false), CmdTurnRight},
		{"shift r", key(sdl.SCANCODE_R, sdl.KMOD_LSHIFT, false), CmdTurnLeft},
		{"t", key(sdl.SCANCODE_T, 0, false), CmdTiltX},
		{"page up", key(sdl.SCANCODE_PAGEUP, 0, false), CmdRaise},
		{"page down repeat", key(sdl.SCANCODE_PAGEDOWN, 0, true), CmdLower},
		{"h", key(sdl.SCANCODE_H, 0, false), CmdToggleVisible},
		{"h repeat", key(sdl.SCANCODE_H, 0, true), CmdNone},
		{"[", key(sdl.SCANCODE_LEFTBRACKET, 0, false), CmdOpacityDown},
		{"] repeat", key(sdl.SCANCODE_RIGHTBRACKET, 0, true), CmdOpacityUp},
		{"f", key(sdl.SCANCODE_F, 0, false), CmdFocus},
		{"f12", key(sdl.SCANCODE_F12, 0, false), CmdScreenshot},
		{"q", key(sdl.SCANCODE_Q, 0, false), CmdNone},
		{"ctrl q", key(sdl.SCANCODE_Q, sdl.KMOD_LCTRL, false), CmdQuit},
		{"key up", input.Event{Type: input.EventKeyUp, Key: sdl.SCANCODE_TAB}, CmdNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyCommand(tt.ev); got != tt.want {
				t.Errorf("KeyCommand = %v, want %v", got, tt.want)
			}
		})
	}
}
