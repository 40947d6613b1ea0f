package viewer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/twinview/internal/config"
	"github.com/Faultbox/twinview/internal/engine/input"
	"github.com/Faultbox/twinview/internal/scene"
)

// ErrNoTarget is returned when a model command runs without a selection.
var ErrNoTarget = errors.New("no model selected")

// Command is a user action from the panel or the keyboard.
type Command int

const (
	CmdNone Command = iota
	CmdSelect
	CmdSelectNext
	CmdClearSelection
	CmdTiltX
	CmdTurnLeft
	CmdTurnRight
	CmdRollZ
	CmdRaise
	CmdLower
	CmdToggleVisible
	CmdOpacityDown
	CmdOpacityUp
	CmdFocus
	CmdResetCamera
	CmdLoadFile
	CmdScreenshot
	CmdQuit
)

var commandNames = map[Command]string{
	CmdNone:           "none",
	CmdSelect:         "select",
	CmdSelectNext:     "select-next",
	CmdClearSelection: "clear-selection",
	CmdTiltX:          "tilt-x",
	CmdTurnLeft:       "turn-left",
	CmdTurnRight:      "turn-right",
	CmdRollZ:          "roll-z",
	CmdRaise:          "raise",
	CmdLower:          "lower",
	CmdToggleVisible:  "toggle-visible",
	CmdOpacityDown:    "opacity-down",
	CmdOpacityUp:      "opacity-up",
	CmdFocus:          "focus",
	CmdResetCamera:    "reset-camera",
	CmdLoadFile:       "load-file",
	CmdScreenshot:     "screenshot",
	CmdQuit:           "quit",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// targetsModel reports whether the command acts on one model.
func (c Command) targetsModel() bool {
	switch c {
	case CmdSelect, CmdTiltX, CmdTurnLeft, CmdTurnRight, CmdRollZ,
		CmdRaise, CmdLower, CmdToggleVisible, CmdOpacityDown, CmdOpacityUp,
		CmdFocus, CmdLoadFile:
		return true
	}
	return false
}

// Camera is the part of the orbit camera commands drive.
type Camera interface {
	FitToBounds(lo, hi mgl32.Vec3)
	Reset()
}

// Steps are the increments of the model commands.
type Steps struct {
	Turn    float32 // radians
	Toggle  float32 // radians
	Raise   float32
	Opacity float32
}

// StepsFromConfig converts the interaction config. Angles are degrees there.
func StepsFromConfig(ic config.InteractionConfig) Steps {
	return Steps{
		Turn:    mgl32.DegToRad(ic.RotateStepDegrees),
		Toggle:  mgl32.DegToRad(ic.ToggleDegrees),
		Raise:   ic.RaiseStep,
		Opacity: ic.OpacityStep,
	}
}

// Actions applies commands to the registry and the camera. Commands the
// viewer owns itself (load file, screenshot, quit) are not handled here.
type Actions struct {
	reg    *scene.Registry
	camera Camera
	steps  Steps
}

// NewActions creates an action dispatcher.
func NewActions(reg *scene.Registry, cam Camera, steps Steps) *Actions {
	return &Actions{reg: reg, camera: cam, steps: steps}
}

// Target resolves the model a command acts on: id when given, otherwise
// the current selection.
func (a *Actions) Target(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	sel, ok := a.reg.Selected()
	if !ok {
		return "", ErrNoTarget
	}
	return sel.ID, nil
}

// Run applies cmd. id names the target model; empty means the selection.
func (a *Actions) Run(cmd Command, id string) error {
	if cmd.targetsModel() {
		var err error
		if id, err = a.Target(id); err != nil {
			return err
		}
	}

	switch cmd {
	case CmdNone, CmdLoadFile, CmdScreenshot, CmdQuit:
		return nil
	case CmdSelect:
		return a.reg.Select(id)
	case CmdSelectNext:
		a.reg.SelectNext()
		return nil
	case CmdClearSelection:
		a.reg.ClearSelection()
		return nil
	case CmdTiltX:
		return a.reg.ToggleRotation(id, scene.AxisX, a.steps.Toggle)
	case CmdTurnLeft:
		return a.reg.RotateBy(id, scene.AxisY, -a.steps.Turn)
	case CmdTurnRight:
		return a.reg.RotateBy(id, scene.AxisY, a.steps.Turn)
	case CmdRollZ:
		return a.reg.ToggleRotation(id, scene.AxisZ, a.steps.Toggle)
	case CmdRaise:
		return a.reg.Raise(id, a.steps.Raise)
	case CmdLower:
		return a.reg.Raise(id, -a.steps.Raise)
	case CmdToggleVisible:
		if err := a.reg.ToggleVisible(id); err != nil {
			return err
		}
		// A hidden model cannot stay selected.
		if rec, ok := a.reg.Get(id); ok && !rec.Visible && rec.Selected {
			a.reg.ClearSelection()
		}
		return nil
	case CmdOpacityDown:
		return a.stepOpacity(id, -a.steps.Opacity)
	case CmdOpacityUp:
		return a.stepOpacity(id, a.steps.Opacity)
	case CmdFocus:
		rec, ok := a.reg.Get(id)
		if !ok {
			return fmt.Errorf("%w: %s", scene.ErrUnknownModel, id)
		}
		if a.camera != nil {
			box := scene.BoxOf(rec)
			a.camera.FitToBounds(box.Min, box.Max)
		}
		return nil
	case CmdResetCamera:
		if a.camera != nil {
			a.camera.Reset()
		}
		return nil
	}
	return fmt.Errorf("unhandled command %v", cmd)
}

// stepOpacity changes the base opacity of a model. The registry clamps it.
func (a *Actions) stepOpacity(id string, delta float32) error {
	rec, ok := a.reg.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", scene.ErrUnknownModel, id)
	}
	return a.reg.SetOpacity(id, rec.Opacity+delta)
}

// KeyCommand maps a key press to a command. Auto-repeat only repeats the
// stepping commands.
func KeyCommand(ev input.Event) Command {
	if ev.Type != input.EventKeyDown {
		return CmdNone
	}

	var cmd Command
	switch ev.Key {
	case sdl.SCANCODE_TAB:
		cmd = CmdSelectNext
	case sdl.SCANCODE_ESCAPE:
		cmd = CmdClearSelection
	case sdl.SCANCODE_R:
		if ev.Shift() {
			cmd = CmdTurnLeft
		} else {
			cmd = CmdTurnRight
		}
	case sdl.SCANCODE_T:
		cmd = CmdTiltX
	case sdl.SCANCODE_PAGEUP:
		cmd = CmdRaise
	case sdl.SCANCODE_PAGEDOWN:
		cmd = CmdLower
	case sdl.SCANCODE_H:
		cmd = CmdToggleVisible
	case sdl.SCANCODE_LEFTBRACKET:
		cmd = CmdOpacityDown
	case sdl.SCANCODE_RIGHTBRACKET:
		cmd = CmdOpacityUp
	case sdl.SCANCODE_F:
		cmd = CmdFocus
	case sdl.SCANCODE_F12:
		cmd = CmdScreenshot
	case sdl.SCANCODE_Q:
		if ev.Ctrl() {
			cmd = CmdQuit
		}
	}

	if ev.Repeat {
		switch cmd {
		case CmdTurnLeft, CmdTurnRight, CmdRaise, CmdLower, CmdOpacityDown, CmdOpacityUp:
		default:
			return CmdNone
		}
	}
	return cmd
}
