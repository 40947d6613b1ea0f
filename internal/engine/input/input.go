// Package input converts SDL2 events into viewer events. Mouse, touch and
// pinch input are folded into a single pointer stream carrying a contact
// count, so the viewer handles both devices the same way.
package input

import (
	"math"

	"github.com/veandco/go-sdl2/sdl"
)

// touchMouseID marks mouse events SDL synthesizes from touches
// (SDL_TOUCH_MOUSEID). Touches are handled from finger events instead.
const touchMouseID = math.MaxUint32

// EventType identifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventPointerDown
	EventPointerMove
	EventPointerUp
	EventWheel
	EventDropFile
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Mod    uint16
	Repeat bool
	Width  int
	Height int

	// Pointer position in window coordinates.
	X, Y float32
	// Contacts is 1 for the primary button or a single finger, 2 for the
	// secondary/middle button or two or more fingers.
	Contacts int
	// Hover is set on moves while no contact is held.
	Hover bool

	Wheel float32
	Path  string
}

// Ctrl reports whether a control (or command on macOS) modifier was held.
func (e Event) Ctrl() bool {
	return e.Mod&uint16(sdl.KMOD_CTRL|sdl.KMOD_GUI) != 0
}

// Shift reports whether shift was held.
func (e Event) Shift() bool {
	return e.Mod&uint16(sdl.KMOD_SHIFT) != 0
}

// Input handles all input processing.
type Input struct {
	events []Event

	width, height float32

	// Held mouse contacts, 0 when no button is down.
	mouseContacts int
	mouseX        float32
	mouseY        float32

	fingers map[sdl.FingerID][2]float32
}

// New creates a new input handler for a window of the given size.
func New(width, height int) *Input {
	return &Input{
		events:  make([]Event, 0, 16),
		width:   float32(width),
		height:  float32(height),
		fingers: make(map[sdl.FingerID][2]float32),
	}
}

// SetSize updates the window size used to scale normalized touch positions.
func (i *Input) SetSize(width, height int) {
	i.width = float32(width)
	i.height = float32(height)
}

// Update polls SDL events and converts them.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.Translate(event) {
			quit = true
		}
	}
	return quit
}

// Translate converts one SDL event, appending to Events. It returns true for
// a quit request.
func (i *Input) Translate(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.push(Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.SetSize(int(e.Data1), int(e.Data2))
			i.push(Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)})
		}

	case *sdl.KeyboardEvent:
		ev := Event{Key: e.Keysym.Scancode, Mod: e.Keysym.Mod, Repeat: e.Repeat != 0}
		switch e.Type {
		case sdl.KEYDOWN:
			ev.Type = EventKeyDown
		case sdl.KEYUP:
			ev.Type = EventKeyUp
		default:
			return false
		}
		i.push(ev)

	case *sdl.MouseMotionEvent:
		if e.Which == touchMouseID {
			return false
		}
		i.mouseX, i.mouseY = float32(e.X), float32(e.Y)
		i.push(Event{
			Type:     EventPointerMove,
			X:        i.mouseX,
			Y:        i.mouseY,
			Contacts: i.mouseContacts,
			Hover:    i.mouseContacts == 0,
		})

	case *sdl.MouseButtonEvent:
		if e.Which == touchMouseID {
			return false
		}
		i.mouseX, i.mouseY = float32(e.X), float32(e.Y)
		contacts := 1
		if e.Button != sdl.BUTTON_LEFT {
			contacts = 2
		}
		switch e.Type {
		case sdl.MOUSEBUTTONDOWN:
			if i.mouseContacts != 0 {
				// A second button while one is held changes the contact count.
				i.mouseContacts = max(i.mouseContacts, contacts)
				i.push(Event{Type: EventPointerMove, X: i.mouseX, Y: i.mouseY, Contacts: i.mouseContacts})
				return false
			}
			i.mouseContacts = contacts
			i.push(Event{Type: EventPointerDown, X: i.mouseX, Y: i.mouseY, Contacts: contacts})
		case sdl.MOUSEBUTTONUP:
			if i.mouseContacts == 0 {
				return false
			}
			held := i.mouseContacts
			i.mouseContacts = 0
			i.push(Event{Type: EventPointerUp, X: i.mouseX, Y: i.mouseY, Contacts: held})
		}

	case *sdl.MouseWheelEvent:
		if e.Which == touchMouseID {
			return false
		}
		dy := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		i.push(Event{Type: EventWheel, X: i.mouseX, Y: i.mouseY, Wheel: dy})

	case *sdl.TouchFingerEvent:
		i.translateFinger(e)

	case *sdl.MultiGestureEvent:
		if e.NumFingers >= 2 && e.DDist != 0 {
			// Pinch: spread fingers zoom in like a wheel step forward.
			i.push(Event{Type: EventWheel, X: e.X * i.width, Y: e.Y * i.height, Wheel: e.DDist * 10})
		}

	case *sdl.DropEvent:
		if e.Type == sdl.DROPFILE && e.File != "" {
			i.push(Event{Type: EventDropFile, Path: e.File})
		}
	}
	return false
}

// translateFinger tracks active fingers and reports their centroid.
func (i *Input) translateFinger(e *sdl.TouchFingerEvent) {
	before := len(i.fingers)

	switch e.Type {
	case sdl.FINGERDOWN, sdl.FINGERMOTION:
		i.fingers[e.FingerID] = [2]float32{e.X * i.width, e.Y * i.height}
	case sdl.FINGERUP:
		delete(i.fingers, e.FingerID)
	default:
		return
	}

	after := len(i.fingers)
	x, y := i.centroid()
	contacts := min(after, 2)

	switch {
	case before == 0 && after > 0:
		i.push(Event{Type: EventPointerDown, X: x, Y: y, Contacts: contacts})
	case after == 0:
		x, y = e.X*i.width, e.Y*i.height
		i.push(Event{Type: EventPointerUp, X: x, Y: y, Contacts: min(before, 2)})
	default:
		i.push(Event{Type: EventPointerMove, X: x, Y: y, Contacts: contacts})
	}
}

func (i *Input) centroid() (float32, float32) {
	if len(i.fingers) == 0 {
		return 0, 0
	}
	var sx, sy float32
	for _, p := range i.fingers {
		sx += p[0]
		sy += p[1]
	}
	n := float32(len(i.fingers))
	return sx / n, sy / n
}

func (i *Input) push(e Event) {
	i.events = append(i.events, e)
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// MousePosition returns the last known mouse position.
func (i *Input) MousePosition() (float32, float32) {
	return i.mouseX, i.mouseY
}

// MouseHeld reports whether any mouse button is held.
func (i *Input) MouseHeld() bool {
	return i.mouseContacts != 0
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
