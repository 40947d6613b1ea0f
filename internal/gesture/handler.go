// Package gesture maps pointer drags onto model positions.
package gesture

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/twinview/internal/scene"
)

// Pointer is one pointer sample in window pixels. Contacts is the number of
// fingers (or the mouse stand-in) taking part in the gesture.
type Pointer struct {
	X, Y     float32
	Contacts int
}

// State of a Handler.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Params tune drag mapping.
type Params struct {
	// Sensitivity converts pixels to world units.
	Sensitivity float32
	// DeadZone is the pixel distance a press may travel and still be a click.
	DeadZone float32
	// Extent clamps single-contact drags to [-Extent, Extent] on X and Z.
	Extent float32
	// SelectOnDrag lets a single-contact drag start on an unselected model
	// and select it. When false, unselected models ignore drags.
	SelectOnDrag bool
}

// DefaultParams returns the default drag tuning.
func DefaultParams() Params {
	return Params{
		Sensitivity:  0.01,
		DeadZone:     4,
		Extent:       3,
		SelectOnDrag: true,
	}
}

// Handler runs the drag state machine of one model.
type Handler struct {
	id     string
	params Params

	state    State
	anchor   mgl32.Vec3
	origin   Pointer
	contacts int
	moved    bool

	// Set when Begin selected the model; prior is the selection it replaced.
	selectedByDrag bool
	prior          string
}

// NewHandler creates an idle handler for a model.
func NewHandler(id string, params Params) *Handler {
	return &Handler{id: id, params: params}
}

// ID returns the model ID.
func (h *Handler) ID() string {
	return h.id
}

// State returns the current state.
func (h *Handler) State() State {
	return h.state
}

// Moved reports whether the current drag has left the dead zone.
func (h *Handler) Moved() bool {
	return h.moved
}

// Begin starts a drag. It returns false and stays idle when the model is
// hidden or unknown, or when a multi-contact gesture starts on an unselected
// model. A single contact on an unselected model selects it when
// SelectOnDrag is set.
func (h *Handler) Begin(reg *scene.Registry, p Pointer) bool {
	rec, ok := reg.Get(h.id)
	if !ok || !rec.Visible {
		return false
	}
	h.selectedByDrag = false
	h.prior = ""
	if !rec.Selected {
		if p.Contacts > 1 || !h.params.SelectOnDrag {
			return false
		}
		if prev, ok := reg.Selected(); ok {
			h.prior = prev.ID
		}
		if err := reg.Select(h.id); err != nil {
			return false
		}
		h.selectedByDrag = true
	}

	h.state = Dragging
	h.anchor = rec.Position
	h.origin = p
	h.contacts = contacts(p)
	h.moved = false
	return true
}

// Move applies the pointer delta since the drag origin to the anchor.
// A change in contact count re-anchors at the current position. Extra
// contacts that arrive while a drag-selected model is still inside the dead
// zone release it: the selection is undone and Move returns false so the
// gesture goes to the camera.
func (h *Handler) Move(reg *scene.Registry, p Pointer) bool {
	if h.state != Dragging {
		return false
	}
	rec, ok := reg.Get(h.id)
	if !ok || !rec.Visible {
		h.Cancel()
		return false
	}

	if c := contacts(p); c != h.contacts {
		if c > 1 && !rec.Selected {
			h.Cancel()
			return false
		}
		if c > 1 && h.selectedByDrag && !h.moved {
			h.release(reg, rec)
			return false
		}
		h.anchor = rec.Position
		h.origin = p
		h.contacts = c
		// A drag still inside the dead zone measures it from the new origin.
		return true
	}

	dx := p.X - h.origin.X
	dy := p.Y - h.origin.Y
	if !h.moved {
		if dx*dx+dy*dy < h.params.DeadZone*h.params.DeadZone {
			return true
		}
		h.moved = true
	}

	_ = reg.SetPosition(h.id, h.target(dx, dy))
	return true
}

// target maps a pixel delta onto a world position.
func (h *Handler) target(dx, dy float32) mgl32.Vec3 {
	s := h.params.Sensitivity
	if h.contacts > 1 {
		return h.anchor.Add(mgl32.Vec3{dx * s, -dy * s, 0})
	}
	pos := h.anchor.Add(mgl32.Vec3{dx * s, 0, dy * s})
	pos[0] = clamp(pos[0], -h.params.Extent, h.params.Extent)
	pos[2] = clamp(pos[2], -h.params.Extent, h.params.Extent)
	return pos
}

// End finishes the drag. It reports whether the gesture stayed inside the
// dead zone, i.e. was a click.
func (h *Handler) End() (click bool) {
	if h.state != Dragging {
		return false
	}
	click = !h.moved
	h.Cancel()
	return click
}

// Cancel returns to Idle without further changes.
func (h *Handler) Cancel() {
	h.state = Idle
	h.moved = false
	h.contacts = 0
	h.selectedByDrag = false
	h.prior = ""
}

// release undoes what Begin did to the registry and cancels the drag.
func (h *Handler) release(reg *scene.Registry, rec scene.ModelRecord) {
	if rec.Position != h.anchor {
		_ = reg.SetPosition(h.id, h.anchor)
	}
	if h.prior == "" || reg.Select(h.prior) != nil {
		reg.ClearSelection()
	}
	h.Cancel()
}

func contacts(p Pointer) int {
	if p.Contacts < 1 {
		return 1
	}
	return p.Contacts
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
