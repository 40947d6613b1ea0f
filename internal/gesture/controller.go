package gesture

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/twinview/internal/engine/picking"
	"github.com/Faultbox/twinview/internal/scene"
)

// Picker finds the model under a screen point.
type Picker interface {
	Pick(x, y float32) (id string, ok bool)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(x, y float32) (string, bool)

// Pick calls f.
func (f PickerFunc) Pick(x, y float32) (string, bool) {
	return f(x, y)
}

// CameraControl receives gestures that no model consumed.
type CameraControl interface {
	HandleDrag(deltaX, deltaY float32)
	HandlePan(deltaX, deltaY float32)
	HandleZoom(delta float32)
}

// press tracks one pointer-down to pointer-up sequence.
type press struct {
	active   bool
	target   string // model under the pointer at press time
	hit      bool
	origin   Pointer
	last     Pointer
	moved    bool
	contacts int
}

// Controller routes pointer events to model handlers or the camera.
type Controller struct {
	reg    *scene.Registry
	picker Picker
	camera CameraControl
	params Params

	handlers map[string]*Handler
	active   *Handler
	press    press
	hovered  string
}

// NewController creates a controller. camera may be nil.
func NewController(reg *scene.Registry, picker Picker, camera CameraControl, params Params) *Controller {
	return &Controller{
		reg:      reg,
		picker:   picker,
		camera:   camera,
		params:   params,
		handlers: make(map[string]*Handler),
	}
}

// Params returns the drag tuning.
func (c *Controller) Params() Params {
	return c.params
}

// Handler returns the handler of a model, creating it on first use.
func (c *Controller) Handler(id string) *Handler {
	h, ok := c.handlers[id]
	if !ok {
		h = NewHandler(id, c.params)
		c.handlers[id] = h
	}
	return h
}

// Hovered returns the model under the pointer while no button is held.
func (c *Controller) Hovered() string {
	return c.hovered
}

// Dragging returns the ID of the model being dragged.
func (c *Controller) Dragging() (string, bool) {
	if c.active == nil {
		return "", false
	}
	return c.active.ID(), true
}

// PointerDown starts a gesture, or updates the contact count of a running one.
func (c *Controller) PointerDown(p Pointer) {
	if c.press.active {
		c.PointerMove(p)
		return
	}

	id, hit := c.picker.Pick(p.X, p.Y)
	c.press = press{
		active:   true,
		target:   id,
		hit:      hit,
		origin:   p,
		last:     p,
		contacts: contacts(p),
	}
	c.hovered = ""

	if hit {
		h := c.Handler(id)
		if h.Begin(c.reg, p) {
			c.active = h
		}
	}
}

// PointerMove drives the active drag or the camera, or updates hover.
func (c *Controller) PointerMove(p Pointer) {
	if !c.press.active {
		c.hovered, _ = c.picker.Pick(p.X, p.Y)
		return
	}

	if c.active != nil {
		if c.active.Move(c.reg, p) {
			if c.active.Moved() {
				c.press.moved = true
			}
			c.press.last = p
			return
		}
		// The model let go of the press; the rest goes to the camera.
		c.active = nil
		c.press.moved = true
	}

	n := contacts(p)
	if n != c.press.contacts {
		c.press.contacts = n
		c.press.last = p
		return
	}

	if !c.press.moved {
		dx := p.X - c.press.origin.X
		dy := p.Y - c.press.origin.Y
		if dx*dx+dy*dy < c.params.DeadZone*c.params.DeadZone {
			return
		}
		c.press.moved = true
	}

	dx := p.X - c.press.last.X
	dy := p.Y - c.press.last.Y
	c.press.last = p
	if c.camera == nil {
		return
	}
	if n > 1 {
		c.camera.HandlePan(dx, dy)
	} else {
		c.camera.HandleDrag(dx, dy)
	}
}

// PointerUp ends the gesture. A press that never left the dead zone is a
// click: it selects the model under the pointer or clears the selection.
func (c *Controller) PointerUp(p Pointer) {
	if !c.press.active {
		return
	}

	click := !c.press.moved
	if c.active != nil {
		click = c.active.End()
		c.active = nil
	}

	if click {
		if c.press.hit {
			if rec, ok := c.reg.Get(c.press.target); ok && rec.Visible {
				_ = c.reg.Select(c.press.target)
			}
		} else {
			c.reg.ClearSelection()
		}
	}

	c.press = press{}
	c.hovered, _ = c.picker.Pick(p.X, p.Y)
}

// Wheel forwards scroll to the camera.
func (c *Controller) Wheel(delta float32) {
	if c.camera != nil {
		c.camera.HandleZoom(delta)
	}
}

// Cancel aborts any gesture in progress.
func (c *Controller) Cancel() {
	if c.active != nil {
		c.active.Cancel()
		c.active = nil
	}
	c.press = press{}
}

// Viewport describes the current projection for picking.
type Viewport struct {
	Width, Height float32
	InvViewProj   mgl32.Mat4
}

// ScenePicker casts a ray through the proxy boxes of visible records.
type ScenePicker struct {
	reg      *scene.Registry
	viewport func() Viewport
}

// NewScenePicker creates a picker over the registry.
func NewScenePicker(reg *scene.Registry, viewport func() Viewport) *ScenePicker {
	return &ScenePicker{reg: reg, viewport: viewport}
}

// Pick returns the nearest visible record under the screen point.
func (p *ScenePicker) Pick(x, y float32) (string, bool) {
	vp := p.viewport()
	if vp.Width <= 0 || vp.Height <= 0 {
		return "", false
	}
	ray := picking.ScreenToRay(x, y, vp.Width, vp.Height, vp.InvViewProj)

	var targets []picking.Target
	for _, rec := range p.reg.Records() {
		if !rec.Visible {
			continue
		}
		box := scene.BoxOf(rec)
		targets = append(targets, picking.Target{ID: rec.ID, Box: picking.NewAABB(box.Min, box.Max)})
	}

	id, _, hit := ray.Nearest(targets)
	return id, hit
}
