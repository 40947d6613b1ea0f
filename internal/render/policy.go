// Package render decides how each model is drawn and draws it with OpenGL.
package render

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/twinview/internal/scene"
)

// PassKind identifies a draw pass.
type PassKind int

const (
	PassSolid PassKind = iota
	PassOutline
	PassGhost
)

func (k PassKind) String() string {
	switch k {
	case PassSolid:
		return "solid"
	case PassOutline:
		return "outline"
	case PassGhost:
		return "ghost"
	}
	return "unknown"
}

// Blend mode of a pass.
type Blend int

const (
	BlendNone Blend = iota
	BlendAlpha
	BlendAdditive
)

// Cull mode of a pass.
type Cull int

const (
	CullBack Cull = iota
	CullFront
	CullNone
)

// Pass is one material applied to a model.
type Pass struct {
	Kind       PassKind
	Color      mgl32.Vec3
	Opacity    float32
	DepthWrite bool
	Cull       Cull
	Blend      Blend
	Thickness  float32 // outline width in pixels
	XRay       bool    // ignore the depth buffer so occluded parts show
}

// RoleStyle is the look of a role.
type RoleStyle struct {
	Color   mgl32.Vec3
	Opacity float32
}

// OutlineStyle is the look of a selection or hover outline.
type OutlineStyle struct {
	Color     mgl32.Vec3
	Thickness float32
	Opacity   float32
}

// Styles holds the material policy.
type Styles struct {
	Roles          map[scene.Role]RoleStyle
	OverlapOpacity float32
	Ghosts         bool
	Selected       OutlineStyle
	Hovered        OutlineStyle
}

// DefaultStyles returns the built-in policy.
func DefaultStyles() Styles {
	return Styles{
		Roles: map[scene.Role]RoleStyle{
			scene.RoleReference: {Color: mgl32.Vec3{0.35, 0.62, 0.95}, Opacity: 1},
			scene.RoleReality:   {Color: mgl32.Vec3{0.95, 0.62, 0.30}, Opacity: 1},
			scene.RoleNeutral:   {Color: mgl32.Vec3{0.75, 0.75, 0.75}, Opacity: 1},
		},
		OverlapOpacity: 0.4,
		Ghosts:         true,
		Selected:       OutlineStyle{Color: mgl32.Vec3{1, 0.9, 0.2}, Thickness: 3, Opacity: 1},
		Hovered:        OutlineStyle{Color: mgl32.Vec3{1, 1, 1}, Thickness: 1.5, Opacity: 0.5},
	}
}

// Role returns the style of a role, falling back to neutral.
func (s Styles) Role(r scene.Role) RoleStyle {
	if st, ok := s.Roles[r]; ok {
		return st
	}
	if st, ok := s.Roles[scene.RoleNeutral]; ok {
		return st
	}
	return RoleStyle{Color: mgl32.Vec3{0.75, 0.75, 0.75}, Opacity: 1}
}

// Frame is per-frame state the policy depends on.
type Frame struct {
	Hovered string
	// Visible maps record IDs to visibility, for overlap partners.
	Visible map[string]bool
}

// NewFrame builds a Frame from the current records.
func NewFrame(records []scene.ModelRecord, hovered string) Frame {
	f := Frame{Hovered: hovered, Visible: make(map[string]bool, len(records))}
	for _, rec := range records {
		f.Visible[rec.ID] = rec.Visible
	}
	return f
}

// Compose returns the passes for one record. Hidden records get none.
func (s Styles) Compose(rec scene.ModelRecord, overlap scene.OverlapInfo, frame Frame) []Pass {
	if !rec.Visible {
		return nil
	}
	role := s.Role(rec.Role)

	solid := Pass{
		Kind:       PassSolid,
		Color:      role.Color,
		Opacity:    rec.Opacity,
		DepthWrite: true,
		Cull:       CullBack,
		Blend:      BlendNone,
	}
	if rec.Opacity < 1 {
		solid.Blend = BlendAlpha
	}
	passes := []Pass{solid}

	switch {
	case rec.Selected:
		passes = append(passes, outline(s.Selected))
	case frame.Hovered != "" && frame.Hovered == rec.ID:
		passes = append(passes, outline(s.Hovered))
	}

	if s.Ghosts && overlap.Overlapping && anyVisible(overlap.With, frame.Visible) {
		passes = append(passes, Pass{
			Kind:       PassGhost,
			Color:      role.Color,
			Opacity:    s.OverlapOpacity,
			DepthWrite: false,
			Cull:       CullFront,
			Blend:      BlendAdditive,
			XRay:       true,
		})
	}
	return passes
}

func outline(o OutlineStyle) Pass {
	return Pass{
		Kind:       PassOutline,
		Color:      o.Color,
		Opacity:    o.Opacity,
		DepthWrite: false,
		Cull:       CullFront,
		Blend:      BlendAlpha,
		Thickness:  o.Thickness,
	}
}

func anyVisible(ids []string, visible map[string]bool) bool {
	for _, id := range ids {
		if visible[id] {
			return true
		}
	}
	return false
}

// DrawItem is one pass bound to a model.
type DrawItem struct {
	ID   string
	Pass Pass
}

// Plan composes every record and orders the result for drawing: solids
// first, then outlines, then ghosts. Registry order is kept within a kind.
func (s Styles) Plan(records []scene.ModelRecord, overlaps map[string]scene.OverlapInfo, hovered string) []DrawItem {
	frame := NewFrame(records, hovered)
	var items []DrawItem
	for _, rec := range records {
		for _, p := range s.Compose(rec, overlaps[rec.ID], frame) {
			items = append(items, DrawItem{ID: rec.ID, Pass: p})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Pass.Kind < items[j].Pass.Kind
	})
	return items
}
