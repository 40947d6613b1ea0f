// Package scene holds the model registry and overlap detection.
package scene

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Role describes what a model stands for in the comparison.
type Role int

const (
	RoleNeutral Role = iota
	RoleReference
	RoleReality
)

var roleNames = map[Role]string{
	RoleNeutral:   "neutral",
	RoleReference: "reference",
	RoleReality:   "reality",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole converts a config string into a Role.
// An empty string maps to RoleNeutral.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleNeutral, nil
	}
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleNeutral, fmt.Errorf("unknown role %q", s)
}

// Axis selects one Euler component.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ModelRecord is the authoritative state of one model in the scene.
type ModelRecord struct {
	ID     string
	Name   string
	Source string
	Role   Role

	Position mgl32.Vec3
	// Rotation is the target Euler rotation in radians (XYZ order).
	// The displayed rotation eases toward it.
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3

	Visible  bool
	Selected bool
	Opacity  float32

	// Per-axis toggle state for ToggleRotation.
	toggled    [3]bool
	toggleBase [3]float32
}

// NewModelRecord returns a visible, unselected, opaque record with unit scale.
func NewModelRecord(id, name, source string, role Role) ModelRecord {
	if name == "" {
		name = id
	}
	return ModelRecord{
		ID:      id,
		Name:    name,
		Source:  source,
		Role:    role,
		Scale:   mgl32.Vec3{1, 1, 1},
		Visible: true,
		Opacity: 1,
	}
}

// Transform returns the model matrix: translate * rotX * rotY * rotZ * scale.
func Transform(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	m = m.Mul4(mgl32.HomogRotate3DX(rotation.X()))
	m = m.Mul4(mgl32.HomogRotate3DY(rotation.Y()))
	m = m.Mul4(mgl32.HomogRotate3DZ(rotation.Z()))
	return m.Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}
