package assets

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is triangle geometry ready for upload.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32

	// Bounding box (calculated on load)
	BoundsMin mgl32.Vec3
	BoundsMax mgl32.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		m.BoundsMin = mgl32.Vec3{}
		m.BoundsMax = mgl32.Vec3{}
		return
	}
	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < m.BoundsMin[i] {
				m.BoundsMin[i] = p[i]
			}
			if p[i] > m.BoundsMax[i] {
				m.BoundsMax[i] = p[i]
			}
		}
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() mgl32.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Mul(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() mgl32.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// CalculateNormals computes smooth vertex normals by accumulating
// area-weighted face normals.
func (m *Mesh) CalculateNormals() {
	normals := make([]mgl32.Vec3, len(m.Positions))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(m.Positions) || int(b) >= len(m.Positions) || int(c) >= len(m.Positions) {
			continue
		}
		e1 := m.Positions[b].Sub(m.Positions[a])
		e2 := m.Positions[c].Sub(m.Positions[a])
		n := e1.Cross(e2)
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	m.Normals = normals
}

// Normalize centers the mesh on the origin and scales it uniformly so its
// largest extent is 1, making it fit the unit proxy cube.
func (m *Mesh) Normalize() {
	m.CalculateBounds()
	size := m.Size()
	largest := size.X()
	if size.Y() > largest {
		largest = size.Y()
	}
	if size.Z() > largest {
		largest = size.Z()
	}
	if largest <= 0 {
		return
	}

	center := m.Center()
	s := 1 / largest
	for i, p := range m.Positions {
		m.Positions[i] = p.Sub(center).Mul(s)
	}
	m.CalculateBounds()
}

// Interleaved returns position+normal vertex data (6 floats per vertex).
func (m *Mesh) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Positions)*6)
	for i, p := range m.Positions {
		n := mgl32.Vec3{0, 1, 0}
		if i < len(m.Normals) {
			n = m.Normals[i]
		}
		out = append(out, p.X(), p.Y(), p.Z(), n.X(), n.Y(), n.Z())
	}
	return out
}

// CubeMesh returns a unit cube centered on the origin with flat face normals.
// It stands in for models that are loading or failed to load.
func CubeMesh() *Mesh {
	m := NewMesh("cube")
	faces := []struct {
		normal mgl32.Vec3
		u, v   mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	for _, f := range faces {
		base := uint32(len(m.Positions))
		c := f.normal.Mul(0.5)
		hu, hv := f.u.Mul(0.5), f.v.Mul(0.5)
		m.Positions = append(m.Positions,
			c.Sub(hu).Sub(hv),
			c.Add(hu).Sub(hv),
			c.Add(hu).Add(hv),
			c.Sub(hu).Add(hv),
		)
		m.Normals = append(m.Normals, f.normal, f.normal, f.normal, f.normal)
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	m.CalculateBounds()
	return m
}
