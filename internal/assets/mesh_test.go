package assets

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCubeMesh(t *testing.T) {
	m := CubeMesh()

	if got := m.TriangleCount(); got != 12 {
		t.Errorf("expected 12 triangles, got %d", got)
	}
	if len(m.Positions) != 24 || len(m.Normals) != 24 {
		t.Errorf("expected 24 vertices with normals, got %d/%d", len(m.Positions), len(m.Normals))
	}
	if m.BoundsMin != (mgl32.Vec3{-0.5, -0.5, -0.5}) || m.BoundsMax != (mgl32.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("unexpected bounds %v %v", m.BoundsMin, m.BoundsMax)
	}

	// Counter-clockwise winding: the geometric normal matches the stored one.
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		if !n.ApproxEqualThreshold(m.Normals[m.Indices[i]], 1e-5) {
			t.Fatalf("triangle %d winding: geometric %v, stored %v", i/3, n, m.Normals[m.Indices[i]])
		}
	}
}

func TestNormalize(t *testing.T) {
	m := NewMesh("box")
	m.Positions = []mgl32.Vec3{{10, 0, 0}, {14, 2, 1}, {12, 1, 0}}
	m.Indices = []uint32{0, 1, 2}
	m.Normalize()

	size := m.Size()
	if size.X() != 1 {
		t.Errorf("expected largest extent 1, got %v", size)
	}
	if !m.Center().ApproxEqualThreshold(mgl32.Vec3{}, 1e-6) {
		t.Errorf("expected centered mesh, got center %v", m.Center())
	}
	if !size.ApproxEqualThreshold(mgl32.Vec3{1, 0.5, 0.25}, 1e-6) {
		t.Errorf("expected uniform scale, got size %v", size)
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	m := NewMesh("point")
	m.Positions = []mgl32.Vec3{{3, 3, 3}}
	m.Normalize()
	if m.Positions[0] != (mgl32.Vec3{3, 3, 3}) {
		t.Errorf("degenerate mesh must be left alone, got %v", m.Positions[0])
	}
}

func TestCalculateNormals(t *testing.T) {
	m := NewMesh("quad")
	m.Positions = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	m.Indices = []uint32{0, 1, 2, 0, 2, 3}
	m.CalculateNormals()

	for i, n := range m.Normals {
		if !n.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-6) {
			t.Errorf("vertex %d: expected +Z normal, got %v", i, n)
		}
	}
}

func TestInterleaved(t *testing.T) {
	m := NewMesh("tri")
	m.Positions = []mgl32.Vec3{{1, 2, 3}}
	m.Normals = []mgl32.Vec3{{0, 0, 1}}

	got := m.Interleaved()
	want := []float32{1, 2, 3, 0, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}
