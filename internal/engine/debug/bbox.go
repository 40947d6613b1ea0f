package debug

import "github.com/go-gl/mathgl/mgl32"

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// BoxWireframe returns line pairs for the 12 edges of an axis-aligned box.
// The corners may be given in any order.
func BoxWireframe(a, b mgl32.Vec3, color mgl32.Vec3) []LineVertex {
	lo := mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
	hi := mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}

	corner := func(x, y, z int) LineVertex {
		p := lo
		if x == 1 {
			p[0] = hi[0]
		}
		if y == 1 {
			p[1] = hi[1]
		}
		if z == 1 {
			p[2] = hi[2]
		}
		return LineVertex{Position: p, Color: color}
	}

	edges := [12][2][3]int{
		// Bottom face
		{{0, 0, 0}, {1, 0, 0}}, {{1, 0, 0}, {1, 0, 1}}, {{1, 0, 1}, {0, 0, 1}}, {{0, 0, 1}, {0, 0, 0}},
		// Top face
		{{0, 1, 0}, {1, 1, 0}}, {{1, 1, 0}, {1, 1, 1}}, {{1, 1, 1}, {0, 1, 1}}, {{0, 1, 1}, {0, 1, 0}},
		// Vertical edges
		{{0, 0, 0}, {0, 1, 0}}, {{1, 0, 0}, {1, 1, 0}}, {{1, 0, 1}, {1, 1, 1}}, {{0, 0, 1}, {0, 1, 1}},
	}

	vertices := make([]LineVertex, 0, BBoxWireframeVertexCount)
	for _, e := range edges {
		vertices = append(vertices,
			corner(e[0][0], e[0][1], e[0][2]),
			corner(e[1][0], e[1][1], e[1][2]),
		)
	}
	return vertices
}
