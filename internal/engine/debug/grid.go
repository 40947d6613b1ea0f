// Package debug provides debug visualization utilities.
package debug

import "github.com/go-gl/mathgl/mgl32"

// LineVertex is one endpoint of a colored line segment.
type LineVertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Grid colors.
var (
	GridColor  = mgl32.Vec3{0.32, 0.34, 0.38}
	AxisXColor = mgl32.Vec3{0.75, 0.3, 0.3}
	AxisZColor = mgl32.Vec3{0.3, 0.45, 0.8}
)

// GroundGrid generates line pairs covering the square [-extent, extent] on
// the XZ plane at y=0, split into the given number of divisions per side.
// The lines through the origin are tinted as X and Z axes.
func GroundGrid(extent float32, divisions int) []LineVertex {
	if extent <= 0 || divisions <= 0 {
		return nil
	}

	step := 2 * extent / float32(divisions)
	vertices := make([]LineVertex, 0, (divisions+1)*4)

	for i := 0; i <= divisions; i++ {
		c := -extent + float32(i)*step
		// Snap the middle line exactly onto the axis.
		if divisions%2 == 0 && i == divisions/2 {
			c = 0
		}

		alongZ, alongX := GridColor, GridColor
		if c == 0 {
			alongZ, alongX = AxisZColor, AxisXColor
		}

		vertices = append(vertices,
			LineVertex{mgl32.Vec3{c, 0, -extent}, alongZ},
			LineVertex{mgl32.Vec3{c, 0, extent}, alongZ},
			LineVertex{mgl32.Vec3{-extent, 0, c}, alongX},
			LineVertex{mgl32.Vec3{extent, 0, c}, alongX},
		)
	}

	return vertices
}

// Flatten packs line vertices as [x, y, z, r, g, b] floats for upload.
func Flatten(vertices []LineVertex) []float32 {
	out := make([]float32, 0, len(vertices)*6)
	for _, v := range vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2], v.Color[0], v.Color[1], v.Color[2])
	}
	return out
}
