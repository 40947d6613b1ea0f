// Package lighting provides lighting utilities for 3D rendering.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts an azimuth (degrees around +Y, 0 facing +Z) and an
// elevation (degrees above the horizon) to a unit vector pointing towards
// the light.
func SunDirection(azimuth, elevation float32) mgl32.Vec3 {
	az := float64(mgl32.DegToRad(azimuth))
	el := float64(mgl32.DegToRad(elevation))

	x := float32(math.Cos(el) * math.Sin(az))
	y := float32(math.Sin(el))
	z := float32(math.Cos(el) * math.Cos(az))

	return mgl32.Vec3{x, y, z}
}

// Ambient is the constant term added to diffuse lighting so faces turned
// away from the light stay readable.
const Ambient = 0.35
