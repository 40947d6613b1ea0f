// Package camera provides the orbit camera used by the viewer.
package camera

import (
	gomath "math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"
)

// springFPS is the fixed rate the focus springs are stepped at.
const springFPS = 120

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center mgl32.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Projection
	FovY float32 // radians
	Near float32
	Far  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32

	home Settings

	// Focus glide. Center and distance follow their targets on critically
	// damped springs while gliding.
	spring      harmonica.Spring
	gliding     bool
	focusTarget mgl32.Vec3
	distTarget  float32
	centerVel   [3]float64
	distVel     float64
	accum       float32
}

// Settings configures an OrbitCamera.
type Settings struct {
	Distance        float32
	MinDistance     float32
	MaxDistance     float32
	Pitch           float32 // radians
	Yaw             float32 // radians
	FovY            float32 // radians
	DragSensitivity float32
	ZoomSensitivity float32
	FocusFrequency  float64 // spring angular frequency
	FocusDamping    float64 // spring damping ratio
}

// DefaultSettings returns settings sized for unit-scale models.
func DefaultSettings() Settings {
	return Settings{
		Distance:        8.0,
		MinDistance:     1.5,
		MaxDistance:     60.0,
		Pitch:           0.5,
		Yaw:             0.6,
		FovY:            mgl32.DegToRad(45),
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FocusFrequency:  6.0,
		FocusDamping:    1.0,
	}
}

// NewOrbitCamera creates a new orbit camera.
func NewOrbitCamera(s Settings) *OrbitCamera {
	c := &OrbitCamera{
		FovY:            s.FovY,
		Near:            0.05,
		Far:             500.0,
		MinDistance:     s.MinDistance,
		MaxDistance:     s.MaxDistance,
		MinPitch:        -1.4,
		MaxPitch:        1.5,
		DragSensitivity: s.DragSensitivity,
		ZoomSensitivity: s.ZoomSensitivity,
		PanSensitivity:  0.0015,
		home:            s,
		spring:          harmonica.NewSpring(harmonica.FPS(springFPS), s.FocusFrequency, s.FocusDamping),
	}
	c.Reset()
	return c
}

// Reset returns the camera to its initial pose.
func (c *OrbitCamera) Reset() {
	c.Center = mgl32.Vec3{}
	c.Distance = c.home.Distance
	c.RotationX = c.home.Pitch
	c.RotationY = c.home.Yaw
	c.clampDistance()
	c.stopGlide()
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	x := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Sin(float64(c.RotationY)))
	y := c.Distance * float32(gomath.Sin(float64(c.RotationX)))
	z := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Cos(float64(c.RotationY)))
	return c.Center.Add(mgl32.Vec3{x, y, z})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns the perspective projection for the given aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity

	if c.RotationX < c.MinPitch {
		c.RotationX = c.MinPitch
	}
	if c.RotationX > c.MaxPitch {
		c.RotationX = c.MaxPitch
	}
}

// HandlePan moves the center in the camera's screen plane.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	c.stopGlide()

	speed := c.Distance * c.PanSensitivity
	yaw := float64(c.RotationY)
	right := mgl32.Vec3{float32(gomath.Cos(yaw)), 0, float32(-gomath.Sin(yaw))}
	forward := c.Center.Sub(c.Position()).Normalize()
	up := right.Cross(forward).Normalize()

	c.Center = c.Center.Sub(right.Mul(deltaX * speed)).Add(up.Mul(deltaY * speed))
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.clampDistance()
	if c.gliding {
		c.distTarget = c.Distance
	}
}

// FocusOn glides the center to target and the distance to distance.
// A distance <= 0 keeps the current distance.
func (c *OrbitCamera) FocusOn(target mgl32.Vec3, distance float32) {
	if distance <= 0 {
		distance = c.Distance
	}
	c.focusTarget = target
	c.distTarget = clamp(distance, c.MinDistance, c.MaxDistance)
	c.gliding = true
}

// FitToBounds focuses on the center of a box at a distance that frames it.
func (c *OrbitCamera) FitToBounds(lo, hi mgl32.Vec3) {
	size := hi.Sub(lo).Len()
	dist := size / (2 * float32(gomath.Tan(float64(c.FovY)/2)))
	c.FocusOn(lo.Add(hi).Mul(0.5), dist*1.2)
}

// Gliding reports whether a focus glide is in progress.
func (c *OrbitCamera) Gliding() bool {
	return c.gliding
}

// Update advances the focus glide by dt seconds.
func (c *OrbitCamera) Update(dt float32) {
	if !c.gliding {
		return
	}
	step := float32(1.0 / springFPS)
	c.accum += dt
	for c.accum >= step {
		c.accum -= step
		for i := 0; i < 3; i++ {
			pos, vel := c.spring.Update(float64(c.Center[i]), c.centerVel[i], float64(c.focusTarget[i]))
			c.Center[i] = float32(pos)
			c.centerVel[i] = vel
		}
		d, v := c.spring.Update(float64(c.Distance), c.distVel, float64(c.distTarget))
		c.Distance = float32(d)
		c.distVel = v
	}

	if c.Center.ApproxEqualThreshold(c.focusTarget, 1e-4) && gomath.Abs(float64(c.Distance-c.distTarget)) < 1e-4 {
		c.Center = c.focusTarget
		c.Distance = c.distTarget
		c.stopGlide()
	}
}

func (c *OrbitCamera) stopGlide() {
	c.gliding = false
	c.centerVel = [3]float64{}
	c.distVel = 0
	c.accum = 0
}

func (c *OrbitCamera) clampDistance() {
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
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
