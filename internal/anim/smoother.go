// Package anim eases displayed model rotations toward their targets.
package anim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/twinview/internal/scene"
)

// Smoother keeps the live rotation of every model and moves it toward the
// target rotation in the registry each frame:
//
//	live += (target - live) * min(rate*dt, 1)
//
// Once every axis is within epsilon of the target the live value snaps to it.
// An epsilon of 0 disables snapping.
type Smoother struct {
	rate    float32
	epsilon float32

	live      map[string]mgl32.Vec3
	animating map[string]bool
}

// NewSmoother creates a smoother with the given ease rate (per second) and
// snap epsilon (radians).
func NewSmoother(rate, epsilon float32) *Smoother {
	if rate < 0 {
		rate = 0
	}
	if epsilon < 0 {
		epsilon = 0
	}
	return &Smoother{
		rate:      rate,
		epsilon:   epsilon,
		live:      make(map[string]mgl32.Vec3),
		animating: make(map[string]bool),
	}
}

// Step advances every record by dt seconds. Records seen for the first time
// start at their target.
func (s *Smoother) Step(dt float32, records []scene.ModelRecord) {
	t := s.rate * dt
	if t > 1 {
		t = 1
	}
	if t < 0 {
		t = 0
	}

	for _, rec := range records {
		target := rec.Rotation
		cur, ok := s.live[rec.ID]
		if !ok {
			s.live[rec.ID] = target
			s.animating[rec.ID] = false
			continue
		}

		cur = cur.Add(target.Sub(cur).Mul(t))
		if t == 1 || s.settled(cur, target) {
			cur = target
		}
		s.live[rec.ID] = cur
		s.animating[rec.ID] = cur != target
	}
}

func (s *Smoother) settled(cur, target mgl32.Vec3) bool {
	if s.epsilon == 0 {
		return false
	}
	for i := 0; i < 3; i++ {
		d := target[i] - cur[i]
		if d > s.epsilon || d < -s.epsilon {
			return false
		}
	}
	return true
}

// Rotation returns the live rotation of a model.
func (s *Smoother) Rotation(id string) (mgl32.Vec3, bool) {
	rot, ok := s.live[id]
	return rot, ok
}

// RotationOr returns the live rotation of a model, or fallback when the
// model has not been stepped yet.
func (s *Smoother) RotationOr(id string, fallback mgl32.Vec3) mgl32.Vec3 {
	if rot, ok := s.live[id]; ok {
		return rot
	}
	return fallback
}

// Animating reports whether any model is still easing.
func (s *Smoother) Animating() bool {
	for _, a := range s.animating {
		if a {
			return true
		}
	}
	return false
}
