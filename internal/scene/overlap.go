package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned proxy volume.
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// BoxOf returns the proxy box of a record: a unit cube scaled by Scale and
// centered on Position. Rotation is ignored.
func BoxOf(rec ModelRecord) Box {
	half := mgl32.Vec3{abs32(rec.Scale.X()), abs32(rec.Scale.Y()), abs32(rec.Scale.Z())}.Mul(0.5)
	return Box{
		Min: rec.Position.Sub(half),
		Max: rec.Position.Add(half),
	}
}

// Center returns the box midpoint.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extents.
func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Intersects reports whether the closed intervals of both boxes intersect on
// all three axes. Touching faces count as overlap.
func (b Box) Intersects(o Box) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Overlaps reports whether the proxy boxes of two records intersect.
func Overlaps(a, b ModelRecord) bool {
	return BoxOf(a).Intersects(BoxOf(b))
}

// OverlapInfo is the derived overlap status of one record.
type OverlapInfo struct {
	Overlapping bool
	// With lists the IDs of overlapping records in registry order.
	With []string
}

// Detect checks every unordered pair of records. With fewer than two
// records the result is empty; otherwise every record has an entry.
func Detect(records []ModelRecord) map[string]OverlapInfo {
	result := make(map[string]OverlapInfo, len(records))
	if len(records) < 2 {
		return result
	}

	boxes := make([]Box, len(records))
	for i, rec := range records {
		boxes[i] = BoxOf(rec)
		result[rec.ID] = OverlapInfo{}
	}

	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if !boxes[i].Intersects(boxes[j]) {
				continue
			}
			a, b := records[i].ID, records[j].ID

			infoA := result[a]
			infoA.Overlapping = true
			infoA.With = append(infoA.With, b)
			result[a] = infoA

			infoB := result[b]
			infoB.Overlapping = true
			infoB.With = append(infoB.With, a)
			result[b] = infoB
		}
	}

	return result
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
