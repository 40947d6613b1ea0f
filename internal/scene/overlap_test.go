package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func recordAt(id string, x, y, z float32) ModelRecord {
	rec := NewModelRecord(id, "", "", RoleNeutral)
	rec.Position = mgl32.Vec3{x, y, z}
	return rec
}

func TestBoxOf(t *testing.T) {
	rec := recordAt("a", 1, 2, 3)
	rec.Scale = mgl32.Vec3{2, 4, -6}

	box := BoxOf(rec)
	wantMin := mgl32.Vec3{0, 0, 0}
	wantMax := mgl32.Vec3{2, 4, 6}
	if box.Min != wantMin {
		t.Errorf("expected min %v, got %v", wantMin, box.Min)
	}
	if box.Max != wantMax {
		t.Errorf("expected max %v, got %v", wantMax, box.Max)
	}
	if box.Center() != rec.Position {
		t.Errorf("expected center %v, got %v", rec.Position, box.Center())
	}
}

func TestOverlapsIntervals(t *testing.T) {
	tests := []struct {
		name string
		a, b mgl32.Vec3
		want bool
	}{
		{"same position", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 0}, true},
		{"far apart on X", mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{5, 0, 0}, false},
		{"partial overlap", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.5, 0.5, 0.5}, true},
		{"touching faces", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, true},
		{"just apart", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1.001, 0, 0}, false},
		{"apart on Y only", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 2, 0}, false},
		{"apart on Z only", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.2, 0.2, -3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := recordAt("a", tt.a.X(), tt.a.Y(), tt.a.Z())
			b := recordAt("b", tt.b.X(), tt.b.Y(), tt.b.Z())

			if got := Overlaps(a, b); got != tt.want {
				t.Errorf("Overlaps(a, b) = %v, want %v", got, tt.want)
			}
			if got := Overlaps(b, a); got != tt.want {
				t.Errorf("Overlaps(b, a) = %v, want %v", got, tt.want)
			}

			// Equivalent to a per-axis closed interval test.
			ba, bb := BoxOf(a), BoxOf(b)
			intervals := true
			for i := 0; i < 3; i++ {
				if !(ba.Min[i] <= bb.Max[i] && bb.Min[i] <= ba.Max[i]) {
					intervals = false
				}
			}
			if intervals != tt.want {
				t.Errorf("interval test = %v, want %v", intervals, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	t.Run("fewer than two records", func(t *testing.T) {
		if got := Detect(nil); len(got) != 0 {
			t.Errorf("expected empty map, got %v", got)
		}
		if got := Detect([]ModelRecord{recordAt("a", 0, 0, 0)}); len(got) != 0 {
			t.Errorf("expected empty map, got %v", got)
		}
	})

	t.Run("every record has an entry", func(t *testing.T) {
		got := Detect([]ModelRecord{recordAt("a", -5, 0, 0), recordAt("b", 5, 0, 0)})
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
		for id, info := range got {
			if info.Overlapping || len(info.With) != 0 {
				t.Errorf("%s: expected no overlap, got %+v", id, info)
			}
		}
	})

	t.Run("partners in registry order", func(t *testing.T) {
		records := []ModelRecord{
			recordAt("a", 0, 0, 0),
			recordAt("b", 10, 0, 0),
			recordAt("c", 0.5, 0, 0),
			recordAt("d", -0.6, 0, 0),
		}
		got := Detect(records)

		want := map[string][]string{
			"a": {"c", "d"},
			"b": nil,
			"c": {"a"},
			"d": {"a"},
		}
		for id, partners := range want {
			info := got[id]
			if info.Overlapping != (len(partners) > 0) {
				t.Errorf("%s: overlapping = %v", id, info.Overlapping)
			}
			if len(info.With) != len(partners) {
				t.Fatalf("%s: expected partners %v, got %v", id, partners, info.With)
			}
			for i := range partners {
				if info.With[i] != partners[i] {
					t.Errorf("%s: expected partners %v, got %v", id, partners, info.With)
				}
			}
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		records := []ModelRecord{
			recordAt("a", 0, 0, 0),
			recordAt("b", 0.9, 0.1, 0),
			recordAt("c", 1.8, 0, 0),
		}
		got := Detect(records)
		for _, a := range records {
			for _, partner := range got[a.ID].With {
				found := false
				for _, back := range got[partner].With {
					if back == a.ID {
						found = true
					}
				}
				if !found {
					t.Errorf("%s lists %s but not the reverse", a.ID, partner)
				}
			}
		}
	})
}

func TestDetectIncludesHidden(t *testing.T) {
	a := recordAt("a", 0, 0, 0)
	b := recordAt("b", 0, 0, 0)
	b.Visible = false

	got := Detect([]ModelRecord{a, b})
	if !got["a"].Overlapping || !got["b"].Overlapping {
		t.Errorf("expected hidden records to take part in detection, got %+v", got)
	}
}
