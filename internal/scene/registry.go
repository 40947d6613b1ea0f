package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Registry errors.
var (
	ErrUnknownModel = errors.New("unknown model")
	ErrDuplicateID  = errors.New("duplicate model id")
	ErrEmptyID      = errors.New("empty model id")
)

// ChangeFunc is called after every committed change.
type ChangeFunc func(version uint64)

// Registry owns the model records.
// Every mutation goes through commit, which keeps at most one record
// selected and recomputes overlaps. Not safe for concurrent use; the
// render loop owns it.
type Registry struct {
	records   []ModelRecord
	index     map[string]int
	overlaps  map[string]OverlapInfo
	version   uint64
	listeners []ChangeFunc
}

// NewRegistry creates a registry from initial records.
func NewRegistry(records ...ModelRecord) (*Registry, error) {
	r := &Registry{
		index: make(map[string]int, len(records)),
	}
	next := make([]ModelRecord, 0, len(records))
	owner := -1
	for _, rec := range records {
		if rec.ID == "" {
			return nil, ErrEmptyID
		}
		if _, ok := r.index[rec.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		rec.Opacity = clamp01(rec.Opacity)
		r.index[rec.ID] = len(next)
		if rec.Selected && owner < 0 {
			owner = len(next)
		}
		next = append(next, rec)
	}
	enforceSelection(next, owner)
	r.records = next
	r.overlaps = Detect(r.records)
	return r, nil
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// OnChange registers a listener invoked after each commit.
func (r *Registry) OnChange(fn ChangeFunc) {
	r.listeners = append(r.listeners, fn)
}

// Get returns a copy of the record with the given ID.
func (r *Registry) Get(id string) (ModelRecord, bool) {
	i, ok := r.index[id]
	if !ok {
		return ModelRecord{}, false
	}
	return r.records[i], true
}

// Records returns a copy of all records in registry order.
func (r *Registry) Records() []ModelRecord {
	out := make([]ModelRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Selected returns the selected record, if any.
func (r *Registry) Selected() (ModelRecord, bool) {
	for _, rec := range r.records {
		if rec.Selected {
			return rec, true
		}
	}
	return ModelRecord{}, false
}

// Overlap returns the overlap status of one record.
func (r *Registry) Overlap(id string) OverlapInfo {
	return r.overlaps[id]
}

// Overlaps returns a copy of the overlap map.
func (r *Registry) Overlaps() map[string]OverlapInfo {
	out := make(map[string]OverlapInfo, len(r.overlaps))
	for id, info := range r.overlaps {
		with := make([]string, len(info.With))
		copy(with, info.With)
		out[id] = OverlapInfo{Overlapping: info.Overlapping, With: with}
	}
	return out
}

// Update applies fn to a copy of one record and commits the result.
// The ID cannot be changed. Selecting the record deselects all others.
func (r *Registry) Update(id string, fn func(rec *ModelRecord)) error {
	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	next := r.Records()
	fn(&next[i])
	next[i].ID = id
	next[i].Opacity = clamp01(next[i].Opacity)
	r.commit(next, i)
	return nil
}

// Select makes id the only selected record.
func (r *Registry) Select(id string) error {
	return r.Update(id, func(rec *ModelRecord) {
		rec.Selected = true
	})
}

// ClearSelection deselects every record.
func (r *Registry) ClearSelection() {
	if _, ok := r.Selected(); !ok {
		return
	}
	next := r.Records()
	for i := range next {
		next[i].Selected = false
	}
	r.commit(next, -1)
}

// SelectNext selects the record after the current selection, wrapping
// around. Hidden records are skipped. Returns the new selection ID.
func (r *Registry) SelectNext() (string, bool) {
	start := -1
	if sel, ok := r.Selected(); ok {
		start = r.index[sel.ID]
	}
	for step := 1; step <= len(r.records); step++ {
		i := (start + step) % len(r.records)
		if !r.records[i].Visible {
			continue
		}
		id := r.records[i].ID
		_ = r.Select(id)
		return id, true
	}
	return "", false
}

// SetPosition moves a record.
func (r *Registry) SetPosition(id string, pos mgl32.Vec3) error {
	return r.Update(id, func(rec *ModelRecord) {
		rec.Position = pos
	})
}

// Raise moves a record along Y by dy.
func (r *Registry) Raise(id string, dy float32) error {
	return r.Update(id, func(rec *ModelRecord) {
		rec.Position[1] += dy
	})
}

// SetVisible shows or hides a record. Other state is preserved.
func (r *Registry) SetVisible(id string, visible bool) error {
	return r.Update(id, func(rec *ModelRecord) {
		rec.Visible = visible
	})
}

// ToggleVisible flips visibility.
func (r *Registry) ToggleVisible(id string) error {
	return r.Update(id, func(rec *ModelRecord) {
		rec.Visible = !rec.Visible
	})
}

// SetOpacity sets record opacity, clamped to [0, 1].
func (r *Registry) SetOpacity(id string, opacity float32) error {
	return r.Update(id, func(rec *ModelRecord) {
		rec.Opacity = opacity
	})
}

// SetSource replaces the asset reference of a record.
func (r *Registry) SetSource(id, source string) error {
	return r.Update(id, func(rec *ModelRecord) {
		rec.Source = source
	})
}

// RotateBy adds radians to the target rotation on one axis.
func (r *Registry) RotateBy(id string, axis Axis, radians float32) error {
	if err := checkAxis(axis); err != nil {
		return err
	}
	return r.Update(id, func(rec *ModelRecord) {
		rec.Rotation[axis] += radians
		rec.toggled[axis] = false
	})
}

// ToggleRotation flips the target rotation on one axis between its base
// value and base+radians. Toggling twice restores the base exactly.
func (r *Registry) ToggleRotation(id string, axis Axis, radians float32) error {
	if err := checkAxis(axis); err != nil {
		return err
	}
	return r.Update(id, func(rec *ModelRecord) {
		if rec.toggled[axis] {
			rec.Rotation[axis] = rec.toggleBase[axis]
			rec.toggled[axis] = false
			return
		}
		rec.toggleBase[axis] = rec.Rotation[axis]
		rec.Rotation[axis] += radians
		rec.toggled[axis] = true
	})
}

func (r *Registry) commit(next []ModelRecord, owner int) {
	enforceSelection(next, owner)
	r.records = next
	r.overlaps = Detect(next)
	r.version++
	for _, fn := range r.listeners {
		fn(r.version)
	}
}

// enforceSelection keeps at most one selected record. The owner wins when
// it is selected; otherwise the first selected record wins.
func enforceSelection(records []ModelRecord, owner int) {
	keep := -1
	if owner >= 0 && owner < len(records) && records[owner].Selected {
		keep = owner
	}
	for i := range records {
		if !records[i].Selected {
			continue
		}
		if keep < 0 {
			keep = i
		}
		if i != keep {
			records[i].Selected = false
		}
	}
}

func checkAxis(axis Axis) error {
	if axis < AxisX || axis > AxisZ {
		return fmt.Errorf("invalid axis %d", int(axis))
	}
	return nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
