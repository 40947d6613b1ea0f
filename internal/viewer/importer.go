package viewer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/twinview/internal/assets"
	"github.com/Faultbox/twinview/internal/logger"
	"github.com/Faultbox/twinview/internal/scene"
)

// Pick is a file chosen for a model.
type Pick struct {
	ID   string
	Path string
}

// Importer turns local files into in-memory uploads that replace a model's
// source. The native file dialog blocks, so it runs on its own goroutine
// and the chosen path is handed back to the main loop through Picks.
type Importer struct {
	uploads *assets.Uploads
	picks   chan Pick
	opening atomic.Bool
	log     *zap.Logger

	// open shows the file dialog; replaced in tests.
	open func() (string, error)
}

// NewImporter creates an importer storing files in uploads.
func NewImporter(uploads *assets.Uploads) *Importer {
	return &Importer{
		uploads: uploads,
		picks:   make(chan Pick, 4),
		log:     logger.Named("import"),
		open:    openModelDialog,
	}
}

func openModelDialog() (string, error) {
	return dialog.File().
		Filter("glTF models", "glb", "gltf").
		Title("Load model").
		Load()
}

// Browse opens the file dialog for model id. Only one dialog is open at a
// time; further calls while it is showing are ignored.
func (im *Importer) Browse(id string) {
	if !im.opening.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer im.opening.Store(false)

		path, err := im.open()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				im.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		im.picks <- Pick{ID: id, Path: path}
	}()
}

// Browsing reports whether the file dialog is open.
func (im *Importer) Browsing() bool {
	return im.opening.Load()
}

// Picks returns the files chosen since the last call without blocking.
func (im *Importer) Picks() []Pick {
	var out []Pick
	for {
		select {
		case p := <-im.picks:
			out = append(out, p)
		default:
			return out
		}
	}
}

// Import stores the file at path and makes it the source of model id.
// It returns the replaced source so callers can drop cached data for it.
// A replaced upload is freed.
func (im *Importer) Import(reg *scene.Registry, id, path string) (old, ref string, err error) {
	rec, ok := reg.Get(id)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", scene.ErrUnknownModel, id)
	}

	ref, err = im.uploads.AddFile(path)
	if err != nil {
		return "", "", fmt.Errorf("import %s: %w", path, err)
	}
	if err := reg.SetSource(id, ref); err != nil {
		im.uploads.Remove(ref)
		return "", "", err
	}

	old = rec.Source
	if assets.IsMemoryRef(old) {
		im.uploads.Remove(old)
	}
	im.log.Info("model imported",
		zap.String("id", id),
		zap.String("path", path),
		zap.String("ref", ref),
	)
	return old, ref, nil
}

// DropTarget picks the model a dropped file replaces: the selection, else
// the first reality model, else the first model.
func DropTarget(reg *scene.Registry) (string, bool) {
	if sel, ok := reg.Selected(); ok {
		return sel.ID, true
	}
	records := reg.Records()
	for _, rec := range records {
		if rec.Role == scene.RoleReality {
			return rec.ID, true
		}
	}
	if len(records) > 0 {
		return records[0].ID, true
	}
	return "", false
}
