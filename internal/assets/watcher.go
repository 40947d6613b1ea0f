package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/twinview/internal/logger"
)

// Watcher reports asset references whose backing file changed on disk.
// Directories are watched rather than files so editors that replace a
// file by rename are still seen.
type Watcher struct {
	fsw *fsnotify.Watcher
	log *zap.Logger

	mu    sync.Mutex
	refs  map[string][]string // cleaned file path -> refs
	dirs  map[string]bool
	inbox chan string
	done  chan struct{}
}

// NewWatcher starts a watcher.
func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		fsw:   fsw,
		log:   logger.Named("watch"),
		refs:  make(map[string][]string),
		dirs:  make(map[string]bool),
		inbox: make(chan string, 64),
		done:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Watch reports ref on Changes whenever path is written, created or renamed.
func (w *Watcher) Watch(ref, path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	for _, r := range w.refs[path] {
		if r == ref {
			return nil
		}
	}
	w.refs[path] = append(w.refs[path], ref)
	w.log.Debug("watching asset", zap.String("ref", ref), zap.String("path", path))
	return nil
}

// Drain returns every pending change without blocking, de-duplicated.
func (w *Watcher) Drain() []string {
	seen := make(map[string]bool)
	var out []string
	for {
		select {
		case ref := <-w.inbox:
			if !seen[ref] {
				seen[ref] = true
				out = append(out, ref)
			}
		default:
			return out
		}
	}
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.mu.Lock()
			refs := append([]string(nil), w.refs[filepath.Clean(ev.Name)]...)
			w.mu.Unlock()

			for _, ref := range refs {
				select {
				case w.inbox <- ref:
				default:
					w.log.Warn("watch inbox full, dropping change", zap.String("ref", ref))
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
