package viewer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/twinview/internal/assets"
	"github.com/Faultbox/twinview/internal/scene"
)

// Requester starts asset loads.
type Requester interface {
	Request(ref string) assets.State
}

// FileWatcher reports changes of file-backed sources.
type FileWatcher interface {
	Watch(ref, path string) error
}

// Resolver maps a reference to a file path.
type Resolver interface {
	Path(ref string) (string, bool)
}

// sources keeps the asset cache in step with the records: every source is
// requested once it appears, and file sources are watched when a watcher is
// set.
type sources struct {
	cache    Requester
	resolver Resolver
	watcher  FileWatcher
	log      *zap.Logger

	requested map[string]bool
	watched   map[string]bool
}

func newSources(cache Requester, resolver Resolver, watcher FileWatcher, log *zap.Logger) *sources {
	return &sources{
		cache:     cache,
		resolver:  resolver,
		watcher:   watcher,
		log:       log,
		requested: make(map[string]bool),
		watched:   make(map[string]bool),
	}
}

// Sync requests the sources of records not seen before.
func (s *sources) Sync(records []scene.ModelRecord) {
	for _, rec := range records {
		ref := rec.Source
		if ref == "" || s.requested[ref] {
			continue
		}
		s.requested[ref] = true
		s.cache.Request(ref)
		s.watch(ref)
	}
}

// Forget drops ref so the next Sync requests it again.
func (s *sources) Forget(ref string) {
	delete(s.requested, ref)
}

func (s *sources) watch(ref string) {
	if s.watcher == nil || s.watched[ref] {
		return
	}
	path, ok := s.resolver.Path(ref)
	if !ok {
		return
	}
	if err := s.watcher.Watch(ref, path); err != nil {
		s.log.Warn("cannot watch asset", zap.String("ref", ref), zap.Error(err))
		return
	}
	s.watched[ref] = true
}
