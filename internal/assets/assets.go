// Package assets loads model meshes asynchronously and caches them by
// reference.
package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/twinview/internal/logger"
)

// Lookup errors.
var (
	ErrAssetLoadPending  = errors.New("asset load pending")
	ErrAssetLoadFailed   = errors.New("asset load failed")
	ErrAssetNotRequested = errors.New("asset not requested")
)

// State of a cache entry.
type State int

const (
	StateNone State = iota
	StatePending
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "none"
}

type entry struct {
	state State
	mesh  *Mesh
	err   error
	gen   uint64
}

// Result is a finished load handed back to the owning thread by Poll.
type Result struct {
	Ref     string
	Mesh    *Mesh
	Err     error
	Elapsed time.Duration

	gen uint64
}

// Cache loads each reference at most once. The first Request for a
// reference starts its load; later requests share the entry. Loads run on
// goroutines and are applied by Poll, which the render thread calls once
// per frame.
type Cache struct {
	loader Loader
	log    *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64

	results chan Result
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Stats
	hits   int
	misses int
}

// NewCache creates a cache backed by loader.
func NewCache(loader Loader) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		loader:  loader,
		log:     logger.Named("assets"),
		entries: make(map[string]*entry),
		results: make(chan Result, 32),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Request makes sure ref is loaded or loading and returns its state.
func (c *Cache) Request(ref string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[ref]; ok {
		c.hits++
		return e.state
	}
	c.misses++

	c.gen++
	e := &entry{state: StatePending, gen: c.gen}
	c.entries[ref] = e
	c.log.Debug("asset load started", zap.String("ref", ref))

	c.wg.Add(1)
	go c.load(ref, e.gen)
	return StatePending
}

func (c *Cache) load(ref string, gen uint64) {
	defer c.wg.Done()

	start := time.Now()
	mesh, err := c.loader.Load(c.ctx, ref)
	res := Result{Ref: ref, Mesh: mesh, Err: err, Elapsed: time.Since(start), gen: gen}

	select {
	case c.results <- res:
	case <-c.ctx.Done():
	}
}

// Poll applies finished loads without blocking and returns them.
func (c *Cache) Poll() []Result {
	var done []Result
	for {
		select {
		case res := <-c.results:
			if c.apply(res) {
				done = append(done, res)
			}
		default:
			return done
		}
	}
}

func (c *Cache) apply(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[res.Ref]
	if !ok || e.gen != res.gen {
		// Invalidated while loading.
		return false
	}
	if res.Err != nil {
		e.state = StateFailed
		e.err = res.Err
		c.log.Error("asset load failed", zap.String("ref", res.Ref), zap.Error(res.Err))
		return true
	}
	e.state = StateReady
	e.mesh = res.Mesh
	c.log.Info("asset ready",
		zap.String("ref", res.Ref),
		zap.Int("triangles", res.Mesh.TriangleCount()),
		zap.Duration("elapsed", res.Elapsed))
	return true
}

// State returns the state of ref without requesting it.
func (c *Cache) State(ref string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[ref]; ok {
		return e.state
	}
	return StateNone
}

// Lookup returns the mesh of ref. It fails with ErrAssetLoadPending while
// loading and with an error wrapping ErrAssetLoadFailed and the cause after
// a failed load.
func (c *Cache) Lookup(ref string) (*Mesh, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotRequested, ref)
	}
	switch e.state {
	case StateReady:
		return e.mesh, nil
	case StateFailed:
		return nil, fmt.Errorf("%w: %s: %w", ErrAssetLoadFailed, ref, e.err)
	}
	return nil, fmt.Errorf("%w: %s", ErrAssetLoadPending, ref)
}

// Invalidate drops ref so the next Request loads it again. A load still in
// flight for the old entry is discarded.
func (c *Cache) Invalidate(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ref)
}

// Reload invalidates and requests ref.
func (c *Cache) Reload(ref string) State {
	c.Invalidate(ref)
	return c.Request(ref)
}

// Stats returns hit and miss counts of Request.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Close cancels loads in flight and waits for their goroutines.
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
}
