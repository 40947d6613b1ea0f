package assets

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// gatedLoader blocks every load until release is closed.
type gatedLoader struct {
	release chan struct{}
	calls   atomic.Int32
	fail    map[string]error
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{release: make(chan struct{}), fail: make(map[string]error)}
}

func (l *gatedLoader) Load(ctx context.Context, ref string) (*Mesh, error) {
	l.calls.Add(1)
	select {
	case <-l.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err, ok := l.fail[ref]; ok {
		return nil, err
	}
	m := CubeMesh()
	m.Name = ref
	return m, nil
}

// pollUntil polls the cache until ref leaves the pending state.
func pollUntil(t *testing.T, c *Cache, ref string) []Result {
	t.Helper()
	var all []Result
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		all = append(all, c.Poll()...)
		if c.State(ref) != StatePending {
			return all
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("%s still pending after 2s", ref)
	return nil
}

func TestCacheFirstLoaderWins(t *testing.T) {
	loader := newGatedLoader()
	c := NewCache(loader)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Request("design.glb")
		}()
	}
	wg.Wait()

	if _, err := c.Lookup("design.glb"); !errors.Is(err, ErrAssetLoadPending) {
		t.Errorf("expected ErrAssetLoadPending, got %v", err)
	}

	close(loader.release)
	results := pollUntil(t, c, "design.glb")

	if n := loader.calls.Load(); n != 1 {
		t.Errorf("expected exactly one load, got %d", n)
	}
	if len(results) != 1 || results[0].Ref != "design.glb" || results[0].Err != nil {
		t.Errorf("unexpected results %+v", results)
	}
	mesh, err := c.Lookup("design.glb")
	if err != nil || mesh == nil {
		t.Fatalf("expected ready mesh, got %v", err)
	}
	hits, misses := c.Stats()
	if hits != 7 || misses != 1 {
		t.Errorf("expected 7 hits and 1 miss, got %d/%d", hits, misses)
	}

	// A later request is served from the cache.
	if state := c.Request("design.glb"); state != StateReady {
		t.Errorf("expected ready, got %v", state)
	}
	if n := loader.calls.Load(); n != 1 {
		t.Errorf("expected no second load, got %d", n)
	}
}

func TestCacheFailureIsIsolated(t *testing.T) {
	loader := newGatedLoader()
	cause := errors.New("corrupt buffer")
	loader.fail["broken.glb"] = cause
	close(loader.release)

	c := NewCache(loader)
	defer c.Close()

	c.Request("broken.glb")
	c.Request("good.glb")
	pollUntil(t, c, "broken.glb")
	pollUntil(t, c, "good.glb")

	_, err := c.Lookup("broken.glb")
	if !errors.Is(err, ErrAssetLoadFailed) {
		t.Errorf("expected ErrAssetLoadFailed, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped, got %v", err)
	}
	if c.State("broken.glb") != StateFailed {
		t.Errorf("expected failed state, got %v", c.State("broken.glb"))
	}
	if _, err := c.Lookup("good.glb"); err != nil {
		t.Errorf("good asset affected by failure: %v", err)
	}
}

func TestCacheLookupUnknown(t *testing.T) {
	c := NewCache(newGatedLoader())
	defer c.Close()

	if _, err := c.Lookup("nothing.glb"); !errors.Is(err, ErrAssetNotRequested) {
		t.Errorf("expected ErrAssetNotRequested, got %v", err)
	}
	if c.State("nothing.glb") != StateNone {
		t.Error("expected StateNone")
	}
}

func TestCacheInvalidateDiscardsStaleLoad(t *testing.T) {
	loader := newGatedLoader()
	c := NewCache(loader)
	defer c.Close()

	c.Request("scan.glb")
	c.Invalidate("scan.glb")
	if c.State("scan.glb") != StateNone {
		t.Fatal("expected entry dropped")
	}
	c.Request("scan.glb")

	close(loader.release)
	results := pollUntil(t, c, "scan.glb")

	if n := loader.calls.Load(); n != 2 {
		t.Errorf("expected two loads, got %d", n)
	}
	// Give the stale goroutine time to deliver, then make sure it is ignored.
	time.Sleep(20 * time.Millisecond)
	results = append(results, c.Poll()...)
	if len(results) != 1 {
		t.Errorf("expected only the fresh result applied, got %d", len(results))
	}
}

func TestCacheReload(t *testing.T) {
	loader := newGatedLoader()
	close(loader.release)
	c := NewCache(loader)
	defer c.Close()

	c.Request("design.glb")
	pollUntil(t, c, "design.glb")

	if state := c.Reload("design.glb"); state != StatePending {
		t.Errorf("expected pending after reload, got %v", state)
	}
	pollUntil(t, c, "design.glb")
	if n := loader.calls.Load(); n != 2 {
		t.Errorf("expected 2 loads, got %d", n)
	}
}

func TestCacheCloseCancelsLoads(t *testing.T) {
	loader := newGatedLoader()
	c := NewCache(loader)
	c.Request("slow.glb")

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}
