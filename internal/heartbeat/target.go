package heartbeat

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/ajramos/evtui/internal/cache"
	"github.com/ajramos/evtui/internal/view"
)

// CollectionTarget keeps a region in step with a cached collection.
type CollectionTarget[T any] struct {
	Renderer *view.Renderer[T]
	// Bind attaches interaction handlers before the first refresh.
	Bind func(region *view.Region)
	// Spawn runs a refresh in the background. Defaults to a plain goroutine.
	Spawn  func(fn func())
	Logger *log.Logger
}

func (t *CollectionTarget[T]) Name() string { return t.Renderer.Region }

// Reconcile repairs the region once:
//   - absent region: nothing to do
//   - empty or loading: render from cache, or refresh when the cache is empty
//   - rendered: re-render when the region is behind the collection
func (t *CollectionTarget[T]) Reconcile(ctx context.Context) (Action, error) {
	region, ok := t.Renderer.Registry.Lookup(t.Renderer.Region)
	if !ok {
		return ActionAbsent, nil
	}
	col := t.Renderer.Collection

	switch region.State() {
	case view.StateEmpty, view.StateLoading:
		if col.Len() > 0 {
			return t.render()
		}
		if col.InFlight() {
			return ActionNone, nil
		}
		if !region.Bound() && t.Bind != nil {
			t.Bind(region)
			region.MarkBound()
		}
		t.spawn(func() { t.refresh(ctx) })
		return ActionRefreshing, nil
	default:
		if t.stale(region, col) {
			return t.render()
		}
		return ActionNone, nil
	}
}

// stale compares render generations. Regions written without a generation
// fall back to looking for the first item's label in the rendered text.
func (t *CollectionTarget[T]) stale(region *view.Region, col *cache.Collection[T]) bool {
	if gen := region.Generation(); gen != 0 {
		return gen != col.Generation()
	}
	label, ok := col.FirstLabel()
	if !ok {
		return false
	}
	return !strings.Contains(region.Content(), label)
}

func (t *CollectionTarget[T]) render() (Action, error) {
	if err := t.Renderer.Render(); err != nil {
		return ActionNone, err
	}
	return ActionRendered, nil
}

func (t *CollectionTarget[T]) refresh(ctx context.Context) {
	err := t.Renderer.Collection.Refresh(ctx)
	if errors.Is(err, cache.ErrRefreshInFlight) || errors.Is(err, cache.ErrRefreshSuperseded) {
		return
	}
	if err != nil {
		t.logf("heartbeat: refresh %s: %v", t.Name(), err)
		return
	}
	// the region may have been swapped out while fetching
	if err := t.Renderer.Render(); err != nil && !errors.Is(err, view.ErrRenderFailure) {
		t.logf("heartbeat: render %s: %v", t.Name(), err)
	}
}

func (t *CollectionTarget[T]) spawn(fn func()) {
	if t.Spawn != nil {
		t.Spawn(fn)
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.logf("heartbeat: %s refresh panicked: %v", t.Name(), r)
			}
		}()
		fn()
	}()
}

func (t *CollectionTarget[T]) logf(format string, args ...any) {
	if t.Logger != nil {
		t.Logger.Printf(format, args...)
	}
}
