package view

import (
	"fmt"

	"github.com/ajramos/evtui/internal/cache"
)

// Renderer draws a cached collection into a named region.
type Renderer[T any] struct {
	Region     string
	Registry   *Registry
	Collection *cache.Collection[T]
	Format     func(items []T) string
	EmptyText  string
}

// Render writes the collection's current items, tagged with its generation.
func (r *Renderer[T]) Render() error {
	region, ok := r.Registry.Lookup(r.Region)
	if !ok {
		return fmt.Errorf("%w: region %q not mounted", ErrRenderFailure, r.Region)
	}
	items, gen := r.Collection.Snapshot()
	if len(items) == 0 {
		return region.Render(r.EmptyText, gen)
	}
	return region.Render(r.Format(items), gen)
}
