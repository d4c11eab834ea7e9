package view

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ajramos/evtui/internal/cache"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSurface struct {
	mu     sync.Mutex
	writes []string
}

func (m *memSurface) SetContent(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, text)
}

func TestRegion_Lifecycle(t *testing.T) {
	s := &memSurface{}
	r := NewRegion("profiles-grid", s)
	assert.Equal(t, StateEmpty, r.State())

	require.NoError(t, r.SetLoading("Loading..."))
	assert.Equal(t, StateLoading, r.State())
	assert.Equal(t, uint64(0), r.Generation())

	require.NoError(t, r.Render("Alice", 3))
	assert.Equal(t, StateRendered, r.State())
	assert.Equal(t, uint64(3), r.Generation())
	assert.Equal(t, "Alice", r.Content())

	require.NoError(t, r.Clear())
	assert.Equal(t, StateEmpty, r.State())
	assert.Equal(t, []string{"Loading...", "Alice", ""}, s.writes)
}

func TestRegion_DetachedRenderFails(t *testing.T) {
	r := NewRegion("stats", &memSurface{})
	r.Detach()

	err := r.Render("x", 1)
	assert.ErrorIs(t, err, ErrRenderFailure)
	assert.True(t, r.Detached())
}

func TestRegion_NilSurfaceRenderFails(t *testing.T) {
	assert.ErrorIs(t, NewRegion("x", nil).Render("y", 0), ErrRenderFailure)
}

func TestRegion_Bound(t *testing.T) {
	r := NewRegion("x", &memSurface{})
	assert.False(t, r.Bound())
	r.MarkBound()
	assert.True(t, r.Bound())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "rendered", StateRendered.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestRegistry_MountLookupUnmount(t *testing.T) {
	g := NewRegistry()
	a := NewRegion("a", &memSurface{})
	g.Mount(a)

	got, ok := g.Lookup("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	replacement := NewRegion("a", &memSurface{})
	g.Mount(replacement)
	assert.True(t, a.Detached())
	got, _ = g.Lookup("a")
	assert.Same(t, replacement, got)

	g.Unmount("a")
	_, ok = g.Lookup("a")
	assert.False(t, ok)
	assert.True(t, replacement.Detached())
}

func TestRegistry_Reset(t *testing.T) {
	g := NewRegistry()
	a, b := NewRegion("b", &memSurface{}), NewRegion("a", &memSurface{})
	g.Mount(a)
	g.Mount(b)
	assert.Equal(t, []string{"a", "b"}, g.Names())

	g.Reset()
	assert.Empty(t, g.Names())
	assert.True(t, a.Detached())
	assert.True(t, b.Detached())
}

func TestTextSurface_WritesThroughDispatcher(t *testing.T) {
	tv := tview.NewTextView()
	calls := 0
	s := NewTextSurface(tv, func(fn func()) { calls++; fn() })

	s.SetContent("hello")

	assert.Equal(t, 1, calls)
	assert.Equal(t, "hello", tv.GetText(true))
	assert.Same(t, tv, s.TextView())
}

func TestRenderer_Render(t *testing.T) {
	ctx := context.Background()
	g := NewRegistry()
	region := NewRegion("profiles-grid", &memSurface{})
	g.Mount(region)
	col := cache.NewCollection[string]("k", nil, nil, nil)
	r := &Renderer[string]{
		Region:     "profiles-grid",
		Registry:   g,
		Collection: col,
		Format:     func(items []string) string { return strings.Join(items, "\n") },
		EmptyText:  "No profiles yet",
	}

	require.NoError(t, r.Render())
	assert.Equal(t, "No profiles yet", region.Content())

	gen := col.Replace(ctx, []string{"Alice", "Bob"})
	require.NoError(t, r.Render())
	assert.Equal(t, "Alice\nBob", region.Content())
	assert.Equal(t, gen, region.Generation())
}

func TestRenderer_MissingRegion(t *testing.T) {
	r := &Renderer[string]{
		Region:     "gone",
		Registry:   NewRegistry(),
		Collection: cache.NewCollection[string]("k", nil, nil, nil),
	}
	assert.ErrorIs(t, r.Render(), ErrRenderFailure)
}
