package view

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rivo/tview"
)

// ErrRenderFailure is returned when a region is missing or detached.
var ErrRenderFailure = errors.New("render failure")

// State of a region's content
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	default:
		return "unknown"
	}
}

// Surface receives the text of a region.
type Surface interface {
	SetContent(text string)
}

// TextSurface draws into a tview.TextView through a dispatcher, so it can be
// written from any goroutine.
type TextSurface struct {
	tv       *tview.TextView
	dispatch func(func())
}

// NewTextSurface wraps tv. A nil dispatch writes directly.
func NewTextSurface(tv *tview.TextView, dispatch func(func())) *TextSurface {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &TextSurface{tv: tv, dispatch: dispatch}
}

func (s *TextSurface) SetContent(text string) {
	s.dispatch(func() {
		s.tv.SetText(text)
		s.tv.ScrollToBeginning()
	})
}

// TextView exposes the wrapped primitive for layout.
func (s *TextSurface) TextView() *tview.TextView { return s.tv }

// Region is a named, independently refreshable part of the current page.
type Region struct {
	name    string
	surface Surface

	mu         sync.Mutex
	state      State
	content    string
	generation uint64
	detached   bool
	bound      bool
}

// NewRegion creates an empty region over surface.
func NewRegion(name string, surface Surface) *Region {
	return &Region{name: name, surface: surface}
}

func (r *Region) Name() string { return r.name }

func (r *Region) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Generation is the collection generation the region was last rendered
// from. Zero means the content carries no token.
func (r *Region) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Content returns the text last written to the region.
func (r *Region) Content() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

func (r *Region) Detached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detached
}

// Bound reports whether interaction handlers were attached since mount.
func (r *Region) Bound() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bound
}

// MarkBound records that handlers are attached.
func (r *Region) MarkBound() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound = true
}

// Render writes text tagged with generation.
func (r *Region) Render(text string, generation uint64) error {
	return r.write(StateRendered, text, generation)
}

// SetLoading shows a placeholder and drops the generation token.
func (r *Region) SetLoading(text string) error {
	return r.write(StateLoading, text, 0)
}

// Clear empties the region.
func (r *Region) Clear() error {
	return r.write(StateEmpty, "", 0)
}

func (r *Region) write(state State, text string, generation uint64) error {
	r.mu.Lock()
	if r.detached || r.surface == nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: region %q is not attached", ErrRenderFailure, r.name)
	}
	r.state = state
	r.content = text
	r.generation = generation
	surface := r.surface
	r.mu.Unlock()

	surface.SetContent(text)
	return nil
}

// Detach marks the region as removed from the page; later writes fail.
func (r *Region) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detached = true
}

// Registry tracks the regions of the page currently on screen.
type Registry struct {
	mu      sync.RWMutex
	regions map[string]*Region
}

func NewRegistry() *Registry {
	return &Registry{regions: make(map[string]*Region)}
}

// Mount adds r, detaching any region previously mounted under the same name.
func (g *Registry) Mount(r *Region) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if old, ok := g.regions[r.name]; ok && old != r {
		old.Detach()
	}
	g.regions[r.name] = r
}

// Unmount detaches and removes the named region.
func (g *Registry) Unmount(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.regions[name]; ok {
		r.Detach()
		delete(g.regions, name)
	}
}

// Lookup returns the attached region called name.
func (g *Registry) Lookup(name string) (*Region, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.regions[name]
	if !ok || r.Detached() {
		return nil, false
	}
	return r, true
}

// Names lists mounted regions, sorted.
func (g *Registry) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.regions))
	for n := range g.regions {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Reset detaches every region; used when the page is rebuilt.
func (g *Registry) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.regions {
		r.Detach()
	}
	g.regions = make(map[string]*Region)
}
