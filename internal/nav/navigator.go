package nav

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/evtui/internal/bus"
)

// DefaultFadeDuration is the pause between the loading view and the new page.
const DefaultFadeDuration = 150 * time.Millisecond

// Reasons attached to page.changed events
const (
	ReasonNavigation = "navigation"
	ReasonHistory    = "history"
	ReasonCommand    = "command"
	ReasonRestore    = "restore"
)

// ErrUnknownPage is returned for pages without a registered module.
var ErrUnknownPage = errors.New("unknown page")

// Outcome of a navigation request
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeDropped
	OutcomeUnchanged
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeDropped:
		return "dropped"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PageChange is the payload of page.changed
type PageChange struct {
	From Page
	To   Page
}

// Stage is the part of the UI the navigator drives. Implementations
// marshal onto the UI goroutine themselves.
type Stage interface {
	ShowLoading(page Page)
	// ShowError replaces the page with a generic error view offering a way
	// back to the dashboard.
	ShowError(page Page, err error)
	// Swap rebuilds the region tree of the page from its template.
	Swap(ctx context.Context, page Page, tpl *Template) error
	Highlight(page Page, meta Meta)
}

// Observer receives navigation outcomes; used for metrics.
type Observer interface {
	NavigationObserved(page Page, outcome Outcome, took time.Duration)
}

// Config holds the navigator's collaborators.
type Config struct {
	Modules      map[Page]Module
	Templates    *TemplateCache
	Stage        Stage
	Bus          *bus.Bus
	History      *History
	Logger       *log.Logger
	Observer     Observer
	FadeDuration time.Duration
	// KeepLifetimes leaves the outgoing page's context running on navigation,
	// so polls it started survive until they finish on their own.
	KeepLifetimes bool
	// OnModuleError is told about Initialize/Refresh failures.
	OnModuleError func(page Page, err error)
}

// Navigator routes between pages. At most one transition runs at a time;
// requests arriving meanwhile are dropped, not queued.
type Navigator struct {
	cfg  Config
	root context.Context
	fade time.Duration

	// sleep is swapped in tests
	sleep func(ctx context.Context, d time.Duration)

	mu             sync.Mutex
	current        Page
	inFlight       bool
	broken         bool
	initialized    map[Page]bool
	lifetime       context.Context
	cancelLifetime context.CancelFunc
}

// NewNavigator creates a navigator whose page lifetimes derive from root.
func NewNavigator(root context.Context, cfg Config) *Navigator {
	if cfg.History == nil {
		cfg.History = NewHistory(0)
	}
	fade := cfg.FadeDuration
	if fade < 0 {
		fade = 0
	} else if fade == 0 {
		fade = DefaultFadeDuration
	}
	lifetime, cancel := context.WithCancel(root)
	return &Navigator{
		cfg:            cfg,
		root:           root,
		fade:           fade,
		sleep:          sleepCtx,
		initialized:    make(map[Page]bool),
		lifetime:       lifetime,
		cancelLifetime: cancel,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Validate fails when a known page has no module or a module is registered
// for an unknown page.
func (n *Navigator) Validate() error {
	var problems []string
	for _, p := range Pages {
		if n.cfg.Modules[p] == nil {
			problems = append(problems, fmt.Sprintf("no module for %q", p))
		}
	}
	for p := range n.cfg.Modules {
		if !p.Known() {
			problems = append(problems, fmt.Sprintf("module for unknown page %q", p))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("module registry: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Current returns the last successfully shown page.
func (n *Navigator) Current() Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// InFlight reports whether a transition is running.
func (n *Navigator) InFlight() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.inFlight
}

// Lifetime is the context of the page on screen. It is cancelled when the
// user navigates away, unless KeepLifetimes is set.
func (n *Navigator) Lifetime() context.Context {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lifetime
}

// History returns the navigation history.
func (n *Navigator) History() *History { return n.cfg.History }

// NavigateTo shows page. recordHistory pushes a history entry first.
func (n *Navigator) NavigateTo(ctx context.Context, page Page, recordHistory bool) (Outcome, error) {
	reason := ReasonNavigation
	if !recordHistory {
		reason = ReasonHistory
	}
	return n.navigate(ctx, page, recordHistory, reason)
}

// Command handles a page name typed in the command bar.
func (n *Navigator) Command(ctx context.Context, input string) (Outcome, error) {
	page, ok := ParsePage(input)
	if !ok {
		return OutcomeFailed, fmt.Errorf("%w: %q", ErrUnknownPage, strings.TrimSpace(input))
	}
	return n.navigate(ctx, page, true, ReasonCommand)
}

// Restore shows page without recording history; used when resuming a session.
func (n *Navigator) Restore(ctx context.Context, page Page) (Outcome, error) {
	return n.navigate(ctx, page, false, ReasonRestore)
}

// Back walks one step back in history.
func (n *Navigator) Back(ctx context.Context) (Outcome, error) {
	return n.walk(ctx, -1)
}

// Forward walks one step forward in history.
func (n *Navigator) Forward(ctx context.Context) (Outcome, error) {
	return n.walk(ctx, 1)
}

func (n *Navigator) walk(ctx context.Context, delta int) (Outcome, error) {
	e, ok := n.cfg.History.Peek(delta)
	if !ok {
		return OutcomeUnchanged, nil
	}
	out, err := n.navigate(ctx, e.Page, false, ReasonHistory)
	if out == OutcomeCompleted || out == OutcomeUnchanged {
		n.cfg.History.Move(delta)
	}
	return out, err
}

func (n *Navigator) navigate(ctx context.Context, page Page, record bool, reason string) (Outcome, error) {
	module, ok := n.cfg.Modules[page]
	if !ok || module == nil {
		return OutcomeFailed, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}

	n.mu.Lock()
	if n.inFlight {
		n.mu.Unlock()
		n.logf("navigator: dropped navigation to %s (transition in flight)", page)
		n.observe(page, OutcomeDropped, 0)
		return OutcomeDropped, nil
	}
	if page == n.current && !n.broken {
		n.mu.Unlock()
		return OutcomeUnchanged, nil
	}
	n.inFlight = true
	from := n.current
	n.mu.Unlock()

	start := time.Now()
	defer func() {
		n.mu.Lock()
		n.inFlight = false
		n.mu.Unlock()
	}()

	if record {
		n.cfg.History.Push(page)
	}
	n.cfg.Stage.ShowLoading(page)

	tpl, err := n.cfg.Templates.Get(ctx, page)
	if err != nil {
		return n.fail(page, start, fmt.Errorf("load template: %w", err))
	}

	n.sleep(ctx, n.fade)

	lifetime := n.swapLifetime()
	if err := n.cfg.Stage.Swap(lifetime, page, tpl); err != nil {
		return n.fail(page, start, fmt.Errorf("swap view: %w", err))
	}
	meta, _ := MetaFor(page)
	n.cfg.Stage.Highlight(page, meta)

	n.runModule(lifetime, page, module)

	n.mu.Lock()
	n.current = page
	n.broken = false
	n.mu.Unlock()

	if n.cfg.Bus != nil {
		n.cfg.Bus.Publish(bus.Event{Name: bus.PageChanged, Reason: reason, Payload: PageChange{From: from, To: page}})
	}
	n.logf("navigator: %s -> %s (%s) in %s", from, page, reason, time.Since(start).Round(time.Millisecond))
	n.observe(page, OutcomeCompleted, time.Since(start))
	return OutcomeCompleted, nil
}

// swapLifetime ends the outgoing page's context and starts the incoming one.
func (n *Navigator) swapLifetime() context.Context {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cfg.KeepLifetimes {
		return n.lifetime
	}
	n.cancelLifetime()
	n.lifetime, n.cancelLifetime = context.WithCancel(n.root)
	return n.lifetime
}

func (n *Navigator) runModule(ctx context.Context, page Page, m Module) {
	n.mu.Lock()
	first := !n.initialized[page]
	n.mu.Unlock()

	var err error
	if r, ok := m.(Refresher); ok && !first {
		err = r.Refresh(ctx)
	} else {
		err = m.Initialize(ctx)
	}
	if err != nil {
		n.logf("navigator: module %s: %v", page, err)
		if n.cfg.OnModuleError != nil {
			n.cfg.OnModuleError(page, err)
		}
		return
	}
	n.mu.Lock()
	n.initialized[page] = true
	n.mu.Unlock()
}

func (n *Navigator) fail(page Page, start time.Time, err error) (Outcome, error) {
	n.logf("navigator: navigation to %s failed: %v", page, err)
	n.mu.Lock()
	n.broken = true
	n.mu.Unlock()
	n.cfg.Stage.ShowError(page, err)
	n.observe(page, OutcomeFailed, time.Since(start))
	return OutcomeFailed, nil
}

// Initialized reports whether page's module finished Initialize.
func (n *Navigator) Initialized(page Page) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.initialized[page]
}

// Close cancels the current page lifetime.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelLifetime()
}

func (n *Navigator) observe(page Page, o Outcome, d time.Duration) {
	if n.cfg.Observer != nil {
		n.cfg.Observer.NavigationObserved(page, o, d)
	}
}

func (n *Navigator) logf(format string, args ...any) {
	if n.cfg.Logger != nil {
		n.cfg.Logger.Printf(format, args...)
	}
}
