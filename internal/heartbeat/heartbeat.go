package heartbeat

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// DefaultPeriod is the reconciliation interval.
const DefaultPeriod = 500 * time.Millisecond

// Action is what a target did during one tick
type Action int

const (
	ActionNone Action = iota
	ActionAbsent
	ActionRendered
	ActionRefreshing
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionAbsent:
		return "absent"
	case ActionRendered:
		return "rendered"
	case ActionRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Target is one monitored view region.
type Target interface {
	Name() string
	Reconcile(ctx context.Context) (Action, error)
}

// Observer is told about every reconciliation; used for metrics.
type Observer interface {
	ReconcileObserved(target string, action Action, err error)
}

// Heartbeat periodically reconciles rendered regions against cached state.
// It runs for the application's lifetime, independent of navigation.
type Heartbeat struct {
	period   time.Duration
	logger   *log.Logger
	observer Observer

	mu        sync.Mutex
	targets   []Target
	scheduler gocron.Scheduler
	ticks     uint64
}

// Option configures a Heartbeat.
type Option func(*Heartbeat)

func WithLogger(l *log.Logger) Option   { return func(h *Heartbeat) { h.logger = l } }
func WithObserver(o Observer) Option    { return func(h *Heartbeat) { h.observer = o } }
func WithPeriod(d time.Duration) Option { return func(h *Heartbeat) { h.period = d } }

func New(opts ...Option) *Heartbeat {
	h := &Heartbeat{period: DefaultPeriod}
	for _, o := range opts {
		o(h)
	}
	if h.period <= 0 {
		h.period = DefaultPeriod
	}
	return h
}

// Period returns the tick interval.
func (h *Heartbeat) Period() time.Duration { return h.period }

// Add registers a target. A target with the same name is replaced.
func (h *Heartbeat) Add(t Target) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, existing := range h.targets {
		if existing.Name() == t.Name() {
			h.targets[i] = t
			return
		}
	}
	h.targets = append(h.targets, t)
}

// Remove unregisters the target called name.
func (h *Heartbeat) Remove(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, t := range h.targets {
		if t.Name() == name {
			h.targets = append(h.targets[:i], h.targets[i+1:]...)
			return
		}
	}
}

// Targets lists registered target names in registration order.
func (h *Heartbeat) Targets() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, len(h.targets))
	for i, t := range h.targets {
		names[i] = t.Name()
	}
	return names
}

// Ticks returns how many ticks have run.
func (h *Heartbeat) Ticks() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ticks
}

// Start schedules Tick every period until Stop is called. Ticks after ctx
// ends do nothing.
// A slow tick delays the next one rather than overlapping it.
func (h *Heartbeat) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.scheduler != nil {
		return nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(h.period),
		gocron.NewTask(func() { h.Tick(ctx) }),
		gocron.WithName("heartbeat"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create heartbeat job: %w", err)
	}
	s.Start()
	h.scheduler = s
	h.logf("heartbeat: started (every %s)", h.period)
	return nil
}

// Stop shuts the scheduler down. It is a no-op when not started.
func (h *Heartbeat) Stop() error {
	h.mu.Lock()
	s := h.scheduler
	h.scheduler = nil
	h.mu.Unlock()
	if s == nil {
		return nil
	}
	h.logf("heartbeat: stopping")
	return s.Shutdown()
}

// Tick reconciles every target once. It never panics and never returns an
// error; failures are logged and the target is skipped until the next tick.
func (h *Heartbeat) Tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	h.mu.Lock()
	h.ticks++
	targets := append([]Target(nil), h.targets...)
	h.mu.Unlock()

	for _, t := range targets {
		action, err := h.reconcile(ctx, t)
		if err != nil {
			h.logf("heartbeat: %s: %v", t.Name(), err)
		}
		if h.observer != nil {
			h.observer.ReconcileObserved(t.Name(), action, err)
		}
	}
}

func (h *Heartbeat) reconcile(ctx context.Context, t Target) (action Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			action, err = ActionNone, fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Reconcile(ctx)
}

func (h *Heartbeat) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
