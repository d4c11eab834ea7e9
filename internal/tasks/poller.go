package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/bus"
	"github.com/ajramos/evtui/internal/services"
)

// DefaultInterval is used when Start receives a non-positive interval.
const DefaultInterval = time.Second

// Status of a background job as reported by the backend
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task is the client view of a background job. It is never persisted.
type Task struct {
	ID        string
	Kind      string
	Status    Status
	Progress  float64
	Message   string
	StartTime time.Time
}

// Update is delivered on every non-terminal poll.
type Update struct {
	Progress  float64
	Message   string
	StepLabel string
}

// Callbacks receive poll results. Any of them may be nil.
type Callbacks struct {
	OnProgress func(Update)
	OnComplete func(Task)
	OnFailed   func(task Task, serverMsg string)
}

// StatusFetcher reads the progress record of a job.
type StatusFetcher interface {
	Progress(ctx context.Context, kind, taskID string) (*api.Progress, error)
}

// Notifier shows the completion message.
type Notifier interface {
	ShowSuccess(ctx context.Context, msg string)
}

// Dispatcher runs fn on the UI goroutine.
type Dispatcher func(fn func())

// Observer is told about every poll outcome; used for metrics.
type Observer interface {
	PollObserved(kind string, status Status, err error)
}

// Publisher receives task.progress and task.finished events. *bus.Bus
// implements it.
type Publisher interface {
	Emit(name, reason string, payload any)
}

// Poller starts periodic status polls for background jobs.
type Poller struct {
	fetcher  StatusFetcher
	notifier Notifier
	dispatch Dispatcher
	observer Observer
	events   Publisher
	logger   *log.Logger

	mu     sync.Mutex
	active *Handle
}

// Option configures a Poller.
type Option func(*Poller)

func WithNotifier(n Notifier) Option     { return func(p *Poller) { p.notifier = n } }
func WithDispatcher(d Dispatcher) Option { return func(p *Poller) { p.dispatch = d } }
func WithObserver(o Observer) Option     { return func(p *Poller) { p.observer = o } }
func WithLogger(l *log.Logger) Option    { return func(p *Poller) { p.logger = l } }
func WithPublisher(e Publisher) Option   { return func(p *Poller) { p.events = e } }

// NewPoller creates a poller. Without a dispatcher callbacks run on the
// polling goroutine.
func NewPoller(fetcher StatusFetcher, opts ...Option) *Poller {
	p := &Poller{fetcher: fetcher}
	for _, o := range opts {
		o(p)
	}
	if p.dispatch == nil {
		p.dispatch = func(fn func()) { fn() }
	}
	return p
}

// Handle controls one running poll.
type Handle struct {
	task   Task
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	stopOnce sync.Once
	status   Status
	progress float64
}

// Stop ends the poll. It is safe to call more than once.
func (h *Handle) Stop() {
	h.stopOnce.Do(h.cancel)
}

// Done is closed when the poll goroutine has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// TaskID returns the polled job id.
func (h *Handle) TaskID() string { return h.task.ID }

// Snapshot returns the latest known state of the job.
func (h *Handle) Snapshot() Task {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.task
	t.Status = h.status
	t.Progress = h.progress
	return t
}

// Active returns the handle of the most recently started poll. Earlier polls
// keep running until they finish or are stopped.
func (p *Poller) Active() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Start polls taskID every interval until the job completes or fails, Stop is
// called, or ctx is cancelled.
func (p *Poller) Start(ctx context.Context, taskID, kind string, interval time.Duration, cb Callbacks) *Handle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	pctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		task:   Task{ID: taskID, Kind: kind, Status: StatusPending, StartTime: time.Now()},
		cancel: cancel,
		done:   make(chan struct{}),
		status: StatusPending,
	}

	p.mu.Lock()
	p.active = h
	p.mu.Unlock()

	p.logf("poller: start %s task %s every %s", kind, taskID, interval)
	go p.run(pctx, h, interval, cb)
	return h
}

func (p *Poller) run(ctx context.Context, h *Handle, interval time.Duration, cb Callbacks) {
	defer close(h.done)
	defer h.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logf("poller: %s task %s stopped", h.task.Kind, h.task.ID)
			return
		case <-ticker.C:
			if p.tick(ctx, h, cb) {
				return
			}
		}
	}
}

// tick issues one status request and reports whether polling is over.
func (p *Poller) tick(ctx context.Context, h *Handle, cb Callbacks) bool {
	rec, err := p.fetcher.Progress(ctx, h.task.Kind, h.task.ID)
	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		// A task the backend no longer knows, or one we cannot route, never
		// recovers: fail it instead of polling forever.
		if services.IsPermanentError(err) {
			p.observe(h.task.Kind, StatusFailed, err)
			p.logf("poller: %s task %s: %v (giving up)", h.task.Kind, h.task.ID, err)
			p.fail(h, api.UserMessage(err), cb)
			return true
		}
		p.observe(h.task.Kind, "", err)
		p.logf("poller: %s task %s: %v (retrying)", h.task.Kind, h.task.ID, err)
		return false
	}

	status := Status(strings.ToLower(rec.Status))
	h.mu.Lock()
	h.status = status
	h.progress = rec.Progress
	h.mu.Unlock()
	p.observe(h.task.Kind, status, nil)

	switch status {
	case StatusCompleted:
		h.Stop()
		snap := h.Snapshot()
		snap.Message = rec.Message
		p.publish(bus.TaskFinished, string(StatusCompleted), snap)
		p.deliver(func() {
			if cb.OnComplete != nil {
				cb.OnComplete(snap)
			}
			if p.notifier != nil {
				p.notifier.ShowSuccess(context.Background(), completionMessage(h.task.Kind))
			}
		})
		return true
	case StatusFailed:
		p.logf("poller: %s task %s failed: %s", h.task.Kind, h.task.ID, rec.Message)
		p.fail(h, rec.Message, cb)
		return true
	default:
		upd := Update{Progress: rec.Progress, Message: rec.Message, StepLabel: StepLabel(rec)}
		snap := h.Snapshot()
		snap.Message = rec.Message
		p.publish(bus.TaskProgress, snap.Kind, snap)
		p.deliver(func() {
			if cb.OnProgress != nil {
				cb.OnProgress(upd)
			}
		})
		return false
	}
}

// fail stops h and reports msg once.
func (p *Poller) fail(h *Handle, msg string, cb Callbacks) {
	h.Stop()
	h.mu.Lock()
	h.status = StatusFailed
	h.mu.Unlock()
	snap := h.Snapshot()
	snap.Message = msg
	p.publish(bus.TaskFinished, string(StatusFailed), snap)
	p.deliver(func() {
		if cb.OnFailed != nil {
			cb.OnFailed(snap, msg)
		}
	})
}

func (p *Poller) publish(name, reason string, t Task) {
	if p.events != nil {
		p.events.Emit(name, reason, t)
	}
}

func (p *Poller) deliver(fn func()) {
	p.dispatch(func() {
		defer func() {
			if r := recover(); r != nil {
				p.logf("poller: callback panicked: %v", r)
			}
		}()
		fn()
	})
}

func (p *Poller) observe(kind string, status Status, err error) {
	if p.observer != nil {
		p.observer.PollObserved(kind, status, err)
	}
}

func (p *Poller) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}

// StepLabel returns the backend's step name, or derives one from the message.
func StepLabel(rec *api.Progress) string {
	if rec == nil {
		return ""
	}
	if s := strings.TrimSpace(rec.CurrentStep); s != "" {
		return s
	}
	m := strings.ToLower(rec.Message)
	switch {
	case strings.Contains(m, "upload"):
		return "Uploading"
	case strings.Contains(m, "process"):
		return "Processing"
	case strings.Contains(m, "transcri"):
		return "Transcribing"
	case strings.Contains(m, "analyz"):
		return "Analyzing"
	case strings.Contains(m, "generat"):
		return "Generating"
	default:
		return "Processing"
	}
}

func completionMessage(kind string) string {
	if kind == "" {
		return "Task completed"
	}
	return fmt.Sprintf("%s%s completed", strings.ToUpper(kind[:1]), kind[1:])
}
