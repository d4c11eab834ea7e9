package bus

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Canonical event names. One logical change is published once under its
// canonical name; legacy names are served through Alias.
const (
	PageChanged         = "page.changed"
	StateChanged        = "state.changed"
	AppReady            = "app.ready"
	ThemeChanged        = "theme.changed"
	ConnectivityChanged = "connectivity.changed"
	CollectionUpdated   = "collection.updated"
	TaskProgress        = "task.progress"
	TaskFinished        = "task.finished"
	Notification        = "notification"
	UncaughtError       = "error.uncaught"
)

// Event is a single published occurrence. Reason discriminates between the
// different causes of the same logical change (e.g. "navigation", "history").
type Event struct {
	Name    string
	Reason  string
	Payload any
	At      time.Time
}

// Handler receives events synchronously on the publisher's goroutine.
type Handler func(Event)

// Subscription is returned by Subscribe and removes the handler when closed.
type Subscription struct {
	bus  *Bus
	name string
	id   uint64
}

// Unsubscribe removes the handler. Calling it more than once is harmless.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.remove(s.name, s.id)
}

type entry struct {
	id      uint64
	handler Handler
}

// Bus is a synchronous publish/subscribe hub keyed by event name.
// Subscribers of one name run in registration order.
type Bus struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    map[string][]entry
	aliases map[string][]string // canonical -> legacy names
	logger  *log.Logger
}

// New creates an empty bus. logger may be nil.
func New(logger *log.Logger) *Bus {
	return &Bus{
		subs:    make(map[string][]entry),
		aliases: make(map[string][]string),
		logger:  logger,
	}
}

// Subscribe registers handler for events published under name.
func (b *Bus) Subscribe(name string, handler Handler) *Subscription {
	if handler == nil {
		return &Subscription{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], entry{id: id, handler: handler})
	return &Subscription{bus: b, name: name, id: id}
}

// Alias makes subscribers registered under legacy receive every event
// published under canonical. Legacy handlers run after the canonical ones and
// no ordering is promised between the two groups.
func (b *Bus) Alias(legacy, canonical string) {
	if legacy == "" || canonical == "" || legacy == canonical {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.aliases[canonical] {
		if existing == legacy {
			return
		}
	}
	b.aliases[canonical] = append(b.aliases[canonical], legacy)
}

// Publish delivers ev to every subscriber of ev.Name and of its legacy aliases.
// Handlers may publish re-entrantly; a panicking handler is logged and skipped.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	for _, e := range b.snapshot(ev.Name) {
		b.deliver(ev.Name, e, ev)
	}
}

// Emit is a convenience wrapper around Publish.
func (b *Bus) Emit(name, reason string, payload any) {
	b.Publish(Event{Name: name, Reason: reason, Payload: payload})
}

// Count returns the number of handlers registered directly under name.
func (b *Bus) Count(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

// snapshot copies the handler list so handlers can subscribe or unsubscribe
// while the event is being delivered.
func (b *Bus) snapshot(name string) []entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]entry, 0, len(b.subs[name]))
	out = append(out, b.subs[name]...)
	for _, legacy := range b.aliases[name] {
		out = append(out, b.subs[legacy]...)
	}
	return out
}

func (b *Bus) deliver(name string, e entry, ev Event) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Printf("bus: handler %d for %s panicked: %v", e.id, name, r)
		}
	}()
	e.handler(ev)
}

func (b *Bus) remove(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[name]
	for i, e := range list {
		if e.id == id {
			b.subs[name] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// String is used in debug logs.
func (e Event) String() string {
	if e.Reason == "" {
		return e.Name
	}
	return fmt.Sprintf("%s(%s)", e.Name, e.Reason)
}
