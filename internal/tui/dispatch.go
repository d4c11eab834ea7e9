package tui

import (
	"sync"
	"sync/atomic"
)

// uiQueue runs view mutations on the tview event loop in submission order.
// tview's QueueUpdateDraw blocks until the update ran, so calling it from the
// event loop deadlocks; functions queued while a drain is running are picked
// up by that drain instead.
type uiQueue struct {
	// post hands drain to the event loop.
	post    func(func())
	running *atomic.Bool
	onPanic func(r any)

	mu        sync.Mutex
	fns       []func()
	scheduled bool
}

func newUIQueue(post func(func()), running *atomic.Bool) *uiQueue {
	return &uiQueue{post: post, running: running}
}

// Dispatch queues fn. Before the event loop starts, fn runs on the caller's
// goroutine.
func (q *uiQueue) Dispatch(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	if q.scheduled {
		q.mu.Unlock()
		return
	}
	q.scheduled = true
	q.mu.Unlock()

	if q.running == nil || !q.running.Load() {
		q.drain()
		return
	}
	go q.post(q.drain)
}

func (q *uiQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.fns) == 0 {
			q.scheduled = false
			q.mu.Unlock()
			return
		}
		fn := q.fns[0]
		q.fns = q.fns[1:]
		q.mu.Unlock()
		q.call(fn)
	}
}

func (q *uiQueue) call(fn func()) {
	defer func() {
		if r := recover(); r != nil && q.onPanic != nil {
			q.onPanic(r)
		}
	}()
	fn()
}

// Pending returns the number of queued functions.
func (q *uiQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}
