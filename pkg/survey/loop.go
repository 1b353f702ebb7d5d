// Package survey runs the field survey: it tracks the surveyor, draws nearby
// unaddressed buildings and turns clicks on them into OSM notes.
//
// Every state change happens on a single Loop goroutine. Blocking I/O is
// started with Scheduler.Go and its result is handed back to the loop.
package survey

import (
	"context"
	"sync"
	"time"
)

// Scheduler serialises survey work onto one logical thread.
type Scheduler interface {
	// Post queues fn to run on the loop.
	Post(fn func())

	// Go runs work off the loop and then queues done on it.
	Go(work func(), done func())

	// After queues fn on the loop once d has elapsed.
	After(d time.Duration, fn func())
}

// Loop is the production Scheduler. The queue is unbounded so that code
// running on the loop can post to it without deadlocking.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
	timers  map[*time.Timer]struct{}
}

// NewLoop creates a loop; call Run to start processing.
func NewLoop() *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		timers: make(map[*time.Timer]struct{}),
	}
}

// Post implements Scheduler. Posts after the loop stopped are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Go implements Scheduler.
func (l *Loop) Go(work func(), done func()) {
	go func() {
		work()
		l.Post(done)
	}()
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		delete(l.timers, t)
		l.mu.Unlock()
		l.Post(fn)
	})
	l.timers[t] = struct{}{}
}

// Run processes posted functions until ctx is done. Pending timers are
// stopped and queued work is discarded on return.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()

	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	l.queue = nil
	for t := range l.timers {
		t.Stop()
	}
	l.timers = nil
}
