// Package loop provides the single mutation context that owns story state,
// and periodic tasks whose ticks run on it.
//
// Every change to a Story, its Objects, Frames or Strokes happens inside a
// function run by Loop. Timers never touch state directly: they post a tick
// to the loop, so a playback tick and a user edit never interleave.
package loop

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when posting to a loop that has stopped running.
var ErrClosed = errors.New("loop closed")

// Loop runs posted functions one at a time, in posting order, on the
// goroutine that called Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool

	// done is closed when Run returns
	done     chan struct{}
	doneOnce sync.Once
}

// New returns a loop that accepts work immediately; nothing runs until Run.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run executes queued functions until ctx is cancelled or Close is called.
// Work already queued when Close is called still runs; work queued when ctx
// is cancelled is dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.doneOnce.Do(func() { close(l.done) })
	for {
		if err := ctx.Err(); err != nil {
			l.stop()
			return err
		}
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			l.stop()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// stop closes the loop and drops queued work
func (l *Loop) stop() {
	l.mu.Lock()
	l.closed = true
	l.queue = nil
	l.mu.Unlock()
}

// Post queues fn without waiting for it to run.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Do runs fn on the loop and waits for it to finish. It returns ErrClosed
// if Run stops without running fn.
// It must not be called from inside a function the loop is running.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-l.done:
		// fn may have been the last function Run executed
		select {
		case <-done:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work. Run returns once the queue is drained.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
