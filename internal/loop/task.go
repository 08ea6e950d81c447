package loop

import (
	"sync"
	"sync/atomic"
	"time"
)

// Task is a periodic job whose ticks run on a Loop.
type Task struct {
	stopped atomic.Bool
	pending atomic.Bool
	stop    chan struct{}
	exited  chan struct{}
	once    sync.Once
}

// Every starts a task that runs fn on l once per interval. A tick that is
// still queued when the next one is due is not queued twice.
func Every(l *Loop, interval time.Duration, fn func()) *Task {
	t := &Task{
		stop:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go t.run(l, interval, fn)
	return t
}

func (t *Task) run(l *Loop, interval time.Duration, fn func()) {
	defer close(t.exited)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if !t.pending.CompareAndSwap(false, true) {
				continue
			}
			err := l.Post(func() {
				t.pending.Store(false)
				if t.stopped.Load() {
					return
				}
				fn()
			})
			if err != nil {
				t.stopped.Store(true)
				return
			}
		}
	}
}

// Stop cancels the task. Once Stop returns no further tick of fn starts,
// including ticks that were already queued on the loop. Stop is safe to call
// from the loop itself and more than once.
func (t *Task) Stop() {
	t.once.Do(func() {
		t.stopped.Store(true)
		close(t.stop)
	})
	<-t.exited
}

// Stopped reports whether the task has been cancelled or its loop closed.
func (t *Task) Stopped() bool {
	return t.stopped.Load()
}
