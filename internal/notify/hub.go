// Package notify is a small typed observer list. State owners publish change
// events through a Hub; views and persistence subscribe without the state
// types knowing about them.
package notify

import "sync"

// Hub delivers events of type T to subscribers in subscription order.
// Publish runs handlers synchronously on the caller's goroutine.
type Hub[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, s := range h.subs {
			if s.id == id {
				h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every current subscriber.
func (h *Hub[T]) Publish(ev T) {
	h.mu.RLock()
	subs := append([]subscriber[T](nil), h.subs...)
	h.mu.RUnlock()
	for _, s := range subs {
		s.fn(ev)
	}
}

// Len returns the number of subscribers.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
