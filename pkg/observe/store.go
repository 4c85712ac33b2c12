// Package observe provides a small observable state container.
//
// A [Store] owns one value of type S. Writers replace it through
// [Store.Update]; readers take snapshots with [Store.Get] or register
// listeners with [Store.Subscribe]. [Select] narrows a subscription to a
// slice of the state and only fires when that slice changes under a
// caller-supplied equality.
//
// State values must be treated as immutable: an update returns a new value
// (copying any maps or slices it changes) instead of mutating the old one.
// Listeners run synchronously on the updating goroutine, in update order, and
// must not call Update themselves.
package observe

import "sync"

// Listener is called with the new and the previous state after each change.
type Listener[S any] func(state, prev S)

// Store is a mutex-guarded observable value.
type Store[S any] struct {
	// notifyMu serializes whole updates so listeners observe transitions
	// in the order they were applied.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	state     S
	listeners map[uint64]Listener[S]
	nextID    uint64
}

// New creates a store holding initial.
func New[S any](initial S) *Store[S] {
	return &Store[S]{
		state:     initial,
		listeners: make(map[uint64]Listener[S]),
	}
}

// Get returns the current state.
func (s *Store[S]) Get() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update applies fn to the current state. When fn reports a change the new
// state is stored and listeners are notified. Update returns the state after
// the call and whether it changed.
func (s *Store[S]) Update(fn func(S) (S, bool)) (S, bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next, changed := fn(prev)
	if !changed {
		s.mu.Unlock()
		return prev, false
	}
	s.state = next
	listeners := make([]Listener[S], 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next, prev)
	}
	return next, true
}

// Set replaces the state unconditionally.
func (s *Store[S]) Set(next S) {
	s.Update(func(S) (S, bool) { return next, true })
}

// Subscribe registers l and returns a function that removes it.
func (s *Store[S]) Subscribe(l Listener[S]) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Select subscribes fn to the slice of state chosen by selector. fn is called
// with the new slice whenever equal reports that it differs from the slice of
// the previous state.
func Select[S, T any](s *Store[S], selector func(S) T, equal func(a, b T) bool, fn func(T)) (unsubscribe func()) {
	return s.Subscribe(func(state, prev S) {
		next := selector(state)
		if equal(selector(prev), next) {
			return
		}
		fn(next)
	})
}
