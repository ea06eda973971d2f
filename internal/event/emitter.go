package event

import (
	"sync"
)

// Name identifies a kind of notification, e.g. "buttonPressed".
type Name string

// String returns the name as a plain string.
func (n Name) String() string {
	return string(n)
}

// Listener receives the payload of an emitted notification.
type Listener[T any] func(payload T)

// Emitter is a registry of listeners keyed by notification name.
// It is safe for concurrent use.
type Emitter[T any] struct {
	mu        sync.RWMutex
	listeners map[Name][]Listener[T]
}

// NewEmitter creates an empty emitter.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{
		listeners: make(map[Name][]Listener[T]),
	}
}

// On registers listener for name. Names are not validated; a listener
// registered under a name nobody emits is simply never called.
func (e *Emitter[T]) On(name Name, listener Listener[T]) {
	if listener == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[name] = append(e.listeners[name], listener)
}

// Emit calls every listener registered for name, in registration order,
// on the caller's goroutine. It returns the number of listeners called.
func (e *Emitter[T]) Emit(name Name, payload T) int {
	// Copy so listeners may register more listeners without deadlocking.
	e.mu.RLock()
	ls := make([]Listener[T], len(e.listeners[name]))
	copy(ls, e.listeners[name])
	e.mu.RUnlock()

	for _, l := range ls {
		l(payload)
	}
	return len(ls)
}

// RemoveAll drops every listener.
func (e *Emitter[T]) RemoveAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = make(map[Name][]Listener[T])
}

// Count returns the number of listeners registered for name.
func (e *Emitter[T]) Count(name Name) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[name])
}

// Total returns the number of listeners across all names.
func (e *Emitter[T]) Total() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := 0
	for _, ls := range e.listeners {
		n += len(ls)
	}
	return n
}
