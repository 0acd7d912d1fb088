// Package observer provides an identity-keyed callback list with
// snapshot iteration, so registrations and removals made during a
// dispatch pass never affect that pass.
package observer

import (
	"sync"

	"github.com/google/uuid"
)

// List holds callbacks in registration order, keyed by an opaque token.
type List[T any] struct {
	mu    sync.Mutex
	order []uuid.UUID
	fns   map[uuid.UUID]T
}

// NewList creates an empty List.
func NewList[T any]() *List[T] {
	return &List[T]{fns: make(map[uuid.UUID]T)}
}

// Add registers a callback and returns its removal token.
func (l *List[T]) Add(fn T) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := uuid.New()
	l.order = append(l.order, id)
	l.fns[id] = fn
	return id
}

// Remove deregisters the callback for id. Unknown ids are a no-op.
func (l *List[T]) Remove(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.fns[id]; !ok {
		return
	}
	delete(l.fns, id)
	for i, o := range l.order {
		if o == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Snapshot returns the registered callbacks in registration order.
// The returned slice is independent of later Add/Remove calls.
func (l *List[T]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]T, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.fns[id])
	}
	return out
}

// Len returns the number of registered callbacks.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
