package events

import (
	"slices"
	"sync"
)

// Priority orders handlers; lower values run first
type Priority int

const (
	Highest Priority = iota
	High
	Normal
	Low
	Lowest
)

// Cancelable is implemented by events that can stop propagation to later handlers
type Cancelable interface {
	Canceled() bool
}

// Base is embedded by event types to make them Cancelable
type Base struct {
	canceled bool
}

func (b *Base) Cancel()        { b.canceled = true }
func (b *Base) Canceled() bool { return b.canceled }

type registration[E Cancelable] struct {
	id              uint64
	priority        Priority
	receiveCanceled bool
	fn              func(E)
}

// Bus dispatches events of one type to handlers in priority order
//
// Architecture:
//   - Dispatch is synchronous on the posting goroutine
//   - Handlers of equal priority run in registration order
//   - Once an event is canceled only handlers that opted into canceled events still see it
//   - Subscribe/unsubscribe may race with Post; a Post sees the handler set at its start
type Bus[E Cancelable] struct {
	mu       sync.RWMutex
	handlers []registration[E]
	nextID   uint64
}

// NewBus creates an empty bus
func NewBus[E Cancelable]() *Bus[E] {
	return &Bus[E]{}
}

// Subscribe registers fn at priority and returns a function that removes it
func (b *Bus[E]) Subscribe(p Priority, receiveCanceled bool, fn func(E)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	// Copy on write so an in-flight Post keeps iterating its own slice
	handlers := append(slices.Clone(b.handlers), registration[E]{
		id:              id,
		priority:        p,
		receiveCanceled: receiveCanceled,
		fn:              fn,
	})
	slices.SortStableFunc(handlers, func(a, c registration[E]) int {
		return int(a.priority) - int(c.priority)
	})
	b.handlers = handlers

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers = slices.DeleteFunc(slices.Clone(b.handlers), func(r registration[E]) bool {
			return r.id == id
		})
	}
}

// Post delivers ev and reports whether it ended up canceled
func (b *Bus[E]) Post(ev E) bool {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		if ev.Canceled() && !h.receiveCanceled {
			continue
		}
		h.fn(ev)
	}
	return ev.Canceled()
}

// HandlerCount returns the number of registered handlers
func (b *Bus[E]) HandlerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
