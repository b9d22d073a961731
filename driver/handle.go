package driver

import (
	"sync"
	"time"
)

// Handle is a one-shot promise for a channel id that the driver assigns asynchronously
// Resolve or Fail settles it exactly once; later calls are ignored
type Handle struct {
	once sync.Once
	done chan struct{}
	id   uint32
	err  error
}

func NewHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Resolved returns a handle already settled with id
func Resolved(id uint32) *Handle {
	h := NewHandle()
	h.Resolve(id)
	return h
}

// Resolve settles the handle with a channel id, returns false if already settled
func (h *Handle) Resolve(id uint32) bool {
	settled := false
	h.once.Do(func() {
		h.id = id
		close(h.done)
		settled = true
	})
	return settled
}

// Fail settles the handle with an error, returns false if already settled
func (h *Handle) Fail(err error) bool {
	settled := false
	h.once.Do(func() {
		h.err = err
		close(h.done)
		settled = true
	})
	return settled
}

// Done is closed once the handle is settled
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks up to timeout for the handle to settle
func (h *Handle) Wait(timeout time.Duration) (uint32, error) {
	select {
	case <-h.done:
		return h.id, h.err
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.done:
		return h.id, h.err
	case <-timer.C:
		return 0, ErrHandleTimeout
	}
}
