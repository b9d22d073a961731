package source

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Table maps 1-based driver channel ids onto a fixed array of slots
// Capacity is fixed at construction; a slot is cleared with a single atomic store.
// Each slot owns the lock that serializes driver writes to its channel, and it outlives
// the sources that pass through the slot.
type Table struct {
	slots []atomic.Pointer[Source]
	locks []sync.Mutex
}

// NewTable sizes the table to the driver's total channel count
func NewTable(capacity int) *Table {
	n := max(capacity, 0)
	return &Table{
		slots: make([]atomic.Pointer[Source], n),
		locks: make([]sync.Mutex, n),
	}
}

// Len is the slot count
func (t *Table) Len() int { return len(t.slots) }

// Index converts a channel id to its slot index
func (t *Table) Index(id uint32) (int, error) {
	if id == 0 || int(id) > len(t.slots) {
		return 0, fmt.Errorf("%w: %d (capacity %d)", ErrInvalidChannel, id, len(t.slots))
	}
	return int(id) - 1, nil
}

// Store places s in the slot for its id, replacing any previous occupant
// s takes over the slot's write lock; store a source before submitting work for it
func (t *Table) Store(s *Source) error {
	i, err := t.Index(s.ID())
	if err != nil {
		return err
	}
	s.slot.Store(&t.locks[i])
	t.slots[i].Store(s)
	return nil
}

// Get returns the source in the slot for id, nil when empty
func (t *Table) Get(id uint32) (*Source, error) {
	i, err := t.Index(id)
	if err != nil {
		return nil, err
	}
	return t.slots[i].Load(), nil
}

// Clear empties the slot for id and returns what was there
func (t *Table) Clear(id uint32) (*Source, error) {
	i, err := t.Index(id)
	if err != nil {
		return nil, err
	}
	return t.slots[i].Swap(nil), nil
}

// Range visits occupied slots in index order until fn returns false
// Each slot is loaded once, so fn sees a consistent source even if the slot is cleared meanwhile
func (t *Table) Range(fn func(s *Source) bool) {
	for i := range t.slots {
		if s := t.slots[i].Load(); s != nil {
			if !fn(s) {
				return
			}
		}
	}
}

// Active counts occupied slots
func (t *Table) Active() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].Load() != nil {
			n++
		}
	}
	return n
}
