// Package handle maps opaque integer handles to live values.
//
// A Handle packs a 1-based slot index (low 32 bits) and the slot's generation
// (high 32 bits). Removing a value bumps the slot generation, so a retired
// handle can never resolve again even after its slot is reused: use after
// free and double free surface as ErrStaleHandle instead of memory corruption.
package handle

import (
	"errors"
	"sync"
)

var (
	ErrInvalidHandle = errors.New("handle: invalid handle")
	ErrStaleHandle   = errors.New("handle: stale handle")
)

// Handle is an opaque, address-sized identifier. Zero is never issued.
type Handle uint64

// Invalid is the sentinel for "no value".
const Invalid Handle = 0

func makeHandle(index uint32, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index+1))
}

func (h Handle) split() (index uint32, gen uint32, ok bool) {
	lo := uint32(h)
	if lo == 0 {
		return 0, 0, false
	}
	return lo - 1, uint32(h >> 32), true
}

type slot[T any] struct {
	gen   uint32
	live  bool
	value T
}

// Table is a generation-checked arena. The lock covers slot bookkeeping only;
// callers remain responsible for serialising use of each stored value.
type Table[T any] struct {
	mu    sync.RWMutex
	slots []slot[T]
	free  []uint32
	live  int
}

// New creates an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{}
}

// Insert stores v and returns its handle.
func (t *Table[T]) Insert(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{gen: 1})
	}
	s := &t.slots[idx]
	s.live = true
	s.value = v
	t.live++
	return makeHandle(idx, s.gen)
}

// Get resolves h to its value.
func (t *Table[T]) Get(h Handle) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, err := t.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.value, nil
}

// Remove retires h and returns the value it denoted.
func (t *Table[T]) Remove(h Handle) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	s, err := t.lookup(h)
	if err != nil {
		return zero, err
	}
	v := s.value
	s.value = zero
	s.live = false
	s.gen++
	if s.gen == 0 {
		// Wrapped; generation 0 would make a handle that looks unissued.
		s.gen = 1
	}
	idx, _, _ := h.split()
	t.free = append(t.free, idx)
	t.live--
	return v, nil
}

func (t *Table[T]) lookup(h Handle) (*slot[T], error) {
	idx, gen, ok := h.split()
	if !ok || int(idx) >= len(t.slots) {
		return nil, ErrInvalidHandle
	}
	s := &t.slots[idx]
	if !s.live || s.gen != gen {
		return nil, ErrStaleHandle
	}
	return s, nil
}

// Len returns the number of live values.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Range calls f for each live value until f returns false.
// f must not call back into the table.
func (t *Table[T]) Range(f func(Handle, T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.slots {
		s := &t.slots[i]
		if !s.live {
			continue
		}
		if !f(makeHandle(uint32(i), s.gen), s.value) {
			return
		}
	}
}
