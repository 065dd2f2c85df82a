package handle

import (
	"fmt"
	"math"
	"sync"

	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
)

// Observer receives table events. Implementations must not call back into
// the table.
type Observer interface {
	HandleAllocated(kind Kind)
	HandleFreed(kind Kind)
	HandleRejected(kind Kind)
}

type slot struct {
	gen   uint32
	kind  Kind
	live  bool
	value any
}

// Table maps handles to resources. All methods are safe for concurrent use.
type Table struct {
	mu       sync.Mutex
	slots    []slot
	free     []uint32 // Protected by mu; LIFO reuse
	live     int
	closed   bool
	observer Observer
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// WithObserver attaches an observer and returns the table.
func (t *Table) WithObserver(o Observer) *Table {
	t.mu.Lock()
	t.observer = o
	t.mu.Unlock()
	return t
}

// Allocate stores v under a fresh handle.
func (t *Table) Allocate(kind Kind, v any) (Handle, error) {
	if kind == KindAny {
		return Invalid, fmt.Errorf("allocate: concrete kind required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return Invalid, fserr.ErrClosed
	}

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		if len(t.slots) >= maxSlots {
			return Invalid, fmt.Errorf("allocate: handle table exhausted")
		}
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot{gen: 1})
	}

	s := &t.slots[idx]
	s.kind = kind
	s.live = true
	s.value = v
	t.live++

	if t.observer != nil {
		t.observer.HandleAllocated(kind)
	}
	return encode(idx, s.gen), nil
}

// lookup returns the live slot named by h. Must hold mu.
func (t *Table) lookup(h Handle, kind Kind) (*slot, error) {
	if t.closed {
		return nil, fserr.ErrClosed
	}
	idx, ok := h.index()
	if !ok || int(idx) >= len(t.slots) {
		return nil, fmt.Errorf("%w %d", fserr.ErrInvalidHandle, uint64(h))
	}
	s := &t.slots[idx]
	if !s.live || s.gen != h.Generation() {
		return nil, fmt.Errorf("%w %d", fserr.ErrInvalidHandle, uint64(h))
	}
	if kind != KindAny && s.kind != kind {
		return nil, fmt.Errorf("%w %d: holds a %s, not a %s", fserr.ErrInvalidHandle, uint64(h), s.kind, kind)
	}
	return s, nil
}

// Resolve returns the resource behind h if h is live and of the given kind.
func (t *Table) Resolve(h Handle, kind Kind) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.lookup(h, kind)
	if err != nil {
		t.reject(kind)
		return nil, err
	}
	return s.value, nil
}

// Valid reports whether h names a live resource of any kind.
func (t *Table) Valid(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.lookup(h, KindAny)
	return err == nil
}

// KindOf returns the kind stored behind a live handle.
func (t *Table) KindOf(h Handle) (Kind, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.lookup(h, KindAny)
	if err != nil {
		return KindAny, false
	}
	return s.kind, true
}

// Free removes h from the table and returns its resource so the caller can
// release it outside the lock. Freeing a stale or foreign handle fails
// without touching the table.
func (t *Table) Free(h Handle, kind Kind) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.lookup(h, kind)
	if err != nil {
		t.reject(kind)
		return nil, err
	}

	idx, _ := h.index()
	v, freedKind := s.value, s.kind
	s.value = nil
	s.live = false
	s.kind = KindAny
	t.live--

	// A slot at the last generation is retired rather than recycled.
	if s.gen < math.MaxUint32 {
		s.gen++
		t.free = append(t.free, idx)
	}

	if t.observer != nil {
		t.observer.HandleFreed(freedKind)
	}
	return v, nil
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// Close invalidates every handle and returns the live resources in slot
// order. Subsequent calls return nil.
func (t *Table) Close() []any {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	values := make([]any, 0, t.live)
	for i := range t.slots {
		s := &t.slots[i]
		if !s.live {
			continue
		}
		values = append(values, s.value)
		if t.observer != nil {
			t.observer.HandleFreed(s.kind)
		}
		s.value = nil
		s.live = false
	}
	t.live = 0
	t.free = nil
	return values
}

// reject notifies the observer of a failed lookup. Must hold mu.
func (t *Table) reject(kind Kind) {
	if t.observer != nil {
		t.observer.HandleRejected(kind)
	}
}

// Get resolves h and asserts the resource type.
func Get[T any](t *Table, h Handle, kind Kind) (T, error) {
	var zero T
	v, err := t.Resolve(h, kind)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w %d: unexpected resource type %T", fserr.ErrInvalidHandle, uint64(h), v)
	}
	return typed, nil
}
