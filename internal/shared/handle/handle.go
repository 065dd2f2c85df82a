// Package handle implements the generational handle table that stands between
// boundary callers and every live resource of a context.
//
// A Handle packs a slot index and the slot's generation into one uint64:
//
//	handle = generation<<32 | (slot + 1)
//
// The zero value is never issued. Freeing a slot bumps its generation, so a
// stale handle stops resolving even after the slot is reused. Lists, archives
// and watchers share one Table and therefore one namespace.
package handle

import (
	"fmt"
	"strconv"
)

// Handle is an opaque resource identifier.
type Handle uint64

// Invalid is the "no handle" sentinel.
const Invalid Handle = 0

// Parse reads a decimal handle as produced by String.
func Parse(s string) (Handle, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Invalid, fmt.Errorf("parse handle %q: %w", s, err)
	}
	return Handle(v), nil
}

// String renders the handle in decimal.
func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

// Generation returns the generation encoded in the handle.
func (h Handle) Generation() uint32 {
	return uint32(uint64(h) >> 32)
}

// index returns the slot index, or false for values that cannot name a slot.
func (h Handle) index() (uint32, bool) {
	low := uint32(uint64(h))
	if low == 0 || h.Generation() == 0 {
		return 0, false
	}
	return low - 1, true
}

func encode(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index+1))
}

// maxSlots bounds the slot array well inside the 32-bit index field.
const maxSlots = 1 << 30

// Kind identifies the resource type stored behind a handle.
type Kind uint8

const (
	// KindAny matches every kind in Resolve and Free.
	KindAny Kind = iota
	KindList
	KindArchive
	KindWatcher
)

// String returns the kind label.
func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindList:
		return "list"
	case KindArchive:
		return "archive"
	case KindWatcher:
		return "watcher"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Kinds lists the concrete resource kinds.
func Kinds() []Kind {
	return []Kind{KindList, KindArchive, KindWatcher}
}
