package types

import "sync"

// StringList is an ordered sequence of strings. Entries need not be unique.
// All methods are safe for concurrent use.
type StringList struct {
	mu    sync.RWMutex
	items []string
}

// NewStringList creates a list holding a copy of items.
func NewStringList(items ...string) *StringList {
	l := &StringList{}
	if len(items) > 0 {
		l.items = append(make([]string, 0, len(items)), items...)
	}
	return l
}

// Push appends item and returns the new length.
func (l *StringList) Push(item string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, item)
	return len(l.items)
}

// Len returns the number of entries.
func (l *StringList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Get returns the entry at index i. ok is false when i is out of range.
func (l *StringList) Get(i int) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.items) {
		return "", false
	}
	return l.items[i], true
}

// Items returns a snapshot copy of the entries.
func (l *StringList) Items() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}
