package abi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
)

// ErrorChannel holds the last failure message of a context. Concurrent
// writers are serialized; the value is whichever write landed last.
type ErrorChannel struct {
	mu  sync.Mutex
	msg string
	set bool
}

// Set records err. A nil err is ignored.
func (e *ErrorChannel) Set(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	e.msg = err.Error()
	e.set = true
	e.mu.Unlock()
}

// Get returns the recorded message and whether one is present.
func (e *ErrorChannel) Get() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.msg, e.set
}

// Clear empties the slot.
func (e *ErrorChannel) Clear() {
	e.mu.Lock()
	e.msg = ""
	e.set = false
	e.mu.Unlock()
}

// ErrNullArgument marks a required pointer argument passed as NULL.
var ErrNullArgument = errors.New("null argument")

// NullArgument records that arg of op was NULL. The caller returns its
// failure sentinel.
func (c *Context) NullArgument(op, arg string) {
	c.fail(op, fserr.Malformed(op, "", fmt.Errorf("%s: %w", arg, ErrNullArgument)))
}
