// Package fserr defines the failure taxonomy shared by every trussfs component.
//
// Core operations return ordinary Go errors. Classification happens once, at
// the boundary, through KindOf:
//   - NotFound: path, archive entry, or handle target does not exist
//   - InvalidHandle: wrong kind, already freed, or never issued
//   - IO: underlying filesystem or archive read failed
//   - Capacity: destination buffer too small for a read
//   - Malformed: unparseable archive container or path
//   - Closed: the owning context has been shut down
package fserr

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidHandle
	KindIO
	KindCapacity
	KindMalformed
	KindClosed
)

// String returns the lowercase kind label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidHandle:
		return "invalid_handle"
	case KindIO:
		return "io"
	case KindCapacity:
		return "capacity"
	case KindMalformed:
		return "malformed"
	case KindClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ParseKind reverses Kind.String. Unrecognized labels yield KindUnknown.
func ParseKind(s string) Kind {
	for k := KindNotFound; k <= KindClosed; k++ {
		if k.String() == s {
			return k
		}
	}
	return KindUnknown
}

// Sentinel errors, one per kind.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidHandle = errors.New("invalid handle")
	ErrCapacity      = errors.New("destination buffer too small")
	ErrMalformed     = errors.New("malformed input")
	ErrClosed        = errors.New("context closed")
)

// Error carries the operation and subject of a failure.
type Error struct {
	Op   string
	Path string
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind so errors.Is(err, ErrNotFound)
// holds for any NotFound error regardless of what it wraps.
func (e *Error) Is(target error) bool {
	s := sentinel(e.Kind)
	return s != nil && target == s
}

// New builds an *Error.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

// NotFound builds a not-found error for op on path.
func NotFound(op, path string) *Error {
	return New(KindNotFound, op, path, ErrNotFound)
}

// InvalidHandle builds an invalid-handle error for op.
func InvalidHandle(op string, handle uint64) *Error {
	return New(KindInvalidHandle, op, "", fmt.Errorf("%w %d", ErrInvalidHandle, handle))
}

// Capacity builds a buffer-capacity error.
func Capacity(op, path string, need, have uint64) *Error {
	return New(KindCapacity, op, path, fmt.Errorf("%w: need %d bytes, have %d", ErrCapacity, need, have))
}

// Malformed builds a malformed-input error wrapping cause.
func Malformed(op, path string, cause error) *Error {
	if cause == nil {
		cause = ErrMalformed
	} else {
		cause = fmt.Errorf("%w: %v", ErrMalformed, cause)
	}
	return New(KindMalformed, op, path, cause)
}

// IO wraps an underlying I/O failure. Not-exist errors are reclassified as
// NotFound.
func IO(op, path string, cause error) *Error {
	if errors.Is(cause, fs.ErrNotExist) {
		return New(KindNotFound, op, path, cause)
	}
	return New(KindIO, op, path, cause)
}

// KindOf classifies err. Errors that carry no kind are reported as IO, except
// the fs and package sentinels which map to their own kinds.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var fe *Error
	if errors.As(err, &fe) && fe.Kind != KindUnknown {
		return fe.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, ErrInvalidHandle):
		return KindInvalidHandle
	case errors.Is(err, ErrCapacity):
		return KindCapacity
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	case errors.Is(err, ErrClosed):
		return KindClosed
	}
	return KindIO
}

func sentinel(k Kind) error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindInvalidHandle:
		return ErrInvalidHandle
	case KindCapacity:
		return ErrCapacity
	case KindMalformed:
		return ErrMalformed
	case KindClosed:
		return ErrClosed
	}
	return nil
}
