// Command libtrussfs builds the trussfs C library:
//
//	go build -buildmode=c-shared -o libtrussfs.so ./cmd/libtrussfs
//
// The generated libtrussfs.h declares every trussfs_* function. Strings
// returned to C stay owned by the library: list items live until their list
// is freed, and the directory, prompt and error strings live until the next
// call of the same function on the same context.
package main

/*
#include "trussfs_ctx.h"
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/GriffinCanCode/trussfs/internal/abi"
)

func main() {}

// state is what a trussfs_ctx points at.
type state struct {
	abi     *abi.Context
	strings *abi.Strings[*C.char]
}

func newState(a *abi.Context) *state {
	return &state{
		abi: a,
		strings: abi.NewStrings(
			func(v string) *C.char { return C.CString(v) },
			func(p *C.char) { C.free(unsafe.Pointer(p)) },
		),
	}
}

func lookup(ctx *C.trussfs_ctx) *state {
	if ctx == nil || ctx.handle == 0 {
		return nil
	}
	s, _ := cgo.Handle(ctx.handle).Value().(*state)
	return s
}

func (s *state) slot(name, v string) *C.char {
	return s.strings.Slot(name, v)
}

func goBytes(dest *C.uint8_t, size C.uint64_t) []byte {
	if dest == nil || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(dest)), abi.ClampCapacity(uint64(size)))
}

//export trussfs_version
func trussfs_version() C.uint64_t {
	return C.uint64_t(abi.Version())
}

//export trussfs_init
func trussfs_init() *C.trussfs_ctx {
	ctx := (*C.trussfs_ctx)(C.malloc(C.size_t(unsafe.Sizeof(C.trussfs_ctx{}))))
	ctx.handle = C.uintptr_t(cgo.NewHandle(newState(abi.Init())))
	return ctx
}

//export trussfs_shutdown
func trussfs_shutdown(ctx *C.trussfs_ctx) {
	s := lookup(ctx)
	if s == nil {
		return
	}
	s.abi.Shutdown()
	s.strings.ReleaseAll()
	cgo.Handle(ctx.handle).Delete()
	ctx.handle = 0
	C.free(unsafe.Pointer(ctx))
}

//export trussfs_get_error
func trussfs_get_error(ctx *C.trussfs_ctx) *C.char {
	s := lookup(ctx)
	if s == nil {
		return nil
	}
	msg, ok := s.abi.Error()
	if !ok {
		return nil
	}
	return s.slot("error", msg)
}

//export trussfs_clear_error
func trussfs_clear_error(ctx *C.trussfs_ctx) {
	if s := lookup(ctx); s != nil {
		s.abi.ClearError()
	}
}
