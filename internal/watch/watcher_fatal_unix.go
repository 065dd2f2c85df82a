//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// isFatal reports backend errors after which observation cannot continue:
// the inotify watch limit (ENOSPC) and the process or system descriptor
// limits (EMFILE, ENFILE).
func isFatal(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}
