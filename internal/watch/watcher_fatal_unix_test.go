//go:build !windows

package watch

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ENOSPC", syscall.ENOSPC, true},
		{"EMFILE", syscall.EMFILE, true},
		{"ENFILE", syscall.ENFILE, true},
		{"wrapped ENOSPC", fmt.Errorf("inotify_add_watch: %w", syscall.ENOSPC), true},
		{"EACCES", syscall.EACCES, false},
		{"plain", fmt.Errorf("transient"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isFatal(tt.err))
		})
	}
}
