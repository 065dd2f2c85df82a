// Package paths provides the pure string path helpers used across trussfs.
//
// # Splitting
//
// Split decomposes a path into components without touching the filesystem.
// Leading and trailing separators are dropped, as are empty components, so
// "/a//b/c/" and "a/b/c" both yield ["a" "b" "c"]. "." and ".." are kept
// verbatim. "" and "/" yield no components. On Windows '\' also separates.
//
// # Usage
//
//	import "github.com/GriffinCanCode/trussfs/internal/shared/paths"
//
//	parts := paths.Split("/usr/local/bin") // [usr local bin]
//
//	if !paths.IsEnclosed(entryName) {
//	    // absolute or escapes its root via ".."
//	}
package paths
