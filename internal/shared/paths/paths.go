package paths

import (
	"runtime"
	"strings"
)

// isSeparator reports whether r separates path components on this platform.
func isSeparator(r rune) bool {
	return r == '/' || (runtime.GOOS == "windows" && r == '\\')
}

// Split returns the non-empty components of path in order.
func Split(path string) []string {
	parts := strings.FieldsFunc(path, isSeparator)
	if parts == nil {
		return []string{}
	}
	return parts
}

// IsEnclosed reports whether name stays inside the directory it is resolved
// against: it must be relative, carry no volume name, and never climb above
// its root through "..".
func IsEnclosed(name string) bool {
	if name == "" || isSeparator(rune(name[0])) || strings.HasPrefix(name, "\\") {
		return false
	}
	if len(name) >= 2 && name[1] == ':' {
		return false
	}
	depth := 0
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		switch part {
		case ".":
		case "..":
			depth--
			if depth < 0 {
				return false
			}
		default:
			depth++
		}
	}
	return true
}
