package vfs

import "fmt"

// Library version.
const (
	VersionMajor = 0
	VersionMinor = 4
	VersionPatch = 0
)

// VersionNumber encodes the version as major*1_000_000 + minor*1_000 + patch.
func VersionNumber() uint64 {
	return VersionMajor*1_000_000 + VersionMinor*1_000 + VersionPatch
}

// Version returns the dotted version string.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
