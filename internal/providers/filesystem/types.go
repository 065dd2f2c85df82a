package filesystem

import "fmt"

// EntryKind classifies a directory or archive entry. The byte value is the
// marker used in encoded entries.
type EntryKind byte

const (
	KindFile   EntryKind = 'F'
	KindDir    EntryKind = 'D'
	KindOther  EntryKind = '?'
	KindUnsafe EntryKind = 'X' // archive entry whose name escapes its root
)

// String returns the one-letter marker.
func (k EntryKind) String() string {
	return string(rune(k))
}

// DirEntry describes one entry of a real directory.
type DirEntry struct {
	Name    string    `json:"name" yaml:"name" toml:"name"`
	Kind    EntryKind `json:"kind" yaml:"kind" toml:"kind"`
	Symlink bool      `json:"symlink" yaml:"symlink" toml:"symlink"`
	Size    int64     `json:"size" yaml:"size" toml:"size"`
}

// ArchiveEntry describes one entry of a mounted archive.
type ArchiveEntry struct {
	Name  string    `json:"name" yaml:"name" toml:"name"`
	Index int       `json:"index" yaml:"index" toml:"index"`
	Size  uint64    `json:"size" yaml:"size" toml:"size"`
	Kind  EntryKind `json:"kind" yaml:"kind" toml:"kind"`

	// offset locates the data of an uncompressed tar member; -1 when the
	// entry must be reached by streaming.
	offset int64
}

// Safe reports whether the entry name stays inside the archive root.
func (e ArchiveEntry) Safe() bool {
	return e.Kind != KindUnsafe
}

// MarshalText encodes the kind as its marker letter.
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte{byte(k)}, nil
}

// UnmarshalText decodes a marker letter.
func (k *EntryKind) UnmarshalText(b []byte) error {
	if len(b) != 1 {
		return fmt.Errorf("entry kind %q: want one letter", b)
	}
	switch EntryKind(b[0]) {
	case KindFile, KindDir, KindOther, KindUnsafe:
		*k = EntryKind(b[0])
		return nil
	}
	return fmt.Errorf("entry kind %q: unknown marker", b)
}
