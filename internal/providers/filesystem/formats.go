package filesystem

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Text encodings used inside string lists.
//
// Directory entry (list_dir with metadata):
//
//	<K> <S> <size>:<name>
//
// K is F, D or ?; S is S for a symlink, _ otherwise; size is decimal bytes
// after following links. The name follows the first ':' and may itself
// contain ':'.
//
// Archive entry (archive_list_detailed):
//
//	<index> <size> <K>:<name>
//
// Entries whose name escapes the archive root are written as "<index> 0 X:".

// EncodeDirEntry renders e in the directory entry encoding.
func EncodeDirEntry(e DirEntry) string {
	link := "_"
	if e.Symlink {
		link = "S"
	}
	return fmt.Sprintf("%c %s %d:%s", byte(e.Kind), link, e.Size, e.Name)
}

// ParseDirEntry reverses EncodeDirEntry.
func ParseDirEntry(s string) (DirEntry, error) {
	head, name, ok := strings.Cut(s, ":")
	if !ok {
		return DirEntry{}, errors.New("dir entry: missing ':'")
	}
	fields := strings.Fields(head)
	if len(fields) != 3 || len(fields[0]) != 1 {
		return DirEntry{}, fmt.Errorf("dir entry %q: want \"K S size\"", head)
	}

	var e DirEntry
	if err := e.Kind.UnmarshalText([]byte(fields[0])); err != nil {
		return DirEntry{}, err
	}
	switch fields[1] {
	case "S":
		e.Symlink = true
	case "_":
	default:
		return DirEntry{}, fmt.Errorf("dir entry: bad link marker %q", fields[1])
	}
	size, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return DirEntry{}, fmt.Errorf("dir entry: %w", err)
	}
	e.Size = size
	e.Name = name
	return e, nil
}

// EncodeArchiveEntry renders e in the archive entry encoding.
func EncodeArchiveEntry(e ArchiveEntry) string {
	if !e.Safe() {
		return fmt.Sprintf("%d 0 X:", e.Index)
	}
	return fmt.Sprintf("%d %d %c:%s", e.Index, e.Size, byte(e.Kind), e.Name)
}

// ParseArchiveEntry reverses EncodeArchiveEntry.
func ParseArchiveEntry(s string) (ArchiveEntry, error) {
	head, name, ok := strings.Cut(s, ":")
	if !ok {
		return ArchiveEntry{}, errors.New("archive entry: missing ':'")
	}
	fields := strings.Fields(head)
	if len(fields) != 3 {
		return ArchiveEntry{}, fmt.Errorf("archive entry %q: want \"index size K\"", head)
	}

	idx, err := strconv.Atoi(fields[0])
	if err != nil {
		return ArchiveEntry{}, fmt.Errorf("archive entry: %w", err)
	}
	size, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return ArchiveEntry{}, fmt.Errorf("archive entry: %w", err)
	}
	e := ArchiveEntry{Index: idx, Size: size, Name: name, offset: -1}
	if err := e.Kind.UnmarshalText([]byte(fields[2])); err != nil {
		return ArchiveEntry{}, err
	}
	return e, nil
}

// Export serializes v as "json" (sonic), "yaml" or "toml". TOML has no
// top-level arrays, so slices are wrapped under an "entries" key.
func Export(v any, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return sonic.ConfigStd.MarshalIndent(v, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(v)
	case "toml":
		return toml.Marshal(map[string]any{"entries": v})
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
