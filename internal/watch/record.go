package watch

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventKind labels a change record.
type EventKind string

const (
	KindAdd    EventKind = "ADD"
	KindModify EventKind = "MOD"
	KindRemove EventKind = "REM"
	KindRename EventKind = "REN"
	KindError  EventKind = "ERR"
)

// overflowMessage marks records lost to a full queue.
const overflowMessage = "event queue overflow"

// Record is one observed change. For KindError the Path field carries the
// error message.
type Record struct {
	Kind EventKind
	Path string
}

// String encodes the record as KIND:path.
func (r Record) String() string {
	return string(r.Kind) + ":" + r.Path
}

// ParseRecord decodes a record produced by String.
func ParseRecord(s string) (Record, error) {
	kind, path, ok := strings.Cut(s, ":")
	if !ok {
		return Record{}, fmt.Errorf("watch: malformed record %q", s)
	}
	switch k := EventKind(kind); k {
	case KindAdd, KindModify, KindRemove, KindRename, KindError:
		return Record{Kind: k, Path: path}, nil
	default:
		return Record{}, fmt.Errorf("watch: unknown record kind %q", kind)
	}
}

// recordsFor maps one backend event to records in a fixed order. Chmod
// folds into MOD.
func recordsFor(evt fsnotify.Event) []Record {
	var out []Record
	if evt.Has(fsnotify.Create) {
		out = append(out, Record{KindAdd, evt.Name})
	}
	if evt.Has(fsnotify.Write) || evt.Has(fsnotify.Chmod) {
		out = append(out, Record{KindModify, evt.Name})
	}
	if evt.Has(fsnotify.Remove) {
		out = append(out, Record{KindRemove, evt.Name})
	}
	if evt.Has(fsnotify.Rename) {
		out = append(out, Record{KindRename, evt.Name})
	}
	return out
}
