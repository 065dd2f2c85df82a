package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
)

// ReadDir returns the immediate entries of dir sorted by name. Symlinks are
// followed for kind and size. Entries that cannot be stat'ed are reported as
// KindOther with size 0, or skipped when filesOnly is set; only a failure on
// dir itself is an error.
func ReadDir(dir string, filesOnly bool) ([]DirEntry, error) {
	if err := requireDir("list_dir", dir); err != nil {
		return nil, err
	}

	des, err := os.ReadDir(dir)
	if err != nil && len(des) == 0 {
		return nil, fserr.IO("list_dir", dir, err)
	}

	out := make([]DirEntry, 0, len(des))
	for _, de := range des {
		e := DirEntry{
			Name:    de.Name(),
			Kind:    KindOther,
			Symlink: de.Type()&fs.ModeSymlink != 0,
		}
		if info, err := os.Stat(filepath.Join(dir, de.Name())); err == nil {
			switch {
			case info.Mode().IsRegular():
				e.Kind = KindFile
				e.Size = info.Size()
			case info.IsDir():
				e.Kind = KindDir
			}
		}
		if filesOnly && e.Kind != KindFile {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ListDir lists dir as text entries: bare names, or EncodeDirEntry lines when
// withMeta is set.
func ListDir(dir string, filesOnly, withMeta bool) ([]string, error) {
	entries, err := ReadDir(dir, filesOnly)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		if withMeta {
			out[i] = EncodeDirEntry(e)
		} else {
			out[i] = e.Name
		}
	}
	return out, nil
}

// MakeDirAll creates dir and any missing parents.
func MakeDirAll(dir string) error {
	if dir == "" {
		return fserr.Malformed("recursive_makedir", dir, errors.New("empty path"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fserr.IO("recursive_makedir", dir, err)
	}
	return nil
}

// WalkDirs returns root and every directory below it. skip, when non-nil,
// prunes a directory and its subtree. Unreadable subtrees are skipped.
func WalkDirs(ctx context.Context, root string, skip func(path string) bool) ([]string, error) {
	if err := requireDir("walk", root); err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		dirs = []string{root}
	)
	conf := fastwalk.Config{Follow: false}

	// fastwalk invokes the callback from several goroutines.
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root || !d.IsDir() {
			return nil
		}
		if skip != nil && skip(path) {
			return filepath.SkipDir
		}

		mu.Lock()
		dirs = append(dirs, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fserr.IO("walk", root, err)
	}
	return dirs, nil
}

func requireDir(op, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fserr.IO(op, dir, err)
	}
	if !info.IsDir() {
		return fserr.New(fserr.KindNotFound, op, dir, errors.New("not a directory"))
	}
	return nil
}
