package vfs

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/trussfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/trussfs/internal/providers/filesystem"
	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
)

// Archive resolves an archive handle.
func (c *Context) Archive(h handle.Handle) (*filesystem.Archive, error) {
	return c.archive("archive", h)
}

func (c *Context) archive(op string, h handle.Handle) (*filesystem.Archive, error) {
	a, err := handle.Get[*filesystem.Archive](c.handles, h, handle.KindArchive)
	if err != nil {
		return nil, handleErr(op, err)
	}
	return a, nil
}

// MountArchive opens and indexes the archive at path.
func (c *Context) MountArchive(path string) (h handle.Handle, err error) {
	t := monitoring.NewTimer(c.metrics, "archive_mount")
	defer func() { t.Stop(err) }()

	a, err := filesystem.OpenArchive(path)
	if err != nil {
		c.log.Warn("mount failed", zap.String("path", path), zap.Error(err))
		return handle.Invalid, err
	}
	h, err = c.allocate("archive_mount", handle.KindArchive, a)
	if err != nil {
		return handle.Invalid, err
	}

	c.metrics.RecordArchiveMount(string(a.Format()))
	c.log.Info("archive mounted",
		zap.String("path", path),
		zap.String("format", string(a.Format())),
		zap.Int("entries", a.Len()),
		zap.Stringer("handle", h))
	return h, nil
}

// FreeArchive unmounts an archive.
func (c *Context) FreeArchive(h handle.Handle) error {
	return c.free("archive_free", h, handle.KindArchive)
}

// ArchiveList returns entry names in container order as a new list.
func (c *Context) ArchiveList(h handle.Handle) (handle.Handle, error) {
	a, err := c.archive("archive_list", h)
	if err != nil {
		return handle.Invalid, err
	}
	return c.newResult("archive_list", a.Names())
}

// ArchiveListDetailed returns encoded entries (index, size, kind, name) as
// a new list.
func (c *Context) ArchiveListDetailed(h handle.Handle) (handle.Handle, error) {
	a, err := c.archive("archive_list_detailed", h)
	if err != nil {
		return handle.Invalid, err
	}
	entries := a.Entries()
	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = filesystem.EncodeArchiveEntry(e)
	}
	return c.newResult("archive_list_detailed", items)
}

// ArchiveGlob returns the names matching a doublestar pattern as a new list.
func (c *Context) ArchiveGlob(h handle.Handle, pattern string) (handle.Handle, error) {
	a, err := c.archive("archive_glob", h)
	if err != nil {
		return handle.Invalid, err
	}
	matches, err := a.Glob(pattern)
	if err != nil {
		return handle.Invalid, err
	}
	items := make([]string, len(matches))
	for i, e := range matches {
		items[i] = e.Name
	}
	return c.newResult("archive_glob", items)
}

// ArchiveSizeByName returns the uncompressed size of the named entry.
func (c *Context) ArchiveSizeByName(h handle.Handle, name string) (uint64, error) {
	a, err := c.archive("archive_filesize_name", h)
	if err != nil {
		return 0, err
	}
	e, err := a.EntryByName(name)
	if err != nil {
		return 0, err
	}
	return e.Size, nil
}

// ArchiveSizeByIndex returns the uncompressed size of entry i.
func (c *Context) ArchiveSizeByIndex(h handle.Handle, i int) (uint64, error) {
	a, err := c.archive("archive_filesize_index", h)
	if err != nil {
		return 0, err
	}
	e, err := entryAt(a, "archive_filesize_index", i)
	if err != nil {
		return 0, err
	}
	return e.Size, nil
}

// ArchiveReadByName copies the named entry into dst. dst is untouched on
// failure.
func (c *Context) ArchiveReadByName(h handle.Handle, name string, dst []byte) (n int, err error) {
	t := monitoring.NewTimer(c.metrics, "archive_read")
	defer func() { t.Stop(err) }()

	a, err := c.archive("archive_read_name", h)
	if err != nil {
		return 0, err
	}
	e, err := a.EntryByName(name)
	if err != nil {
		return 0, err
	}
	return c.readInto(a, e.Index, dst)
}

// ArchiveReadByIndex copies entry i into dst. dst is untouched on failure.
func (c *Context) ArchiveReadByIndex(h handle.Handle, i int, dst []byte) (n int, err error) {
	t := monitoring.NewTimer(c.metrics, "archive_read")
	defer func() { t.Stop(err) }()

	a, err := c.archive("archive_read_index", h)
	if err != nil {
		return 0, err
	}
	return c.readInto(a, i, dst)
}

// ArchiveContent returns the named entry, refusing entries larger than the
// configured read limit.
func (c *Context) ArchiveContent(h handle.Handle, name string) (data []byte, err error) {
	t := monitoring.NewTimer(c.metrics, "archive_read")
	defer func() { t.Stop(err) }()

	a, err := c.archive("archive_content", h)
	if err != nil {
		return nil, err
	}
	e, err := a.EntryByName(name)
	if err != nil {
		return nil, err
	}
	data, err = a.ReadAll(e.Index, c.cfg.Server.MaxReadBytes)
	if err != nil {
		return nil, err
	}
	c.metrics.AddArchiveBytes(len(data))
	return data, nil
}

func (c *Context) readInto(a *filesystem.Archive, i int, dst []byte) (int, error) {
	n, err := a.ReadInto(i, dst)
	if err != nil {
		c.log.Debug("archive read failed", zap.String("archive", a.Path()), zap.Int("index", i), zap.Error(err))
		return 0, err
	}
	c.metrics.AddArchiveBytes(n)
	return n, nil
}

func entryAt(a *filesystem.Archive, op string, i int) (filesystem.ArchiveEntry, error) {
	e, ok := a.Entry(i)
	if !ok {
		return e, fserr.NotFound(op, fmt.Sprintf("#%d", i))
	}
	return e, nil
}
