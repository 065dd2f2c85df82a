package abi

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/trussfs/internal/domain/vfs"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
)

// Context is a vfs.Context behind sentinel returns.
type Context struct {
	vfs  *vfs.Context
	log  *logging.Logger
	errs ErrorChannel
}

// Version returns the encoded library version.
func Version() uint64 {
	return vfs.VersionNumber()
}

// Init creates a context configured from the environment. Extra options
// are applied after the defaults. Contexts created here collect no metrics;
// the C boundary has no way to read them. Pass vfs.WithMetrics to share a
// collector the host process exposes.
func Init(opts ...vfs.Option) *Context {
	cfg := config.LoadOrDefault()
	log, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		log.Warn("invalid logging configuration, using defaults", zap.Error(err))
	}

	base := []vfs.Option{vfs.WithConfig(cfg), vfs.WithLogger(log)}
	return Wrap(vfs.New(append(base, opts...)...), log)
}

// Wrap adapts an existing context.
func Wrap(v *vfs.Context, log *logging.Logger) *Context {
	if log == nil {
		log = logging.NewNop()
	}
	return &Context{vfs: v, log: log.Named("abi")}
}

// VFS returns the wrapped context.
func (c *Context) VFS() *vfs.Context { return c.vfs }

// Shutdown releases every resource of the context.
func (c *Context) Shutdown() {
	if err := c.vfs.Close(); err != nil {
		c.log.Warn("shutdown released resources with errors", zap.Error(err))
	}
	_ = c.log.Sync()
}

// Error returns the last recorded failure message.
func (c *Context) Error() (string, bool) {
	return c.errs.Get()
}

// ClearError empties the error slot.
func (c *Context) ClearError() {
	c.errs.Clear()
}

func (c *Context) fail(op string, err error) {
	c.errs.Set(err)
	c.log.Debug("boundary call failed",
		zap.String("op", op),
		zap.String("kind", fserr.KindOf(err).String()),
		zap.Error(err))
}

func (c *Context) handle(op string, h handle.Handle, err error) uint64 {
	if err != nil {
		c.fail(op, err)
		return uint64(handle.Invalid)
	}
	return uint64(h)
}

// RecursiveMakeDir returns 1 once path exists as a directory, 0 otherwise.
func (c *Context) RecursiveMakeDir(path string) uint64 {
	if err := c.vfs.MakeDirAll(path); err != nil {
		c.fail("recursive_makedir", err)
		return 0
	}
	return 1
}

// WorkingDir returns the working directory.
func (c *Context) WorkingDir() (string, bool) {
	return c.str("working_dir", c.vfs.WorkingDir)
}

// BinaryDir returns the directory of the running executable.
func (c *Context) BinaryDir() (string, bool) {
	return c.str("binary_dir", c.vfs.BinaryDir)
}

// ReadLine prompts for and returns one line of input.
func (c *Context) ReadLine(prompt string) (string, bool) {
	return c.str("readline", func() (string, error) { return c.vfs.ReadLine(prompt) })
}

func (c *Context) str(op string, fn func() (string, error)) (string, bool) {
	s, err := fn()
	if err != nil {
		c.fail(op, err)
		return "", false
	}
	return s, true
}

// IsHandleValid reports whether h names a live resource.
func (c *Context) IsHandleValid(h uint64) bool {
	return c.vfs.IsValid(handle.Handle(h))
}

// WatcherCreate starts a watcher on path.
func (c *Context) WatcherCreate(path string, recursive bool) uint64 {
	h, err := c.vfs.Watch(context.Background(), path, recursive)
	return c.handle("watcher_create", h, err)
}

// WatcherAugment adds a root to a watcher.
func (c *Context) WatcherAugment(h uint64, path string, recursive bool) bool {
	if err := c.vfs.WatchAugment(context.Background(), handle.Handle(h), path, recursive); err != nil {
		c.fail("watcher_augment", err)
		return false
	}
	return true
}

// WatcherFree stops a watcher.
func (c *Context) WatcherFree(h uint64) {
	c.release("watcher_free", c.vfs.FreeWatcher(handle.Handle(h)))
}

// WatcherPoll drains a watcher into a new list.
func (c *Context) WatcherPoll(h uint64) uint64 {
	lh, err := c.vfs.WatchPoll(handle.Handle(h))
	return c.handle("watcher_poll", lh, err)
}

// ArchiveMount mounts the archive at path.
func (c *Context) ArchiveMount(path string) uint64 {
	h, err := c.vfs.MountArchive(path)
	return c.handle("archive_mount", h, err)
}

// ArchiveFree unmounts an archive.
func (c *Context) ArchiveFree(h uint64) {
	c.release("archive_free", c.vfs.FreeArchive(handle.Handle(h)))
}

// ArchiveList lists entry names.
func (c *Context) ArchiveList(h uint64) uint64 {
	lh, err := c.vfs.ArchiveList(handle.Handle(h))
	return c.handle("archive_list", lh, err)
}

// ArchiveListDetailed lists encoded entries.
func (c *Context) ArchiveListDetailed(h uint64) uint64 {
	lh, err := c.vfs.ArchiveListDetailed(handle.Handle(h))
	return c.handle("archive_list_detailed", lh, err)
}

// ArchiveGlob lists entry names matching pattern.
func (c *Context) ArchiveGlob(h uint64, pattern string) uint64 {
	lh, err := c.vfs.ArchiveGlob(handle.Handle(h), pattern)
	return c.handle("archive_glob", lh, err)
}

// ArchiveFilesizeName returns the size of the named entry, 0 on failure.
func (c *Context) ArchiveFilesizeName(h uint64, name string) uint64 {
	size, err := c.vfs.ArchiveSizeByName(handle.Handle(h), name)
	if err != nil {
		c.fail("archive_filesize_name", err)
		return 0
	}
	return size
}

// ArchiveFilesizeIndex returns the size of entry index, 0 on failure.
func (c *Context) ArchiveFilesizeIndex(h, index uint64) uint64 {
	size, err := c.vfs.ArchiveSizeByIndex(handle.Handle(h), clampIndex(index))
	if err != nil {
		c.fail("archive_filesize_index", err)
		return 0
	}
	return size
}

// ArchiveReadName copies the named entry into dst and returns the byte
// count, or -1.
func (c *Context) ArchiveReadName(h uint64, name string, dst []byte) int64 {
	n, err := c.vfs.ArchiveReadByName(handle.Handle(h), name, dst)
	if err != nil {
		c.fail("archive_read_name", err)
		return -1
	}
	return int64(n)
}

// ArchiveReadIndex copies entry index into dst and returns the byte count,
// or -1.
func (c *Context) ArchiveReadIndex(h, index uint64, dst []byte) int64 {
	n, err := c.vfs.ArchiveReadByIndex(handle.Handle(h), clampIndex(index), dst)
	if err != nil {
		c.fail("archive_read_index", err)
		return -1
	}
	return int64(n)
}

// ListDir enumerates a directory into a new list.
func (c *Context) ListDir(path string, filesOnly, withMeta bool) uint64 {
	h, err := c.vfs.ListDir(path, filesOnly, withMeta)
	return c.handle("list_dir", h, err)
}

// SplitPath splits path into a new list.
func (c *Context) SplitPath(path string) uint64 {
	h, err := c.vfs.SplitPath(path)
	return c.handle("split_path", h, err)
}

// ListNew creates an empty list.
func (c *Context) ListNew() uint64 {
	h, err := c.vfs.NewList()
	return c.handle("list_new", h, err)
}

// ListFree releases a list.
func (c *Context) ListFree(h uint64) {
	c.release("list_free", c.vfs.FreeList(handle.Handle(h)))
}

// ListLength returns the item count, 0 on failure.
func (c *Context) ListLength(h uint64) uint64 {
	n, err := c.vfs.ListLen(handle.Handle(h))
	if err != nil {
		c.fail("list_length", err)
		return 0
	}
	return uint64(n)
}

// ListGet returns item index of a list.
func (c *Context) ListGet(h, index uint64) (string, bool) {
	return c.str("list_get", func() (string, error) {
		return c.vfs.ListGet(handle.Handle(h), clampIndex(index))
	})
}

// ListPush appends item and returns the new length, 0 on failure.
func (c *Context) ListPush(h uint64, item string) uint64 {
	n, err := c.vfs.ListPush(handle.Handle(h), item)
	if err != nil {
		c.fail("list_push", err)
		return 0
	}
	return uint64(n)
}

// Free releases any handle.
func (c *Context) Free(h uint64) {
	c.release("free", c.vfs.Free(handle.Handle(h)))
}

func (c *Context) release(op string, err error) {
	if err != nil {
		c.fail(op, err)
	}
}

// clampIndex maps indexes beyond int range to -1, which no accessor accepts.
func clampIndex(i uint64) int {
	if i > uint64(maxInt) {
		return -1
	}
	return int(i)
}

const maxInt = int(^uint(0) >> 1)

// MaxCapacity bounds a caller-declared destination size. No archive entry
// comes near it, and a slice of this length stays inside the address space.
const MaxCapacity = 1 << 40

// ClampCapacity converts a caller-declared destination size to a slice
// length no larger than MaxCapacity.
func ClampCapacity(n uint64) int {
	if n > MaxCapacity {
		return MaxCapacity
	}
	return int(n)
}
