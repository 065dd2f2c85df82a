package vfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/trussfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/trussfs/internal/providers/filesystem"
	"github.com/GriffinCanCode/trussfs/internal/providers/terminal"
	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
	"github.com/GriffinCanCode/trussfs/internal/shared/id"
	"github.com/GriffinCanCode/trussfs/internal/shared/paths"
	"github.com/GriffinCanCode/trussfs/internal/shared/types"
	"github.com/GriffinCanCode/trussfs/internal/watch"
)

// Context owns every resource created through it.
type Context struct {
	id       string
	created  time.Time
	cfg      *config.Config
	log      *logging.Logger
	metrics  *monitoring.Metrics
	handles  *handle.Table
	prompter terminal.Prompter

	// Fixed at New.
	workingDir, binaryDir       string
	workingDirErr, binaryDirErr error

	promptOnce sync.Once
	closeOnce  sync.Once
	closeErr   error
}

// Option configures a Context.
type Option func(*Context)

// WithConfig sets the configuration. The default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(c *Context) { c.cfg = cfg }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(log *logging.Logger) Option {
	return func(c *Context) { c.log = log }
}

// WithMetrics attaches an existing metrics collector.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Context) { c.metrics = m }
}

// WithRegisterer creates metrics registered on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Context) { c.metrics = monitoring.NewMetrics(reg) }
}

// WithPrompter replaces the stdin line prompt used by ReadLine.
func WithPrompter(p terminal.Prompter) Option {
	return func(c *Context) { c.prompter = p }
}

// New creates a context with an empty handle table.
func New(opts ...Option) *Context {
	c := &Context{
		id:      id.NewContextID().String(),
		created: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	if c.log == nil {
		c.log = logging.NewNop()
	}
	c.log = c.log.Named("vfs").With(zap.String("context", c.id))
	c.workingDir, c.workingDirErr = discoverWorkingDir()
	c.binaryDir, c.binaryDirErr = discoverBinaryDir()
	c.handles = handle.NewTable().WithObserver(c.metrics)

	c.metrics.IncContexts()
	c.log.Info("context created", zap.String("version", Version()))
	return c
}

// ID returns the context identifier.
func (c *Context) ID() string { return c.id }

// Created returns the creation time.
func (c *Context) Created() time.Time { return c.created }

// Config returns the active configuration.
func (c *Context) Config() *config.Config { return c.cfg }

// Metrics returns the metrics collector, which may be nil.
func (c *Context) Metrics() *monitoring.Metrics { return c.metrics }

// Handles returns the number of live handles.
func (c *Context) Handles() int { return c.handles.Len() }

// Close releases every live resource. Handles stop resolving immediately.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		values := c.handles.Close()
		var errs []error
		for _, v := range values {
			if err := release(v); err != nil {
				errs = append(errs, err)
			}
		}
		c.closeErr = errors.Join(errs...)
		c.metrics.DecContexts()
		c.log.Info("context closed", zap.Int("released", len(values)), zap.Error(c.closeErr))
	})
	return c.closeErr
}

// release frees whatever a handle pointed to.
func release(v any) error {
	switch r := v.(type) {
	case *filesystem.Archive:
		return r.Close()
	case *watch.Watcher:
		return r.Stop()
	default:
		return nil
	}
}

// IsValid reports whether h names a live resource of any kind. Any integer
// is acceptable input.
func (c *Context) IsValid(h handle.Handle) bool {
	return c.handles.Valid(h)
}

// Free releases h whatever its kind.
func (c *Context) Free(h handle.Handle) error {
	return c.free("free", h, handle.KindAny)
}

func (c *Context) free(op string, h handle.Handle, kind handle.Kind) (err error) {
	t := monitoring.NewTimer(c.metrics, op)
	defer func() { t.Stop(err) }()

	v, err := c.handles.Free(h, kind)
	if err != nil {
		return handleErr(op, err)
	}
	if err := release(v); err != nil {
		c.log.Warn("release failed", zap.String("op", op), zap.Stringer("handle", h), zap.Error(err))
		return fserr.IO(op, "", err)
	}
	return nil
}

// handleErr classifies a handle table failure.
func handleErr(op string, err error) error {
	if errors.Is(err, fserr.ErrClosed) {
		return fserr.New(fserr.KindClosed, op, "", err)
	}
	return fserr.New(fserr.KindInvalidHandle, op, "", err)
}

// allocate stores v, releasing it again if the table refuses.
func (c *Context) allocate(op string, kind handle.Kind, v any) (handle.Handle, error) {
	h, err := c.handles.Allocate(kind, v)
	if err != nil {
		release(v)
		if errors.Is(err, fserr.ErrClosed) {
			return handle.Invalid, fserr.New(fserr.KindClosed, op, "", err)
		}
		return handle.Invalid, fserr.New(fserr.KindCapacity, op, "", err)
	}
	return h, nil
}

// newResult wraps items in a fresh list handle.
func (c *Context) newResult(op string, items []string) (handle.Handle, error) {
	return c.allocate(op, handle.KindList, types.NewStringList(items...))
}

// MakeDirAll creates path and any missing parents.
func (c *Context) MakeDirAll(path string) (err error) {
	t := monitoring.NewTimer(c.metrics, "recursive_makedir")
	defer func() { t.Stop(err) }()
	return filesystem.MakeDirAll(path)
}

// WorkingDir returns the process working directory as it was when the
// context was created.
func (c *Context) WorkingDir() (string, error) {
	return c.workingDir, c.workingDirErr
}

// BinaryDir returns the directory holding the running executable, resolved
// when the context was created.
func (c *Context) BinaryDir() (string, error) {
	return c.binaryDir, c.binaryDirErr
}

func discoverWorkingDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fserr.IO("working_dir", "", err)
	}
	return wd, nil
}

func discoverBinaryDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fserr.IO("binary_dir", "", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// ReadLine shows prompt and reads one line of input.
func (c *Context) ReadLine(prompt string) (line string, err error) {
	t := monitoring.NewTimer(c.metrics, "readline")
	defer func() { t.Stop(err) }()

	c.promptOnce.Do(func() {
		if c.prompter == nil {
			c.prompter = terminal.NewPrompt(os.Stdin, os.Stdout)
		}
	})
	line, err = c.prompter.ReadLine(prompt)
	if err != nil {
		return "", fserr.IO("readline", "", err)
	}
	return line, nil
}

// ListDir enumerates dir into a new list. See filesystem.ListDir for the
// entry encoding.
func (c *Context) ListDir(dir string, filesOnly, withMeta bool) (h handle.Handle, err error) {
	t := monitoring.NewTimer(c.metrics, "list_dir")
	defer func() { t.Stop(err) }()

	items, err := filesystem.ListDir(dir, filesOnly, withMeta)
	if err != nil {
		c.log.Debug("list_dir failed", zap.String("path", dir), zap.Error(err))
		return handle.Invalid, err
	}
	return c.newResult("list_dir", items)
}

// SplitPath splits path into its components as a new list.
func (c *Context) SplitPath(path string) (h handle.Handle, err error) {
	t := monitoring.NewTimer(c.metrics, "split_path")
	defer func() { t.Stop(err) }()
	return c.newResult("split_path", paths.Split(path))
}

func (c *Context) String() string {
	return fmt.Sprintf("vfs.Context(%s, %d handles)", c.id, c.handles.Len())
}
