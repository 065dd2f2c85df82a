package vfs

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/trussfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
	"github.com/GriffinCanCode/trussfs/internal/watch"
)

// Watcher resolves a watcher handle.
func (c *Context) Watcher(h handle.Handle) (*watch.Watcher, error) {
	return c.watcher("watcher", h)
}

func (c *Context) watcher(op string, h handle.Handle) (*watch.Watcher, error) {
	w, err := handle.Get[*watch.Watcher](c.handles, h, handle.KindWatcher)
	if err != nil {
		return nil, handleErr(op, err)
	}
	return w, nil
}

func (c *Context) watchConfig() watch.Config {
	cfg := watch.FromConfig(c.cfg.Watcher)
	cfg.Logger = c.log
	cfg.Metrics = c.metrics
	return cfg
}

// Watch starts observing path and returns a watcher handle.
func (c *Context) Watch(ctx context.Context, path string, recursive bool) (h handle.Handle, err error) {
	t := monitoring.NewTimer(c.metrics, "watcher_create")
	defer func() { t.Stop(err) }()

	w, err := watch.New(ctx, path, recursive, c.watchConfig())
	if err != nil {
		c.log.Warn("watch failed", zap.String("path", path), zap.Error(err))
		return handle.Invalid, err
	}
	h, err = c.allocate("watcher_create", handle.KindWatcher, w)
	if err != nil {
		return handle.Invalid, err
	}
	c.log.Info("watcher created",
		zap.String("path", path),
		zap.Bool("recursive", recursive),
		zap.Stringer("handle", h))
	return h, nil
}

// WatchAugment adds another root to a watcher.
func (c *Context) WatchAugment(ctx context.Context, h handle.Handle, path string, recursive bool) (err error) {
	t := monitoring.NewTimer(c.metrics, "watcher_augment")
	defer func() { t.Stop(err) }()

	w, err := c.watcher("watcher_augment", h)
	if err != nil {
		return err
	}
	return w.Add(ctx, path, recursive)
}

// FreeWatcher stops a watcher. Observation has ended when it returns.
func (c *Context) FreeWatcher(h handle.Handle) error {
	return c.free("watcher_free", h, handle.KindWatcher)
}

// WatchPoll drains the watcher's pending records into a new list.
func (c *Context) WatchPoll(h handle.Handle) (handle.Handle, error) {
	w, err := c.watcher("watcher_poll", h)
	if err != nil {
		return handle.Invalid, err
	}
	return c.newResult("watcher_poll", w.PollStrings())
}
