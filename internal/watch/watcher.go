// Package watch observes filesystem roots and queues change records for
// polling.
//
// A Watcher owns one fsnotify backend and a background goroutine that turns
// backend events into Records. Roots may be recursive: every directory
// below them is registered up front with a parallel walk, and directories
// created later are registered as their ADD arrives. Poll drains the queue
// atomically. Stop returns only after the goroutine has exited, and no
// record is queued once Stop has begun.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/trussfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/trussfs/internal/providers/filesystem"
	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
)

const defaultStopTimeout = 5 * time.Second

// Config holds watcher parameters.
type Config struct {
	// MaxPending bounds the queue between polls. Zero means unbounded.
	MaxPending int
	// Ignore lists doublestar patterns matched against paths relative to
	// the root that contains them.
	Ignore []string
	// BackendBuffer sizes the fsnotify event channel.
	BackendBuffer uint
	// StopTimeout bounds how long Stop waits for the event loop.
	StopTimeout time.Duration

	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// FromConfig converts the application watcher settings.
func FromConfig(c config.WatcherConfig) Config {
	return Config{
		MaxPending:    c.MaxPending,
		Ignore:        c.Ignore,
		BackendBuffer: c.BackendBuffer,
		StopTimeout:   c.StopTimeout(),
	}
}

// Root is one observed path.
type Root struct {
	Path      string
	Recursive bool
}

// Watcher accumulates change records for a set of roots.
type Watcher struct {
	cfg Config
	fsw *fsnotify.Watcher
	log *logging.Logger

	addDir func(string) error // fsw.Add

	mu      sync.Mutex
	roots   []Root
	queue   *queue
	stopped bool
	fatal   error

	notify   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

// New validates cfg, starts observation and registers the first root.
func New(ctx context.Context, path string, recursive bool, cfg Config) (*Watcher, error) {
	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fserr.Malformed("watcher_create", pat, doublestar.ErrBadPattern)
		}
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = defaultStopTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}

	var (
		fsw *fsnotify.Watcher
		err error
	)
	if cfg.BackendBuffer > 0 {
		fsw, err = fsnotify.NewBufferedWatcher(cfg.BackendBuffer)
	} else {
		fsw, err = fsnotify.NewWatcher()
	}
	if err != nil {
		return nil, fserr.IO("watcher_create", path, err)
	}

	w := &Watcher{
		cfg:    cfg,
		fsw:    fsw,
		addDir: fsw.Add,
		log:    log.Named("watch"),
		queue:  newQueue(cfg.MaxPending),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go w.run()

	if err := w.Add(ctx, path, recursive); err != nil {
		w.Stop()
		return nil, err
	}
	return w, nil
}

// Add registers another root. Existing roots and queued records are left
// untouched.
func (w *Watcher) Add(ctx context.Context, path string, recursive bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fserr.IO("watcher_augment", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fserr.IO("watcher_augment", path, err)
	}

	w.mu.Lock()
	stopped, fatal := w.stopped, w.fatal
	w.mu.Unlock()
	if stopped {
		return fserr.New(fserr.KindClosed, "watcher_augment", path, fatal)
	}

	root := Root{Path: abs, Recursive: recursive && info.IsDir()}
	dirs := []string{abs}
	if root.Recursive {
		dirs, err = filesystem.WalkDirs(ctx, abs, func(p string) bool {
			return w.ignoredUnder(abs, p)
		})
		if err != nil {
			return err
		}
	}

	if err := w.register(dirs); err != nil {
		return err
	}

	w.mu.Lock()
	w.roots = append(w.roots, root)
	w.mu.Unlock()

	w.log.Debug("root registered",
		zap.String("path", abs),
		zap.Bool("recursive", root.Recursive),
		zap.Int("dirs", len(dirs)))
	return nil
}

// register adds every dir to the backend. On failure the dirs this call
// added are removed again, so a rejected root produces no events. Dirs
// already watched for another root stay registered.
func (w *Watcher) register(dirs []string) error {
	watched := make(map[string]bool)
	for _, d := range w.fsw.WatchList() {
		watched[d] = true
	}
	for i, d := range dirs {
		if err := w.addDir(d); err != nil {
			for _, added := range dirs[:i] {
				if !watched[added] {
					_ = w.fsw.Remove(added)
				}
			}
			return fserr.IO("watcher_augment", d, err)
		}
	}
	return nil
}

// Roots returns the registered roots in registration order.
func (w *Watcher) Roots() []Root {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Root, len(w.roots))
	copy(out, w.roots)
	return out
}

// Poll drains the pending records. Records returned here are never
// returned again.
func (w *Watcher) Poll() []Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queue.drain()
}

// PollStrings drains the pending records in their encoded form.
func (w *Watcher) PollStrings() []string {
	records := w.Poll()
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.String()
	}
	return out
}

// Pending returns the number of queued records.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queue.len()
}

// Notify returns a channel that receives a value whenever records become
// available. Notifications are coalesced.
func (w *Watcher) Notify() <-chan struct{} {
	return w.notify
}

// Done is closed once observation has ended, either through Stop or after a
// fatal backend error.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Err returns the fatal backend error that ended observation, if any.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fatal
}

// Stop ends observation and waits for the event loop to exit. Queued
// records are discarded. Stop is idempotent.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		w.queue.drain()
		w.mu.Unlock()

		if err := w.fsw.Close(); err != nil {
			w.stopErr = fmt.Errorf("watch: close backend: %w", err)
		}

		select {
		case <-w.done:
		case <-time.After(w.cfg.StopTimeout):
			w.stopErr = errors.Join(w.stopErr, fmt.Errorf("watch: event loop did not exit within %s", w.cfg.StopTimeout))
		}
	})
	return w.stopErr
}

func (w *Watcher) run() {
	defer close(w.done)

	for {
		select {
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(evt)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.handleError(err) {
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(evt fsnotify.Event) {
	if w.ignored(evt.Name) {
		return
	}
	if evt.Has(fsnotify.Create) {
		w.registerNewDir(evt.Name)
	}
	for _, r := range recordsFor(evt) {
		w.enqueue(r)
	}
}

// handleError queues the error and reports whether observation must end.
func (w *Watcher) handleError(err error) bool {
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		w.log.Warn("backend queue overflow")
		w.mu.Lock()
		if !w.stopped {
			w.queue.markOverflow()
		}
		w.mu.Unlock()
		w.cfg.Metrics.RecordWatcherDropped()
		w.signal()
		return false
	}

	w.enqueue(Record{KindError, err.Error()})
	if !isFatal(err) {
		w.log.Warn("backend error", zap.Error(err))
		return false
	}

	w.log.Error("fatal backend error, observation stopped", zap.Error(err))
	w.mu.Lock()
	w.fatal = err
	w.stopped = true
	w.mu.Unlock()
	return true
}

func (w *Watcher) enqueue(r Record) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	accepted := w.queue.push(r)
	w.mu.Unlock()

	if !accepted {
		w.cfg.Metrics.RecordWatcherDropped()
		return
	}
	w.cfg.Metrics.RecordWatcherEvent(string(r.Kind))
	w.signal()
}

func (w *Watcher) signal() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// registerNewDir extends recursive roots over a directory created after
// they were registered.
func (w *Watcher) registerNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	root, ok := w.recursiveRootOf(path)
	if !ok {
		return
	}

	dirs, err := filesystem.WalkDirs(context.Background(), path, func(p string) bool {
		return w.ignoredUnder(root, p)
	})
	if err != nil {
		w.log.Debug("walk new directory", zap.String("path", path), zap.Error(err))
		return
	}
	for _, d := range dirs {
		if err := w.fsw.Add(d); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
			w.log.Warn("register new directory", zap.String("path", d), zap.Error(err))
		}
	}
}

func (w *Watcher) recursiveRootOf(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, r := range w.roots {
		if r.Recursive && within(r.Path, path) {
			return r.Path, true
		}
	}
	return "", false
}

// ignored matches path against the ignore patterns relative to every root
// that contains it.
func (w *Watcher) ignored(path string) bool {
	if len(w.cfg.Ignore) == 0 {
		return false
	}
	w.mu.Lock()
	roots := make([]string, 0, len(w.roots))
	for _, r := range w.roots {
		roots = append(roots, r.Path)
	}
	w.mu.Unlock()

	for _, root := range roots {
		if w.ignoredUnder(root, path) {
			return true
		}
	}
	return false
}

func (w *Watcher) ignoredUnder(root, path string) bool {
	if len(w.cfg.Ignore) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range w.cfg.Ignore {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, rel+"/"); ok {
			return true
		}
	}
	return false
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
