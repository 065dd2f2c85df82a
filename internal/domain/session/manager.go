package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/trussfs/internal/domain/vfs"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/types"
)

// ErrNoPrompt is returned by ReadLine inside bridge sessions.
var ErrNoPrompt = errors.New("line prompt is not available to remote sessions")

type noPrompt struct{}

func (noPrompt) ReadLine(string) (string, error) { return "", ErrNoPrompt }

// Session is one remote caller's context.
type Session struct {
	ID      string
	Context *vfs.Context
	Created time.Time

	lastSeen atomic.Int64 // unix nanos
}

// Touch marks the session active.
func (s *Session) Touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen returns the time of the latest activity.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Info describes the session for API responses.
func (s *Session) Info() types.ContextInfo {
	info := types.ContextInfo{
		ID:      s.ID,
		Version: vfs.VersionNumber(),
	}
	info.WorkingDir, _ = s.Context.WorkingDir()
	info.BinaryDir, _ = s.Context.BinaryDir()
	return info
}

// Manager tracks live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session // Protected by mu

	cfg     *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics
	ttl     time.Duration

	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewManager creates a manager whose sessions use cfg.
func NewManager(cfg *config.Config, log *logging.Logger) *Manager {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		log:      log.Named("session"),
		ttl:      cfg.Server.SessionTTL,
		stop:     make(chan struct{}),
	}
}

// WithMetrics shares metrics with every session context.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Create opens a new session.
func (m *Manager) Create() *Session {
	ctx := vfs.New(
		vfs.WithConfig(m.cfg),
		vfs.WithLogger(m.log),
		vfs.WithMetrics(m.metrics),
		vfs.WithPrompter(noPrompt{}),
	)
	s := &Session{ID: ctx.ID(), Context: ctx, Created: time.Now()}
	s.Touch()

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetSessionsActive(n)
	m.log.Info("session opened", zap.String("session", s.ID))
	return s
}

// Get returns the session and marks it active.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.Touch()
	}
	return s, ok
}

// Close ends a session and releases its resources.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return fserr.NotFound("session_close", id)
	}
	m.metrics.SetSessionsActive(n)
	m.log.Info("session closed", zap.String("session", id))
	return s.Context.Close()
}

// List returns sessions ordered by creation time.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap closes sessions idle since before now-TTL and returns how many were
// closed. A non-positive TTL disables reaping.
func (m *Manager) Reap(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-m.ttl)

	var expired []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		if err := m.Close(id); err != nil && !errors.Is(err, fserr.ErrNotFound) {
			m.log.Warn("reaped session released with errors", zap.String("session", id), zap.Error(err))
		}
	}
	if len(expired) > 0 {
		m.log.Info("reaped idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Start runs the reaper until ctx ends or Shutdown is called.
func (m *Manager) Start(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}
	interval := m.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case now := <-ticker.C:
				m.Reap(now)
			}
		}
	}()
}

// Shutdown stops the reaper and closes every session.
func (m *Manager) Shutdown() error {
	m.stopOnce.Do(func() { close(m.stop) })
	m.wg.Wait()

	var errs []error
	for _, s := range m.List() {
		if err := m.Close(s.ID); err != nil && !errors.Is(err, fserr.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
