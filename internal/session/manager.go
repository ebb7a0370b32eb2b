package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"artshop/internal/metrics"
	"artshop/pkg/logging"
)

var ErrNotFound = errors.New("session not found")

// Manager owns the live sessions. Sessions share nothing with each other;
// the lock only guards the id index.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*State

	Loader   Loader
	Notifier Notifier
	Idle     time.Duration
	OnEnd    func(id string)
	Logger   *zap.Logger
}

func NewManager(loader Loader, notifier Notifier, idle time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*State),
		Loader:   loader,
		Notifier: notifier,
		Idle:     idle,
		Logger:   logging.OrNop(logger).Named("session"),
	}
}

// Create starts a session and loads its galleries.
func (m *Manager) Create(ctx context.Context) *State {
	st := NewState(uuid.NewString(), m.Notifier)
	st.Reload(ctx, m.Loader)

	m.mu.Lock()
	m.sessions[st.ID()] = st
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SessionsLive(n)
	st.emit(EventCreated)
	logging.OrNop(m.Logger).Info("session created", zap.String("session_id", st.ID()), zap.Int("live", n))
	return st
}

func (m *Manager) Get(id string) (*State, error) {
	m.mu.RLock()
	st, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return st, nil
}

// Lookup returns the current snapshot of a live session.
func (m *Manager) Lookup(id string) (any, bool) {
	st, err := m.Get(id)
	if err != nil {
		return nil, false
	}
	return st.Snapshot(), true
}

// End tears a session down.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	st, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	metrics.SessionsLive(n)
	st.emit(EventEnded)
	if m.OnEnd != nil {
		m.OnEnd(id)
	}
	logging.OrNop(m.Logger).Info("session ended", zap.String("session_id", id), zap.Int("live", n))
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep ends sessions idle for longer than m.Idle and returns how many.
func (m *Manager) Sweep(now time.Time) int {
	if m.Idle <= 0 {
		return 0
	}

	var stale []string
	m.mu.RLock()
	for id, st := range m.sessions {
		if now.Sub(st.LastSeen()) > m.Idle {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	ended := 0
	for _, id := range stale {
		if err := m.End(id); err == nil {
			ended++
		}
	}
	return ended
}

// RunSweeper sweeps every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := m.Sweep(now); n > 0 {
				logging.OrNop(m.Logger).Info("idle sessions swept", zap.Int("ended", n))
			}
		}
	}
}
