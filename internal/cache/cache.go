package cache

import (
	"context"
	"sync"
	"time"

	applog "tracker/internal/log"
)

// Cache is the read-through memo used for derived dashboard views.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Purge()
	Size() int
}

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps expired entries of every registered cache on an interval.
type Manager struct {
	mu     sync.Mutex
	caches []Cleaner
	logger *applog.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a manager. A nil logger disables sweep logging.
func NewManager(logger *applog.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register adds c to the sweep set.
func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// Sweep cleans every registered cache once and returns the number of evicted entries.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	if total > 0 && m.logger != nil {
		m.logger.Debug("Expired cache entries removed", applog.FieldCount, total)
	}
	return total
}

// StartCleanup runs Sweep every interval until ctx is cancelled or Stop is called.
// A non-positive interval starts nothing: entries without expiry need no sweeping.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the cleanup loop and waits for it to exit. Safe to call when
// cleanup was never started.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
