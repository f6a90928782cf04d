package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cache is the behaviour the ledger needs from a snapshot cache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Purge()
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
	Size() int
}

// Manager periodically cleans registered caches until Stop is called.
type Manager struct {
	caches   []Cleaner
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register must be called before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

func (m *Manager) StartCleanup(interval time.Duration) {
	go m.run(interval)
}

func (m *Manager) run(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned, remaining := m.sweep(); cleaned > 0 {
				slog.Debug("Expired cache entries removed", "component", "cache", "count", cleaned, "remaining", remaining)
			}
		case <-m.stop:
			return
		}
	}
}

// sweep cleans every registered cache and reports how many entries were
// dropped and how many are left.
func (m *Manager) sweep() (cleaned, remaining int) {
	for _, c := range m.caches {
		cleaned += c.CleanExpired()
		remaining += c.Size()
	}
	return cleaned, remaining
}

// Stop ends the cleanup loop and waits for it. Only valid after StartCleanup.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		<-m.done
	})
}
