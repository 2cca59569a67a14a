package resultcache

import (
	"context"
	"sync"
	"time"

	"github.com/artuross/formula-engine/internal/defaults"
	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/artuross/formula-engine/internal/util/timeutil"
	"github.com/rs/zerolog"
)

type entry struct {
	value     value.Value
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is a process-local result cache. Expired entries are dropped on
// read and, when Run is active, periodically.
type Memory struct {
	mu        sync.RWMutex
	entries   map[string]entry
	clock     timeutil.Clock
	newTicker timeutil.NewTickerFunc
}

func NewMemory(options ...func(*Memory)) *Memory {
	memory := Memory{
		entries:   make(map[string]entry),
		clock:     defaults.Clock,
		newTicker: timeutil.NewTicker,
	}

	for _, apply := range options {
		apply(&memory)
	}

	return &memory
}

func WithClock(clock timeutil.Clock) func(*Memory) {
	return func(m *Memory) {
		m.clock = clock
	}
}

func WithTicker(newTicker timeutil.NewTickerFunc) func(*Memory) {
	return func(m *Memory) {
		m.newTicker = newTicker
	}
}

func (m *Memory) Get(_ context.Context, key string) (value.Value, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if e.expired(m.clock.Now()) {
		m.mu.Lock()
		// the entry may have been refreshed in between
		if current, ok := m.entries[key]; ok && current.expired(m.clock.Now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()

		return nil, false, nil
	}

	return value.Copy(e.value), true, nil
}

// Set stores v under key. A non-positive ttl never expires.
func (m *Memory) Set(_ context.Context, key string, v value.Value, ttl time.Duration) error {
	e := entry{
		value: value.Copy(v),
	}

	if ttl > 0 {
		e.expiresAt = m.clock.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()

	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Purge removes every expired entry and returns how many were removed.
func (m *Memory) Purge() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}

	return removed
}

// Run purges expired entries every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) error {
	logger := zerolog.Ctx(ctx)

	ticker := m.newTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.Chan():
			if removed := m.Purge(); removed > 0 {
				logger.Debug().Int("removed", removed).Msg("purged expired results")
			}
		}
	}
}
