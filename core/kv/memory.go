package kv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// entry is a stored value with its absolute expiry time. A zero expiresAt
// means the entry never expires.
type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory implements Store with an in-process map. Suitable for tests and
// single-instance deployments; multi-instance deployments should use the
// Redis-backed store so nonces and elevation sessions are shared.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry

	cleanupInterval time.Duration
	logger          *slog.Logger

	cancel  context.CancelFunc
	running atomic.Bool

	entriesRemoved atomic.Int64
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithCleanupInterval sets how often expired entries are swept. Reads already
// treat expired entries as absent; the sweep only reclaims memory.
func WithCleanupInterval(interval time.Duration) MemoryOption {
	return func(m *Memory) {
		m.cleanupInterval = interval
	}
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(logger *slog.Logger) MemoryOption {
	return func(m *Memory) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMemory creates an in-memory TTL store. Call Start to begin background
// cleanup of expired entries.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:         make(map[string]entry),
		cleanupInterval: time.Minute,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		return nil, ErrNotFound
	}

	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	m.entries[key] = newEntry(value, ttl)
	m.mu.Unlock()
	return nil
}

// SetNX writes only when the key is absent or expired. The check and write
// happen under one lock, making this the atomic replay guard.
func (m *Memory) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && !e.expired(time.Now()) {
		return false, nil
	}
	m.entries[key] = newEntry(value, ttl)
	return true, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	return ok && !e.expired(time.Now()), nil
}

func newEntry(value []byte, ttl time.Duration) entry {
	stored := make([]byte, len(value))
	copy(stored, value)

	e := entry{value: stored}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	return e
}

// Start runs the background sweep until the context is cancelled. Blocking;
// run it in a goroutine or under an errgroup.
func (m *Memory) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return fmt.Errorf("memory store already started")
	}
	if m.cleanupInterval <= 0 {
		m.mu.Unlock()
		return fmt.Errorf("cleanup interval must be > 0, got %v", m.cleanupInterval)
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	m.running.Store(true)
	defer m.running.Store(false)

	m.logger.InfoContext(ctx, "kv memory store cleanup started",
		slog.Duration("cleanup_interval", m.cleanupInterval))

	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

// Stop cancels the background sweep started with Start.
func (m *Memory) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (m *Memory) removeExpired() {
	now := time.Now()

	m.mu.Lock()
	removed := 0
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	m.mu.Unlock()

	if removed > 0 {
		m.entriesRemoved.Add(int64(removed))
	}
}

// Len returns the number of live (unexpired) entries. Intended for tests and
// health reporting.
func (m *Memory) Len() int {
	now := time.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
