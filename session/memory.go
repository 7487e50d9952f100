package session

import (
	"context"
	"sync"
	"time"

	"github.com/nachoal/parts-agent-go/internal/metrics"
)

// MemoryStore is an in-process Store. A sweeper goroutine started by
// NewMemoryStore evicts idle sessions until Close.
type MemoryStore struct {
	opts     options
	mu       sync.RWMutex
	sessions map[string]*Session

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewMemoryStore creates a memory store and starts its sweeper
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &MemoryStore{
		opts:     o,
		sessions: make(map[string]*Session),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go runSweeper(ctx, m, m.opts, m.done)
	return m
}

// Get returns a copy of the session
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// Save stores a copy of s
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	m.sessions[s.ID] = s.Clone()
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SetActiveSessions(n)
	return nil
}

// Delete removes the session. Deleting a missing id is not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SetActiveSessions(n)
	return nil
}

// Sweep evicts sessions idle for longer than the timeout as of now
func (m *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	evicted := 0
	for id, s := range m.sessions {
		if expired(s, now, m.opts.timeout) {
			delete(m.sessions, id)
			evicted++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.RecordEvictions(evicted)
	metrics.SetActiveSessions(n)
	return evicted, nil
}

// Len returns the number of held sessions
func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// Close stops the sweeper and waits for it to exit
func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		m.cancel()
		<-m.done
	})
	return nil
}
