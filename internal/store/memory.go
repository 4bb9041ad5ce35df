// internal/store/memory.go
//
// In-memory registry of live player sessions.
//
// Characteristics:
//   - Stores *session.Session objects keyed by player ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - GetOrCreate builds a missing session under the write lock, so a burst of
//     first requests from one player yields exactly one session.
//   - Idle sessions are dropped by Sweep; RunJanitor calls it on a ticker.
//   - State is lost when the process restarts; persisted statistics are not,
//     they live behind the stats.KV backend.

package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RedCodeSnoo/Lotm-dle/internal/session"
)

// ErrNotFound is returned by Get for an unknown player.
var ErrNotFound = errors.New("session not found")

// Store defines the registry interface for live sessions.
type Store interface {
	// Save adds or replaces the player's session.
	Save(ctx context.Context, s *session.Session) error

	// Get retrieves the session for playerID or ErrNotFound.
	Get(ctx context.Context, playerID string) (*session.Session, error)

	// GetOrCreate returns the player's session, calling create exactly once
	// when none exists. Concurrent callers for the same player share the result.
	GetOrCreate(ctx context.Context, playerID string, create func() (*session.Session, error)) (*session.Session, error)

	// Sweep drops sessions last used before cutoff and reports how many.
	Sweep(cutoff time.Time) int

	// Len reports how many sessions are live.
	Len() int
}

type entry struct {
	sess *session.Session
	seen atomic.Int64 // unix nanos; Get updates it under the read lock
}

func newEntry(s *session.Session, now time.Time) *entry {
	e := &entry{sess: s}
	e.touch(now)
	return e
}

func (e *entry) touch(t time.Time) { e.seen.Store(t.UnixNano()) }

func (e *entry) lastSeen() time.Time { return time.Unix(0, e.seen.Load()) }

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*entry), now: time.Now}
}

func (m *memory) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.PlayerID()] = newEntry(s, m.now())
	return nil
}

func (m *memory) Get(ctx context.Context, playerID string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[playerID]; ok {
		e.touch(m.now())
		return e.sess, nil
	}
	return nil, ErrNotFound
}

func (m *memory) GetOrCreate(ctx context.Context, playerID string, create func() (*session.Session, error)) (*session.Session, error) {
	if s, err := m.Get(ctx, playerID); err == nil {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have created it while we waited for the lock.
	if e, ok := m.sessions[playerID]; ok {
		e.touch(m.now())
		return e.sess, nil
	}
	s, err := create()
	if err != nil {
		return nil, err
	}
	m.sessions[playerID] = newEntry(s, m.now())
	return s, nil
}

func (m *memory) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.lastSeen().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RunJanitor sweeps sessions idle for longer than idle every interval until
// ctx is done. A non-positive idle or interval disables it.
func RunJanitor(ctx context.Context, st Store, interval, idle time.Duration) {
	if interval <= 0 || idle <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := st.Sweep(now.Add(-idle)); n > 0 {
				log.Debug().Int("evicted", n).Int("live", st.Len()).Msg("idle sessions swept")
			}
		}
	}
}
