package session

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a session survives without being touched.
	DefaultTTL = 4 * time.Hour
	// DefaultSweepInterval is how often the background sweeper runs.
	DefaultSweepInterval = 1 * time.Hour

	lockStripes = 64
)

// Config holds store configuration.
type Config struct {
	// TTL is the idle duration after which a session is evicted.
	// Zero means sessions never expire.
	TTL time.Duration
	// SweepInterval is the period of the background sweeper.
	SweepInterval time.Duration
	Logger        *slog.Logger
}

// Store is a thread-safe in-memory session store. Sessions are created on
// first reference and removed by Clear or by the TTL sweep; an unknown
// session ID is never an error, only an empty history.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionData

	// stripes serialize whole-pipeline mutations per session ID so that
	// concurrent queries for the same session cannot interleave turn order.
	stripes [lockStripes]sync.Mutex

	ttl           time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
	now      func() time.Time
}

// NewStore creates a session store. Zero config fields fall back to defaults.
func NewStore(cfg Config) *Store {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	interval := cfg.SweepInterval
	if interval == 0 {
		interval = DefaultSweepInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions:      make(map[string]*sessionData),
		ttl:           ttl,
		sweepInterval: interval,
		logger:        logger,
		stopChan:      make(chan struct{}),
		now:           time.Now,
	}
}

// GetOrCreate ensures a session exists and marks it as accessed.
func (s *Store) GetOrCreate(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(sessionID)
}

// AppendUserTurn appends a user turn and marks the session as accessed.
func (s *Store) AppendUserTurn(sessionID, content string) {
	s.append(sessionID, RoleUser, content)
}

// AppendAssistantTurn appends an assistant turn and marks the session as accessed.
func (s *Store) AppendAssistantTurn(sessionID, content string) {
	s.append(sessionID, RoleAssistant, content)
}

func (s *Store) append(sessionID string, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.touch(sessionID)
	data.turns = append(data.turns, Turn{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	})
}

// touch returns the session, creating it if needed, and updates lastAccessed.
// Caller must hold s.mu.
func (s *Store) touch(sessionID string) *sessionData {
	now := s.now()
	data, ok := s.sessions[sessionID]
	if !ok {
		data = &sessionData{createdAt: now}
		s.sessions[sessionID] = data
	}
	data.lastAccessed = now
	return data
}

// History returns the session's turns in chronological order. If limit > 0,
// only the most recent limit turns are returned. Unknown sessions yield an
// empty slice.
func (s *Store) History(sessionID string, limit int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}

	turns := data.turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Clear removes the session entirely. A later access creates a fresh one.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes every session idle longer than the TTL relative to now and
// returns the number of evicted sessions. Safe to call concurrently with
// reads; idempotent.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, data := range s.sessions {
		if now.Sub(data.lastAccessed) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Start launches the background sweeper. Call Stop to shut it down.
func (s *Store) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				if evicted := s.Sweep(s.now()); evicted > 0 {
					s.logger.Debug("evicted idle sessions", slog.Int("count", evicted))
				}
			}
		}
	}()
}

// Stop terminates the background sweeper and waits for it to exit.
// Safe to call multiple times.
func (s *Store) Stop() {
	s.once.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}

// LockSession acquires the write lock for a session ID and returns the
// matching unlock. Sessions sharing a stripe contend with each other, which
// bounds the lock table without leaking per-key mutexes.
func (s *Store) LockSession(sessionID string) func() {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	stripe := &s.stripes[h.Sum32()%lockStripes]
	stripe.Lock()
	return stripe.Unlock
}
