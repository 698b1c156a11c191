// internal/reports/conversation/memory.go
package conversation

import (
	"context"
	"sync"
	"time"
)

type MemoryOptions struct {
	// TTL expires sessions idle for longer than this. Zero keeps sessions for
	// the process lifetime.
	TTL             time.Duration
	JanitorInterval time.Duration
	Now             func() time.Time
}

type memorySession struct {
	mu         sync.Mutex
	ctx        *Context
	lastAccess time.Time
}

// MemoryStore keeps sessions in process memory behind one lock per session.
// The map lock is only held to look sessions up, never while a session is
// being modified.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession

	ttl  time.Duration
	now  func() time.Time
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewMemoryStore(opts MemoryOptions) *MemoryStore {
	now := opts.Now
	if now == nil {
		now = systemNow
	}
	s := &MemoryStore{
		sessions: make(map[string]*memorySession),
		ttl:      opts.TTL,
		now:      now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if s.ttl > 0 {
		interval := opts.JanitorInterval
		if interval <= 0 {
			interval = time.Minute
		}
		go s.janitor(interval)
	} else {
		close(s.done)
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Context, error) {
	var snapshot *Context
	err := s.Update(ctx, sessionID, func(c *Context) error {
		snapshot = c.Clone()
		return nil
	})
	return snapshot, err
}

func (s *MemoryStore) Update(ctx context.Context, sessionID string, fn func(c *Context) error) error {
	sess := s.lock(sessionID)
	defer sess.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.now()
	if s.expired(sess, now) {
		sess.ctx = NewContext(sessionID, now)
	}
	sess.lastAccess = now

	working := sess.ctx.Clone()
	if err := fn(working); err != nil {
		return err
	}
	sess.ctx = working
	return nil
}

// lock returns the live session for id with its lock held. A session that was
// dropped between lookup and locking is skipped and looked up again.
func (s *MemoryStore) lock(id string) *memorySession {
	for {
		s.mu.Lock()
		sess, ok := s.sessions[id]
		if !ok {
			now := s.now()
			sess = &memorySession{ctx: NewContext(id, now), lastAccess: now}
			s.sessions[id] = sess
		}
		s.mu.Unlock()

		sess.mu.Lock()
		if s.isLive(id, sess) {
			return sess
		}
		sess.mu.Unlock()
	}
}

func (s *MemoryStore) isLive(id string, sess *memorySession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id] == sess
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.drop(sessionID, sess)
	return nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	s.sessions = make(map[string]*memorySession)
	s.mu.Unlock()
	return nil
}

// Len reports the number of sessions currently held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the janitor. The store stays usable.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

func (s *MemoryStore) drop(id string, sess *memorySession) {
	s.mu.Lock()
	if s.sessions[id] == sess {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
}

func (s *MemoryStore) expired(sess *memorySession, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastAccess) > s.ttl
}

func (s *MemoryStore) janitor(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *MemoryStore) evictExpired() {
	s.mu.Lock()
	candidates := make(map[string]*memorySession, len(s.sessions))
	for id, sess := range s.sessions {
		candidates[id] = sess
	}
	s.mu.Unlock()

	now := s.now()
	for id, sess := range candidates {
		sess.mu.Lock()
		if s.expired(sess, now) {
			s.drop(id, sess)
		}
		sess.mu.Unlock()
	}
}
