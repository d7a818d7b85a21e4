package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-engine/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Runners live in process; Redis only carries a liveness marker per session
// so other tooling can see which sessions are open. The marker holds the time
// the session opened and its TTL is pushed forward while the session is active.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*app.Runner
	touched  map[string]time.Time
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*app.Runner),
		touched:  make(map[string]time.Time),
	}
}

func (s *SessionStore) Save(ctx context.Context, runner *app.Runner) error {
	now := s.now()
	if err := s.client.Set(ctx, s.key(runner.ID()), now.UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[runner.ID()] = runner
	s.touched[runner.ID()] = now
	s.mu.Unlock()
	return nil
}

// Touch refreshes the marker's TTL. Countdown ticks touch every second, so
// refreshes are limited to one per tenth of the TTL.
func (s *SessionStore) Touch(ctx context.Context, sessionID string) error {
	if s.ttl <= 0 {
		return nil
	}
	now := s.now()
	s.mu.Lock()
	last, ok := s.touched[sessionID]
	if !ok || now.Sub(last) < s.ttl/10 {
		s.mu.Unlock()
		return nil
	}
	s.touched[sessionID] = now
	s.mu.Unlock()

	return s.client.Expire(ctx, s.key(sessionID), s.ttl).Err()
}

func (s *SessionStore) Get(sessionID string) (*app.Runner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runner, ok := s.sessions[sessionID]
	return runner, ok
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	delete(s.touched, sessionID)
	s.mu.Unlock()
	// best-effort; the marker expires on its own
	_ = s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
