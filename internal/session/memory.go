package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]Identity
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]Identity),
		now:      time.Now,
	}
}

func (m *MemoryStore) Set(ctx context.Context, token string, id Identity) error {
	now := m.now()
	if id.CreatedAt.IsZero() {
		id.CreatedAt = now
	}
	if id.ExpiresAt.IsZero() {
		id.ExpiresAt = now.Add(m.ttl)
	}

	m.mu.Lock()
	m.sessions[token] = id
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, token string) (Identity, error) {
	m.mu.RLock()
	id, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return Identity{}, ErrNotFound
	}
	if !id.ExpiresAt.After(m.now()) {
		m.Delete(ctx, token)
		return Identity{}, ErrExpired
	}
	return id, nil
}

func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, id := range m.sessions {
		if id.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *MemoryStore) Expire(ctx context.Context) (int, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for token, id := range m.sessions {
		if !id.ExpiresAt.After(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RunJanitor calls Expire on every tick until ctx is done.
func RunJanitor(ctx context.Context, s Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Expire(ctx)
			if err != nil {
				log.Error().Err(err).Msg("expiring sessions failed")
				continue
			}
			if n > 0 {
				log.Debug().Int("removed", n).Msg("expired sessions purged")
			}
		}
	}
}
