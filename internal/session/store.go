// Package session keeps the server-side login records that session cookies
// point at.  RedisStore and MemoryStore live here; the server falls back to
// the MySQL sessions table (repository.SessionRepo) when Redis is
// unreachable, and uses MemoryStore only when asked for it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chrolluash/rentconnect/internal/model"
	"github.com/chrolluash/rentconnect/internal/utils"
)

// ErrNotFound is returned for unknown, expired or destroyed sessions.
var ErrNotFound = errors.New("session not found")

// Store persists session records keyed by session id.
type Store interface {
	Save(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps each session as a JSON value that expires with the session.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rc:sess"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) key(id string) string { return r.prefix + ":" + utils.HashSessionID(id) }

func (r *RedisStore) Save(ctx context.Context, s *model.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return ErrNotFound
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(s.ID), b, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*model.Session, error) {
	b, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}

// MemoryStore is the single-process fallback used when Redis is unavailable.
// Sessions do not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]model.Session
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]model.Session), now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = *s
	m.sweepLocked()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	s, ok := m.data[id]
	m.mu.RUnlock()
	if !ok || s.Expired(m.now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}

// sweepLocked drops expired records; callers hold mu.
func (m *MemoryStore) sweepLocked() {
	now := m.now()
	for id, s := range m.data {
		if s.Expired(now) {
			delete(m.data, id)
		}
	}
}
