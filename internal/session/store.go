package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	shardedcache "github.com/simp-lee/cache"
)

// Store persists sessions keyed by their ID.
type Store interface {
	// Create assigns s a fresh ID and stores it until s.ExpiresAt.
	Create(ctx context.Context, s *Session) error
	// Get returns the session with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// DefaultMaxSessions bounds a MemoryStore built without WithMaxSessions.
const DefaultMaxSessions = 10000

const memoryShards = 16

// MemoryOption configures a MemoryStore.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	maxSessions int
	cleanup     time.Duration
}

// WithMaxSessions caps the number of live sessions. The oldest session of a
// full shard is evicted first.
func WithMaxSessions(n int) MemoryOption {
	return func(o *memoryOptions) { o.maxSessions = n }
}

// WithCleanupInterval sets how often expired sessions are purged.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.cleanup = d }
}

// MemoryStore keeps sessions in a sharded in-process cache. Each entry
// expires with its session.
type MemoryStore struct {
	cache     shardedcache.CacheInterface
	now       func() time.Time
	closeOnce sync.Once
}

// NewMemoryStore returns an empty MemoryStore. Call Close to stop its
// cleanup goroutines.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	o := memoryOptions{maxSessions: DefaultMaxSessions, cleanup: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}
	perShard := 0
	if o.maxSessions > 0 {
		perShard = (o.maxSessions + memoryShards - 1) / memoryShards
	}
	return &MemoryStore{
		cache: shardedcache.NewCache(shardedcache.Options{
			MaxSize:         perShard,
			CleanupInterval: o.cleanup,
			ShardCount:      memoryShards,
		}),
		now: time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	if s == nil {
		return errors.New("session is nil")
	}
	ttl := s.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	s.ID = uuid.NewString()
	m.cache.SetWithExpiration(s.ID, *s, ttl)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s, ok := shardedcache.GetTyped[Session](m.cache, id)
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(s.ExpiresAt) {
		m.cache.Delete(id)
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

// Len returns the number of stored sessions, expired ones not yet purged
// included.
func (m *MemoryStore) Len() int {
	return m.cache.Count()
}

// Close stops the cleanup goroutines. It is safe to call more than once.
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(m.cache.Close)
	return nil
}

// RedisStore keeps sessions as JSON values with a TTL matching their expiry,
// so several dashboard replicas can share them.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a RedisStore writing keys under prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	if s == nil {
		return errors.New("session is nil")
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	s.ID = uuid.NewString()

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// Unreadable entries are dropped rather than retried forever.
		_ = r.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SaveFile writes s to path with owner-only permissions. The CLI uses it to
// keep its login between invocations.
func SaveFile(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// LoadFile reads a session written by SaveFile. Missing, unreadable or
// expired files yield ErrNotFound.
func LoadFile(path string, now time.Time) (*Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil || !s.IsAuthenticated(now) {
		return nil, ErrNotFound
	}
	return &s, nil
}
