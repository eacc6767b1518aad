package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KeyPreferences       = "contentdesk:preferences"
	KeyEngagementHistory = "contentdesk:history:engagement"

	// DefaultTTL replaces a non-positive ttl so no backend keeps an entry forever
	// or drops it on write.
	DefaultTTL = 5 * time.Minute
)

// Cache holds short-lived copies of read-mostly data. Writers invalidate the
// affected keys; entries also expire on their own after the TTL.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Store struct {
	client *redis.Client

	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// NewStore connects to redis at addr and falls back to process memory when
// redis cannot be reached.
func NewStore(addr string) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, using in-memory cache", "error", err)
		_ = client.Close()
		return NewMemoryStore()
	}

	return &Store{client: client}
}

func NewMemoryStore() *Store {
	return &Store{entries: make(map[string]entry), now: time.Now}
}

func (s *Store) IsInMemory() bool {
	return s.client == nil
}

func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	var payload []byte

	if s.client != nil {
		val, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return false, nil
			}
			return false, err
		}
		payload = val
	} else {
		s.mu.Lock()
		e, ok := s.entries[key]
		if ok && !s.now().Before(e.expiresAt) {
			delete(s.entries, key)
			ok = false
		}
		s.mu.Unlock()
		if !ok {
			return false, nil
		}
		payload = e.payload
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.client != nil {
		return s.client.Set(ctx, key, payload, ttl).Err()
	}

	s.mu.Lock()
	s.entries[key] = entry{payload: payload, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if s.client != nil {
		return s.client.Del(ctx, keys...).Err()
	}

	s.mu.Lock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
