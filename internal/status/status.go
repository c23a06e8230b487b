// Package status holds free-text progress lines for in-flight generation
// requests, keyed by a caller-supplied request id and polled by the client.
package status

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("status not found")

// Key scopes a client request id to its user so one user cannot poll
// another's progress. An empty request id stays empty.
func Key(userID, requestID string) string {
	if requestID == "" {
		return ""
	}
	return userID + "/" + requestID
}

type Store interface {
	Set(ctx context.Context, requestID, message string) error
	Get(ctx context.Context, requestID string) (string, error)
	Delete(ctx context.Context, requestID string) error
}

// MemoryStore keeps statuses in process memory. Entries live until deleted;
// each request id has a single writer.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (s *MemoryStore) Set(ctx context.Context, requestID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[requestID] = message
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, requestID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	message, ok := s.entries[requestID]
	if !ok {
		return "", ErrNotFound
	}
	return message, nil
}

func (s *MemoryStore) Delete(ctx context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, requestID)
	return nil
}

const (
	redisKeyPrefix = "contra:status:"
	redisTTL       = time.Hour
)

// RedisStore shares statuses between API instances. The TTL only guards
// against ids whose owner died before deleting them.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, requestID, message string) error {
	return s.client.Set(ctx, redisKeyPrefix+requestID, message, redisTTL).Err()
}

func (s *RedisStore) Get(ctx context.Context, requestID string) (string, error) {
	message, err := s.client.Get(ctx, redisKeyPrefix+requestID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return message, err
}

func (s *RedisStore) Delete(ctx context.Context, requestID string) error {
	return s.client.Del(ctx, redisKeyPrefix+requestID).Err()
}
