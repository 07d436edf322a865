package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore holds the currently valid refresh token per user. Storing a new
// token invalidates the previous one, so refresh tokens rotate on use.
type TokenStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

const refreshTokenKeyPrefix = "refresh_token:"

// RedisTokenStore keeps refresh tokens in redis with a TTL.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshTokenKeyPrefix+userID, token, ttl).Err()
}

func (s *RedisTokenStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, refreshTokenKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, refreshTokenKeyPrefix+userID).Err()
}

// MemoryTokenStore is the fallback used when redis is disabled. Tokens do not
// survive a restart; users log in again.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
}

type memoryToken struct {
	token     string
	expiresAt time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]memoryToken)}
}

func (s *MemoryTokenStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = memoryToken{token: token, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Get(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[userID]
	if !ok {
		return "", nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.tokens, userID)
		return "", nil
	}
	return entry.token, nil
}

func (s *MemoryTokenStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}
