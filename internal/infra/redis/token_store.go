package redis

import (
	"context"
	"errors"
	"time"

	"brainquest/internal/domain"

	"github.com/redis/go-redis/v9"
)

// TokenStore keeps credentials in Redis so several client processes on one
// host can share a login. A zero ttl keeps values until removed.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

func (s *TokenStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *TokenStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrTokenNotFound
	}
	return value, err
}

func (s *TokenStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *TokenStore) key(key string) string {
	return "brainquest:store:" + key
}
