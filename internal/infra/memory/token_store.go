package memory

import (
	"context"
	"sync"

	"brainquest/internal/domain"
)

// TokenStore is an in-memory implementation of app.TokenStore. Values live as
// long as the process.
type TokenStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		values: make(map[string]string),
	}
}

func (s *TokenStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *TokenStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", domain.ErrTokenNotFound
	}
	return value, nil
}

func (s *TokenStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
