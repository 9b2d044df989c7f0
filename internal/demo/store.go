package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store caches the rendered demo cards.
type Store interface {
	Get(ctx context.Context) ([]Card, bool, error)
	Set(ctx context.Context, cards []Card, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// MemoryStore keeps cards in process.
type MemoryStore struct {
	mu        sync.RWMutex
	cards     []Card
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(context.Context) ([]Card, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cards == nil || time.Now().After(s.expiresAt) {
		return nil, false, nil
	}
	return s.cards, true, nil
}

func (s *MemoryStore) Set(_ context.Context, cards []Card, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = cards
	s.expiresAt = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) Invalidate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = nil
	return nil
}

// RedisStore shares the cards between replicas under one key.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore uses key, or "aitools:demos" when empty.
func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = "aitools:demos"
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Get(ctx context.Context) ([]Card, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var cards []Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, false, fmt.Errorf("decode cached demos: %w", err)
	}
	return cards, true, nil
}

func (s *RedisStore) Set(ctx context.Context, cards []Card, ttl time.Duration) error {
	raw, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("encode demos: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
