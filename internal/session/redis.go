package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis so several server instances can share
// them. Expiry is delegated to the key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Create(ctx context.Context, principal account.Principal) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	payload, err := json.Marshal(principal)
	if err != nil {
		return "", fmt.Errorf("encode principal: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*account.Principal, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	var principal account.Principal
	if err := json.Unmarshal(payload, &principal); err != nil {
		return nil, fmt.Errorf("decode principal: %w", err)
	}

	return &principal, nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
