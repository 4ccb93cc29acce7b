package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tap-rating-bot/internal/application/usecases"
)

const keyPrefix = "fsm"

// NewRedisClient creates a Redis client and pings it to validate the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// RedisStorage keeps registration sessions in Redis with a sliding TTL
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage creates a session storage; ttl <= 0 keeps sessions forever
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (s *RedisStorage) key(k usecases.SessionKey) string {
	return fmt.Sprintf("%s:%d:%d", keyPrefix, k.ChatID, k.UserID)
}

// Get returns the stored session, or a zero session when none exists
func (s *RedisStorage) Get(ctx context.Context, k usecases.SessionKey) (usecases.Session, error) {
	var session usecases.Session

	raw, err := s.client.Get(ctx, s.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session, nil
	}
	if err != nil {
		return session, fmt.Errorf("failed to read session: %w", err)
	}

	if err := json.Unmarshal(raw, &session); err != nil {
		return usecases.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

// Set stores the session and refreshes its TTL
func (s *RedisStorage) Set(ctx context.Context, k usecases.SessionKey, session usecases.Session) error {
	if session.State == usecases.StateIdle {
		return s.Clear(ctx, k)
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(k), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the session
func (s *RedisStorage) Clear(ctx context.Context, k usecases.SessionKey) error {
	if err := s.client.Del(ctx, s.key(k)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
