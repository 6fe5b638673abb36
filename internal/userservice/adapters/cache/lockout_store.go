package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/ports"
)

const lockoutKeyPrefix = "auth:lockout:"

type lockoutPayload struct {
	Failures    int        `json:"failures"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// RedisLockoutStore tracks consecutive login failures per email key.
type RedisLockoutStore struct {
	client *redis.Client
}

func NewRedisLockoutStore(client *redis.Client) *RedisLockoutStore {
	return &RedisLockoutStore{client: client}
}

func (s *RedisLockoutStore) Get(ctx context.Context, key string) (ports.LockoutState, error) {
	raw, err := s.client.Get(ctx, lockoutKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.LockoutState{}, nil
	}
	if err != nil {
		return ports.LockoutState{}, fmt.Errorf("read lockout: %w", err)
	}
	var payload lockoutPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ports.LockoutState{}, fmt.Errorf("decode lockout: %w", err)
	}
	return ports.LockoutState{Failures: payload.Failures, LockedUntil: payload.LockedUntil}, nil
}

func (s *RedisLockoutStore) RecordFailure(ctx context.Context, key string, at time.Time, threshold int, lockFor time.Duration) (ports.LockoutState, error) {
	state, err := s.Get(ctx, key)
	if err != nil {
		return ports.LockoutState{}, err
	}
	state.Failures++
	if threshold > 0 && state.Failures >= threshold {
		until := at.Add(lockFor)
		state.LockedUntil = &until
	}

	raw, _ := json.Marshal(lockoutPayload{Failures: state.Failures, LockedUntil: state.LockedUntil})
	ttl := lockFor
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := s.client.Set(ctx, lockoutKeyPrefix+key, raw, ttl).Err(); err != nil {
		return ports.LockoutState{}, fmt.Errorf("write lockout: %w", err)
	}
	return state, nil
}

func (s *RedisLockoutStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, lockoutKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}
