package cooldown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps cooldowns in a Redis hash per unit:
// key "cooldown:<unit>", field = ability name, value = expiry in unix millis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func unitKey(unitID uuid.UUID) string {
	return fmt.Sprintf("cooldown:%s", unitID)
}

// Set implements Store.
func (r *RedisStore) Set(ctx context.Context, unitID uuid.UUID, ability string, until time.Time) error {
	if ability == "" {
		return errors.New("ability name cannot be empty")
	}
	if err := r.client.HSet(ctx, unitKey(unitID), ability, until.UnixMilli()).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown in Redis: %w", err)
	}
	return nil
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, unitID uuid.UUID, ability string) (time.Time, error) {
	raw, err := r.client.HGet(ctx, unitKey(unitID), ability).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, fmt.Errorf("unit %s ability %s: %w", unitID, ability, ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("failed to get cooldown from Redis: %w", err)
	}
	return parseMillis(raw)
}

// All implements Store.
func (r *RedisStore) All(ctx context.Context, unitID uuid.UUID) (map[string]time.Time, error) {
	fields, err := r.client.HGetAll(ctx, unitKey(unitID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldowns from Redis: %w", err)
	}
	out := make(map[string]time.Time, len(fields))
	for ability, raw := range fields {
		until, err := parseMillis(raw)
		if err != nil {
			return nil, fmt.Errorf("ability %s: %w", ability, err)
		}
		out[ability] = until
	}
	return out, nil
}

// Clear implements Store.
func (r *RedisStore) Clear(ctx context.Context, unitID uuid.UUID, ability string) error {
	if err := r.client.HDel(ctx, unitKey(unitID), ability).Err(); err != nil {
		return fmt.Errorf("failed to clear cooldown in Redis: %w", err)
	}
	return nil
}

func parseMillis(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing cooldown expiry %q: %w", raw, err)
	}
	return time.UnixMilli(ms), nil
}
