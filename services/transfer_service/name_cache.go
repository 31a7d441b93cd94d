package transfer_service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NameCache remembers resolved account holder names.
type NameCache interface {
	Get(ctx context.Context, bankCode, accountNumber string) (string, bool, error)
	Set(ctx context.Context, bankCode, accountNumber, name string, ttl time.Duration) error
}

// RedisNameCache stores names as plain strings under a per-account key.
type RedisNameCache struct {
	client *redis.Client
}

func NewRedisNameCache(client *redis.Client) *RedisNameCache {
	return &RedisNameCache{client: client}
}

func nameKey(bankCode, accountNumber string) string {
	return "transfer:account_name:" + bankCode + ":" + accountNumber
}

func (c *RedisNameCache) Get(ctx context.Context, bankCode, accountNumber string) (string, bool, error) {
	name, err := c.client.Get(ctx, nameKey(bankCode, accountNumber)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

func (c *RedisNameCache) Set(ctx context.Context, bankCode, accountNumber, name string, ttl time.Duration) error {
	return c.client.Set(ctx, nameKey(bankCode, accountNumber), name, ttl).Err()
}
