package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kinbrio/internal/pkg/errs"
)

// Revoker records logged-out tokens until they expire.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NopRevoker never revokes; sessions then end only by expiry.
type NopRevoker struct{}

func (NopRevoker) Revoke(context.Context, string, time.Time) error { return nil }

func (NopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// RedisRevoker keeps one key per revoked token, expiring with the token.
type RedisRevoker struct {
	client *redis.Client
	prefix string
}

// NewRedisRevoker connects to redisURL and verifies the connection.
func NewRedisRevoker(ctx context.Context, redisURL string) (*RedisRevoker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisRevokerWithClient(client), nil
}

// NewRedisRevokerWithClient builds a revoker on an existing client.
func NewRedisRevokerWithClient(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client, prefix: "revoked:"}
}

func (r *RedisRevoker) key(tokenID string) string {
	return r.prefix + tokenID
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(tokenID), 1, ttl).Err(); err != nil {
		return errs.WithKind(errs.KindUpstream, fmt.Errorf("revoke session: %w", err))
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, r.key(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errs.WithKind(errs.KindUpstream, fmt.Errorf("lookup revoked session: %w", err))
	}
	return true, nil
}

// Close closes the Redis connection.
func (r *RedisRevoker) Close() error {
	return r.client.Close()
}
