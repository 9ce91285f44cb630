// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
)

// redisScanCount is the COUNT hint used when listing keys.
const redisScanCount = 100

// RedisBackend is a Backend over redis.  It lets several processes (or
// several hosts of the same web client) share session state.
type RedisBackend struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    hclog.Logger
}

// ensure that RedisBackend implements the Backend interface
var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend creates a RedisBackend using a pre-configured client. The
// caller owns the client and is responsible for closing it.
//
// Supported options:
//
//	WithKeyPrefix
//	WithLogger
func NewRedisBackend(client redis.UniversalClient, opt ...Option) (*RedisBackend, error) {
	const op = "storage.NewRedisBackend"
	if client == nil {
		return nil, fmt.Errorf("%s: redis client is nil: %w", op, ErrNilParameter)
	}
	opts := getRedisOpts(opt...)
	return &RedisBackend{
		client:    client,
		keyPrefix: opts.withKeyPrefix,
		logger:    opts.withLogger,
	}, nil
}

// Ping checks redis connectivity.
func (r *RedisBackend) Ping(ctx context.Context) error {
	const op = "RedisBackend.Ping"
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w: %s", op, ErrBackendUnavailable, err)
	}
	return nil
}

// GetItem implements Backend.GetItem.
func (r *RedisBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	const op = "RedisBackend.GetItem"
	v, err := r.client.Get(ctx, r.keyPrefix+key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return v, true, nil
}

// SetItem implements Backend.SetItem.
func (r *RedisBackend) SetItem(ctx context.Context, key, value string) error {
	const op = "RedisBackend.SetItem"
	if err := r.client.Set(ctx, r.keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveItem implements Backend.RemoveItem.
func (r *RedisBackend) RemoveItem(ctx context.Context, key string) error {
	const op = "RedisBackend.RemoveItem"
	if err := r.client.Del(ctx, r.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Keys implements Backend.Keys.  The returned keys don't include the
// backend's key prefix.
func (r *RedisBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	const op = "RedisBackend.Keys"
	match := escapeGlob(r.keyPrefix+prefix) + "*"
	var keys []string
	iter := r.client.Scan(ctx, 0, match, redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.logger.Trace("listed keys", "prefix", prefix, "count", len(keys))
	return keys, nil
}

// escapeGlob escapes the redis glob metacharacters in s.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// redisOptions is the set of available options for a RedisBackend
type redisOptions struct {
	withKeyPrefix string
	withLogger    hclog.Logger
}

func redisDefaults() redisOptions {
	return redisOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getRedisOpts(opt ...Option) redisOptions {
	opts := redisDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withLogger == nil {
		opts.withLogger = hclog.NewNullLogger()
	}
	return opts
}
