// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/tracing"
)

var _ CacheInterface = (*Redis)(nil)

// Redis shares cached entries between replicas, every key is namespaced
// with prefix.
type Redis struct {
	client redis.UniversalClient
	prefix string

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := r.tracer.Start(ctx, "cache.Redis.Get")
	defer span.End()

	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	return b, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span := r.tracer.Start(ctx, "cache.Redis.Set")
	defer span.End()

	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	ctx, span := r.tracer.Start(ctx, "cache.Redis.Delete")
	defer span.End()

	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, r.key(k))
	}

	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func NewRedis(client redis.UniversalClient, prefix string, tracer tracing.TracingInterface, logger logging.LoggerInterface) *Redis {
	r := new(Redis)
	r.client = client
	r.prefix = prefix

	r.tracer = tracer
	r.logger = logger

	return r
}
