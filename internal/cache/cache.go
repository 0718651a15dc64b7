// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package cache is a small byte oriented key value cache with an in-process
// and a Redis backed implementation.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

type CacheInterface interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
