// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ CacheInterface = (*Memory)(nil)

type Memory struct {
	c *gocache.Cache
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrMiss
	}

	b, ok := v.([]byte)
	if !ok {
		return nil, ErrMiss
	}

	return b, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.c.Set(key, value, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

// NewMemory returns a process local cache, expired entries are purged every minute.
func NewMemory(defaultTTL time.Duration) *Memory {
	m := new(Memory)
	m.c = gocache.New(defaultTTL, time.Minute)

	return m
}
