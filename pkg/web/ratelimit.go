// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/canonical/tenant-sites/internal/http/types"
	"github.com/canonical/tenant-sites/pkg/resolver"
)

// NewRateLimit limits the site API per host and client address. rate uses
// the limiter format, "300-M" allows 300 requests a minute. With a redis
// client the counters are shared by every replica.
func NewRateLimit(rate string, client *redis.Client) (func(http.Handler) http.Handler, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	store := memory.NewStore()
	if client != nil {
		if store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "tenant-sites:limiter"}); err != nil {
			return nil, fmt.Errorf("failed to create rate limit store: %w", err)
		}
	}

	l := limiter.New(store, r)

	mw := mhttp.NewMiddleware(
		l,
		mhttp.WithKeyGetter(func(req *http.Request) string {
			return resolver.NormalizeHost(req.Host) + "|" + l.GetIPKey(req)
		}),
		mhttp.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			types.WriteError(w, http.StatusTooManyRequests, "too many requests")
		}),
	)

	return mw.Handler, nil
}
