// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package resolver maps the host of a request to the tenant serving it.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/canonical/tenant-sites/internal/cache"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
)

type Source string

const (
	SourceCookie    Source = "cookie"
	SourceDomain    Source = "domain"
	SourceSubdomain Source = "subdomain"
	SourceLocalhost Source = "localhost"
)

var ErrTenantNotResolved = errors.New("tenant could not be resolved")

type Resolution struct {
	TenantID string          `json:"tenant_id"`
	Source   Source          `json:"source"`
	Hostname string          `json:"hostname"`
	Features map[string]bool `json:"features"`
}

type Config struct {
	// DefaultTenantID is served on localhost when the development fallback is on.
	DefaultTenantID string
	DevFallback     bool
	CacheTTL        time.Duration
}

// entry is what the cache keeps per lookup key, an empty TenantID records a
// miss so unknown hosts do not reach the database on every request.
type entry struct {
	TenantID string          `json:"t"`
	Enabled  bool            `json:"e"`
	Features map[string]bool `json:"f,omitempty"`
}

var _ ResolverInterface = (*Resolver)(nil)

type Resolver struct {
	storage StorageInterface
	cache   cache.CacheInterface
	cfg     Config
	loads   singleflight.Group

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Resolve walks the resolution chain: a switched tenant cookie, the domain
// registry, the subdomain heuristic and finally the localhost default.
// cookieTenantID is the tenant of an already verified switch cookie, or empty.
func (r *Resolver) Resolve(ctx context.Context, host, cookieTenantID string) (*Resolution, error) {
	ctx, span := r.tracer.Start(ctx, "resolver.Resolver.Resolve")
	defer span.End()

	host = NormalizeHost(host)
	if host == "" {
		return r.fail(host, "empty host")
	}

	domain, err := r.domain(ctx, host)
	if err != nil {
		return nil, err
	}

	if cookieTenantID != "" {
		t, err := r.tenant(ctx, cookieTenantID)
		if err != nil {
			return nil, err
		}
		if t.TenantID != "" && t.Enabled {
			res := r.resolved(host, t.TenantID, SourceCookie)
			if domain.TenantID == t.TenantID && domain.Features != nil {
				res.Features = domain.Features
			}
			return res, nil
		}
		r.logger.Debugf("ignoring tenant cookie for %s, tenant %s is gone or disabled", host, cookieTenantID)
	}

	if domain.TenantID != "" {
		t, err := r.tenant(ctx, domain.TenantID)
		if err != nil {
			return nil, err
		}
		if t.Enabled {
			res := r.resolved(host, domain.TenantID, SourceDomain)
			if domain.Features != nil {
				res.Features = domain.Features
			}
			return res, nil
		}
	}

	if slug, ok := subdomainLabel(host); ok {
		t, err := r.bySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if t.TenantID != "" && t.Enabled {
			return r.resolved(host, t.TenantID, SourceSubdomain), nil
		}
	}

	if IsLocalhost(host) && r.cfg.DevFallback {
		t, err := r.localDefault(ctx)
		if err != nil {
			return nil, err
		}
		if t != nil && t.Enabled {
			return r.resolved(host, t.ID, SourceLocalhost), nil
		}
	}

	return r.fail(host, "no tenant matches host")
}

func (r *Resolver) resolved(host, tenantID string, source Source) *Resolution {
	r.count(source, "resolved")

	return &Resolution{
		TenantID: tenantID,
		Source:   source,
		Hostname: host,
		Features: map[string]bool{},
	}
}

func (r *Resolver) fail(host, reason string) (*Resolution, error) {
	r.count("none", "failed")
	r.logger.Security().TenantResolutionFailure(host, reason)

	return nil, fmt.Errorf("%w: %s", ErrTenantNotResolved, host)
}

func (r *Resolver) count(source Source, outcome string) {
	if err := r.monitor.IncTenantResolution(map[string]string{"source": string(source), "outcome": outcome}); err != nil {
		r.logger.Debugf("failed to record tenant resolution: %v", err)
	}
}

func domainKey(host string) string { return "domain:" + host }
func tenantKey(id string) string   { return "tenant:" + id }
func slugKey(slug string) string   { return "slug:" + slug }

func (r *Resolver) domain(ctx context.Context, host string) (*entry, error) {
	return r.cached(ctx, domainKey(host), func() (*entry, error) {
		d, err := r.storage.GetActiveDomainByHostname(ctx, host)
		if err != nil {
			return nil, err
		}
		return &entry{TenantID: d.TenantID, Enabled: d.Active, Features: d.Features}, nil
	})
}

func (r *Resolver) tenant(ctx context.Context, id string) (*entry, error) {
	return r.cached(ctx, tenantKey(id), func() (*entry, error) {
		t, err := r.storage.GetTenantByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &entry{TenantID: t.ID, Enabled: t.Enabled}, nil
	})
}

func (r *Resolver) bySlug(ctx context.Context, slug string) (*entry, error) {
	return r.cached(ctx, slugKey(slug), func() (*entry, error) {
		t, err := r.storage.GetTenantBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		return &entry{TenantID: t.ID, Enabled: t.Enabled}, nil
	})
}

func (r *Resolver) localDefault(ctx context.Context) (*types.Tenant, error) {
	var (
		t   *types.Tenant
		err error
	)

	if r.cfg.DefaultTenantID != "" {
		t, err = r.storage.GetTenantByID(ctx, r.cfg.DefaultTenantID)
	} else {
		t, err = r.storage.GetAgencyOwnerTenant(ctx)
	}

	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}

	return t, err
}

// cached serves key from the cache, falling back to load. Concurrent misses
// on a key share one load. Not found results are cached as empty entries,
// cache failures only cost a lookup.
func (r *Resolver) cached(ctx context.Context, key string, load func() (*entry, error)) (*entry, error) {
	if b, err := r.cache.Get(ctx, key); err == nil {
		e := new(entry)
		if err := json.Unmarshal(b, e); err == nil {
			return e, nil
		}
		r.logger.Warnf("dropping undecodable cache entry %s", key)
	} else if !errors.Is(err, cache.ErrMiss) {
		r.logger.Warnf("cache lookup of %s failed: %v", key, err)
	}

	v, err, _ := r.loads.Do(key, func() (any, error) {
		e, err := load()
		if errors.Is(err, storage.ErrNotFound) {
			e, err = &entry{}, nil
		}
		if err != nil {
			return nil, err
		}

		if b, err := json.Marshal(e); err == nil {
			if err := r.cache.Set(ctx, key, b, r.cfg.CacheTTL); err != nil {
				r.logger.Warnf("cache store of %s failed: %v", key, err)
			}
		}

		return e, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*entry), nil
}

// Invalidate drops the cached domain lookups of hostnames.
func (r *Resolver) Invalidate(ctx context.Context, hostnames ...string) error {
	ctx, span := r.tracer.Start(ctx, "resolver.Resolver.Invalidate")
	defer span.End()

	keys := make([]string, 0, len(hostnames))
	for _, h := range hostnames {
		keys = append(keys, domainKey(NormalizeHost(h)))
	}

	return r.cache.Delete(ctx, keys...)
}

// InvalidateTenant drops the cached state of tenants, by id and by slug.
func (r *Resolver) InvalidateTenant(ctx context.Context, tenants ...*types.Tenant) error {
	ctx, span := r.tracer.Start(ctx, "resolver.Resolver.InvalidateTenant")
	defer span.End()

	keys := make([]string, 0, 2*len(tenants))
	for _, t := range tenants {
		if t == nil {
			continue
		}
		keys = append(keys, tenantKey(t.ID))
		if t.Slug != "" {
			keys = append(keys, slugKey(t.Slug))
		}
	}

	return r.cache.Delete(ctx, keys...)
}

func NewResolver(s StorageInterface, c cache.CacheInterface, cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Resolver {
	r := new(Resolver)
	r.storage = s
	r.cache = c
	r.cfg = cfg

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
