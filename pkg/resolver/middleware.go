// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"errors"
	"net/http"

	"github.com/canonical/tenant-sites/internal/http/types"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

// TenantHeader carries the resolved tenant id to downstream handlers and
// back to the client.
const TenantHeader = "X-Tenant-Id"

type Middleware struct {
	resolver ResolverInterface
	cookies  *CookieSigner

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Require answers 404 when the host maps to no tenant.
func (m *Middleware) Require() func(http.Handler) http.Handler {
	return m.middleware("resolver.Middleware.Require", true)
}

// Optional lets unresolved requests through without a tenant in context.
func (m *Middleware) Optional() func(http.Handler) http.Handler {
	return m.middleware("resolver.Middleware.Optional", false)
}

func (m *Middleware) middleware(spanName string, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), spanName)
			defer span.End()

			// never trust a tenant sent by the client
			r.Header.Del(TenantHeader)

			cookie := m.cookies.FromRequest(r)

			// a cookie set by resolution only echoes the registry, it must not
			// outlive a remapped or removed domain
			switchedTenant := ""
			if cookie.Switched {
				switchedTenant = cookie.TenantID
			}

			res, err := m.resolver.Resolve(ctx, r.Host, switchedTenant)
			if err != nil {
				if !errors.Is(err, ErrTenantNotResolved) {
					m.logger.Errorf("failed to resolve tenant for %s: %v", r.Host, err)
					types.WriteError(w, http.StatusInternalServerError, "internal server error")
					return
				}

				if required {
					types.WriteError(w, http.StatusNotFound, "unknown site")
					return
				}

				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if cookie.TenantID != res.TenantID || (cookie.Switched && res.Source != SourceCookie) {
				if err := m.cookies.SetCookie(w, r, res.TenantID); err != nil {
					m.logger.Warnf("failed to issue tenant cookie: %v", err)
				}
			}

			r.Header.Set(TenantHeader, res.TenantID)
			w.Header().Set(TenantHeader, res.TenantID)

			next.ServeHTTP(w, r.WithContext(WithResolution(ctx, res)))
		})
	}
}

func NewMiddleware(resolver ResolverInterface, cookies *CookieSigner, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		resolver: resolver,
		cookies:  cookies,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
