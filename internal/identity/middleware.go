// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package identity turns the authenticated caller of a request into the
// access principal of the resolved tenant.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/canonical/tenant-sites/internal/access"
	httptypes "github.com/canonical/tenant-sites/internal/http/types"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
	"github.com/canonical/tenant-sites/pkg/authentication"
)

// HeaderName is set by the Oathkeeper style proxy in front of the service.
const HeaderName = "X-Kratos-Authenticated-Identity-Id"

type MembershipStorage interface {
	GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error)
}

// TenantFunc returns the tenant resolved for a request context.
type TenantFunc func(context.Context) (string, bool)

type Middleware struct {
	storage     MembershipStorage
	tenant      TenantFunc
	superAdmins map[string]struct{}
	trustHeader bool

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Principal stores the caller principal in the request context, anonymous
// callers get a nil principal.
func (m *Middleware) Principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "identity.Middleware.Principal")
		defer span.End()

		p, err := m.load(ctx, r)
		if err != nil {
			m.logger.Errorf("failed to load principal: %v", err)
			httptypes.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(access.WithPrincipal(ctx, p)))
	})
}

func (m *Middleware) load(ctx context.Context, r *http.Request) (*access.Principal, error) {
	p := new(access.Principal)

	if claims, ok := authentication.GetClaims(ctx); ok {
		p.UserID = claims.Subject
		p.Email = claims.Email
	} else if m.trustHeader {
		p.UserID = strings.TrimSpace(r.Header.Get(HeaderName))
	}

	if p.UserID == "" {
		return nil, nil
	}

	p.SuperAdmin = m.isSuperAdmin(strings.ToLower(p.UserID)) || m.isSuperAdmin(strings.ToLower(p.Email))

	tenantID, ok := m.tenant(ctx)
	if !ok {
		return p, nil
	}

	membership, err := m.storage.GetMembership(ctx, tenantID, p.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return p, nil
	}
	if err != nil {
		return nil, err
	}

	p.TenantID = membership.TenantID
	p.Role = membership.Role

	return p, nil
}

func (m *Middleware) isSuperAdmin(id string) bool {
	if id == "" {
		return false
	}
	_, ok := m.superAdmins[id]
	return ok
}

// NewMiddleware builds the principal loader, superAdmins holds identity ids
// or emails. With trustHeader the identity header of the proxy is honoured
// for requests that carry no bearer token.
func NewMiddleware(s MembershipStorage, tenant TenantFunc, superAdmins []string, trustHeader bool, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	m := new(Middleware)
	m.storage = s
	m.tenant = tenant
	m.trustHeader = trustHeader

	m.superAdmins = make(map[string]struct{}, len(superAdmins))
	for _, a := range superAdmins {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			m.superAdmins[a] = struct{}{}
		}
	}

	m.tracer = tracer
	m.monitor = monitor
	m.logger = logger

	return m
}
