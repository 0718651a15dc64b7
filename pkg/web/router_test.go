// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-sites/internal/identity"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/pkg/authentication"
	"github.com/canonical/tenant-sites/pkg/resolver"
	"github.com/canonical/tenant-sites/pkg/site"
	"github.com/canonical/tenant-sites/pkg/tenant"
)

//go:generate mockgen -build_flags=--mod=mod -package web -destination ./mock_db.go -source=../../internal/db/interfaces.go

type routerMocks struct {
	db       *MockDBClientInterface
	resolver *resolver.MockResolverInterface
	site     *site.MockServiceInterface
	tenants  *tenant.MockServiceInterface
	verifier *authentication.MockTokenVerifierInterface
}

func setupRouter(t *testing.T) (http.Handler, routerMocks) {
	ctrl := gomock.NewController(t)

	m := routerMocks{
		db:       NewMockDBClientInterface(ctrl),
		resolver: resolver.NewMockResolverInterface(ctrl),
		site:     site.NewMockServiceInterface(ctrl),
		tenants:  tenant.NewMockServiceInterface(ctrl),
		verifier: authentication.NewMockTokenVerifierInterface(ctrl),
	}

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("", logger)

	cookies := resolver.NewCookieSigner("tenant", []byte("secret"), time.Hour)

	mdw := Middlewares{
		Resolver:       resolver.NewMiddleware(m.resolver, cookies, tracer, monitor, logger),
		Authentication: authentication.NewMiddleware(m.verifier, tracer, monitor, logger),
		Identity:       identity.NewMiddleware(identity.NewMockMembershipStorage(ctrl), resolver.TenantIDFromContext, nil, false, tracer, monitor, logger),
	}

	apis := APIs{
		Site:  []APIInterface{site.NewAPI(m.site, cookies, tracer, monitor, logger)},
		Admin: []APIInterface{tenant.NewAPI(m.tenants, tracer, monitor, logger)},
	}

	return NewRouter(apis, mdw, m.db, []string{"*"}, tracer, monitor, logger), m
}

func TestRouterStatusNeedsNoTenant(t *testing.T) {
	router, _ := setupRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://unknown.example/api/v0/status", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}

func TestRouterUnknownSite(t *testing.T) {
	router, m := setupRouter(t)

	m.resolver.EXPECT().Resolve(gomock.Any(), "unknown.example", "").Return(nil, resolver.ErrTenantNotResolved)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://unknown.example/api/site", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestRouterSite(t *testing.T) {
	router, m := setupRouter(t)

	m.resolver.EXPECT().Resolve(gomock.Any(), "acme.com", "").
		Return(&resolver.Resolution{TenantID: "t1", Source: resolver.SourceDomain, Hostname: "acme.com"}, nil)
	m.db.EXPECT().RowLevelSecurity().Return(false)
	m.site.EXPECT().Site(gomock.Any()).Return(&site.Site{Tenant: site.Tenant{ID: "t1"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "http://acme.com/api/site", nil)
	req.Header.Set(resolver.TenantHeader, "spoofed")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if got := rr.Header().Get(resolver.TenantHeader); got != "t1" {
		t.Fatalf("expected tenant header t1, got %q", got)
	}

	if len(rr.Result().Cookies()) != 1 {
		t.Fatal("expected the tenant cookie to be issued")
	}
}

func TestRouterAdminNeedsToken(t *testing.T) {
	router, _ := setupRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://admin.example/api/v0/admin/tenants", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestRouterPreflight(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "http://acme.com/api/pages", nil)
	req.Header.Set("Origin", "https://acme.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://acme.com" {
		t.Fatalf("expected the origin to be allowed, got %q", got)
	}

	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials to be allowed")
	}
}
