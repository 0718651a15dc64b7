// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-sites/internal/cache"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package resolver -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package resolver -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go

func newTestResolver(s StorageInterface, cfg Config) *Resolver {
	logger := logging.NewNoopLogger()
	return NewResolver(s, cache.NewMemory(time.Minute), cfg, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("", logger), logger)
}

func tenant(id, slug string, enabled bool) *types.Tenant {
	return &types.Tenant{ID: id, Slug: slug, Name: slug, Enabled: enabled}
}

func TestResolverResolve(t *testing.T) {
	errDB := errors.New("connection refused")

	tests := []struct {
		name   string
		host   string
		cookie string
		cfg    Config
		setup  func(*MockStorageInterface)

		expected    *Resolution
		expectedErr error
	}{
		{
			name: "active domain mapping",
			host: "Acme.COM:443",
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "acme.com").
					Return(&types.Domain{Hostname: "acme.com", TenantID: "t1", Active: true, Features: map[string]bool{"custom_pages": true}}, nil)
				s.EXPECT().GetTenantByID(gomock.Any(), "t1").Return(tenant("t1", "acme", true), nil)
			},
			expected: &Resolution{TenantID: "t1", Source: SourceDomain, Hostname: "acme.com", Features: map[string]bool{"custom_pages": true}},
		},
		{
			name: "domain of a disabled tenant is not served",
			host: "acme.com",
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "acme.com").
					Return(&types.Domain{Hostname: "acme.com", TenantID: "t1", Active: true}, nil)
				s.EXPECT().GetTenantByID(gomock.Any(), "t1").Return(tenant("t1", "acme", false), nil)
			},
			expectedErr: ErrTenantNotResolved,
		},
		{
			name: "subdomain matches a tenant slug",
			host: "acme.agency.io",
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "acme.agency.io").Return(nil, storage.ErrNotFound)
				s.EXPECT().GetTenantBySlug(gomock.Any(), "acme").Return(tenant("t2", "acme", true), nil)
			},
			expected: &Resolution{TenantID: "t2", Source: SourceSubdomain, Hostname: "acme.agency.io", Features: map[string]bool{}},
		},
		{
			name: "unknown subdomain fails",
			host: "ghost.agency.io",
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "ghost.agency.io").Return(nil, storage.ErrNotFound)
				s.EXPECT().GetTenantBySlug(gomock.Any(), "ghost").Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrTenantNotResolved,
		},
		{
			name: "unknown apex domain fails without a slug lookup",
			host: "nowhere.com",
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "nowhere.com").Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrTenantNotResolved,
		},
		{
			name: "localhost falls back to the agency owner",
			host: "localhost:3000",
			cfg:  Config{DevFallback: true},
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "localhost").Return(nil, storage.ErrNotFound)
				s.EXPECT().GetAgencyOwnerTenant(gomock.Any()).Return(tenant("agency", "agency", true), nil)
			},
			expected: &Resolution{TenantID: "agency", Source: SourceLocalhost, Hostname: "localhost", Features: map[string]bool{}},
		},
		{
			name: "localhost prefers the configured default tenant",
			host: "127.0.0.1:3000",
			cfg:  Config{DevFallback: true, DefaultTenantID: "t-default"},
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "127.0.0.1").Return(nil, storage.ErrNotFound)
				s.EXPECT().GetTenantByID(gomock.Any(), "t-default").Return(tenant("t-default", "demo", true), nil)
			},
			expected: &Resolution{TenantID: "t-default", Source: SourceLocalhost, Hostname: "127.0.0.1", Features: map[string]bool{}},
		},
		{
			name: "localhost without fallback fails",
			host: "localhost:3000",
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "localhost").Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrTenantNotResolved,
		},
		{
			name: "localhost without an agency owner fails",
			host: "localhost",
			cfg:  Config{DevFallback: true},
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "localhost").Return(nil, storage.ErrNotFound)
				s.EXPECT().GetAgencyOwnerTenant(gomock.Any()).Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrTenantNotResolved,
		},
		{
			name:   "cookie wins over the domain registry",
			host:   "acme.com",
			cookie: "t3",
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "acme.com").
					Return(&types.Domain{Hostname: "acme.com", TenantID: "t1", Active: true}, nil)
				s.EXPECT().GetTenantByID(gomock.Any(), "t3").Return(tenant("t3", "preview", true), nil)
			},
			expected: &Resolution{TenantID: "t3", Source: SourceCookie, Hostname: "acme.com", Features: map[string]bool{}},
		},
		{
			name:   "cookie of a deleted tenant is ignored",
			host:   "acme.com",
			cookie: "gone",
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "acme.com").
					Return(&types.Domain{Hostname: "acme.com", TenantID: "t1", Active: true}, nil)
				s.EXPECT().GetTenantByID(gomock.Any(), "gone").Return(nil, storage.ErrNotFound)
				s.EXPECT().GetTenantByID(gomock.Any(), "t1").Return(tenant("t1", "acme", true), nil)
			},
			expected: &Resolution{TenantID: "t1", Source: SourceDomain, Hostname: "acme.com", Features: map[string]bool{}},
		},
		{
			name: "storage failure is not a resolution failure",
			host: "acme.com",
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "acme.com").Return(nil, errDB)
			},
			expectedErr: errDB,
		},
		{
			name:        "empty host fails",
			host:        "",
			setup:       func(*MockStorageInterface) {},
			expectedErr: ErrTenantNotResolved,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			s := NewMockStorageInterface(ctrl)
			test.setup(s)

			res, err := newTestResolver(s, test.cfg).Resolve(context.Background(), test.host, test.cookie)

			if test.expectedErr != nil {
				if !errors.Is(err, test.expectedErr) {
					t.Fatalf("expected error %v, got %v", test.expectedErr, err)
				}
				if res != nil {
					t.Fatalf("expected no resolution, got %+v", res)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(res, test.expected) {
				t.Fatalf("expected %+v, got %+v", test.expected, res)
			}
		})
	}
}

func TestResolverCachesLookups(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := NewMockStorageInterface(ctrl)
	s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "acme.com").
		Return(&types.Domain{Hostname: "acme.com", TenantID: "t1", Active: true}, nil).Times(1)
	s.EXPECT().GetTenantByID(gomock.Any(), "t1").Return(tenant("t1", "acme", true), nil).Times(1)
	s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "nowhere.com").Return(nil, storage.ErrNotFound).Times(1)

	r := newTestResolver(s, Config{CacheTTL: time.Minute})

	for i := 0; i < 3; i++ {
		res, err := r.Resolve(context.Background(), "acme.com", "")
		if err != nil || res.TenantID != "t1" {
			t.Fatalf("expected t1, got %+v, %v", res, err)
		}

		if _, err := r.Resolve(context.Background(), "nowhere.com", ""); !errors.Is(err, ErrTenantNotResolved) {
			t.Fatalf("expected ErrTenantNotResolved, got %v", err)
		}
	}
}

func TestResolverInvalidate(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := NewMockStorageInterface(ctrl)
	gomock.InOrder(
		s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "acme.com").Return(nil, storage.ErrNotFound),
		s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "acme.com").
			Return(&types.Domain{Hostname: "acme.com", TenantID: "t1", Active: true}, nil),
	)
	gomock.InOrder(
		s.EXPECT().GetTenantByID(gomock.Any(), "t1").Return(tenant("t1", "acme", true), nil),
		s.EXPECT().GetTenantByID(gomock.Any(), "t1").Return(tenant("t1", "acme", false), nil),
	)

	r := newTestResolver(s, Config{CacheTTL: time.Minute})
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "acme.com", ""); !errors.Is(err, ErrTenantNotResolved) {
		t.Fatalf("expected ErrTenantNotResolved, got %v", err)
	}

	if err := r.Invalidate(ctx, "ACME.com:8080"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res, err := r.Resolve(ctx, "acme.com", ""); err != nil || res.TenantID != "t1" {
		t.Fatalf("expected t1 after invalidation, got %+v, %v", res, err)
	}

	if err := r.InvalidateTenant(ctx, tenant("t1", "acme", false), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := r.Resolve(ctx, "acme.com", ""); !errors.Is(err, ErrTenantNotResolved) {
		t.Fatalf("expected disabled tenant to stop resolving, got %v", err)
	}
}

func TestResolverCountsOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := NewMockStorageInterface(ctrl)
	s.EXPECT().GetActiveDomainByHostname(gomock.Any(), "localhost").Return(nil, storage.ErrNotFound)
	s.EXPECT().GetAgencyOwnerTenant(gomock.Any()).Return(tenant("agency", "agency", true), nil)

	monitor := NewMockMonitorInterface(ctrl)
	monitor.EXPECT().IncTenantResolution(map[string]string{"source": "localhost", "outcome": "resolved"}).Return(nil)

	logger := logging.NewNoopLogger()
	r := NewResolver(s, cache.NewMemory(time.Minute), Config{DevFallback: true}, tracing.NewNoopTracer(), monitor, logger)

	if _, err := r.Resolve(context.Background(), "localhost:3000", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
