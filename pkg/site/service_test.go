// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package site

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-sites/internal/access"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/query"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
	"github.com/canonical/tenant-sites/pkg/resolver"
)

//go:generate mockgen -build_flags=--mod=mod -package site -destination ./mock_interfaces.go -source=./interfaces.go

func newTestService(s StorageInterface) *Service {
	logger := logging.NewNoopLogger()
	return NewService(s, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("", logger), logger)
}

func TestServiceSite(t *testing.T) {
	ctrl := gomock.NewController(t)

	published := query.Eq(query.FieldStatus, types.StatusPublished)
	header := &types.Document{ID: "h1", Collection: "headers", TenantID: "t1"}

	s := NewMockStorageInterface(ctrl)
	s.EXPECT().GetTenantByID(gomock.Any(), "t1").Return(&types.Tenant{ID: "t1", Name: "Acme", Slug: "acme", Enabled: true}, nil)
	s.EXPECT().FindDocuments(gomock.Any(), "t1", "headers", published, "createdAt", uint64(1), uint64(1)).
		Return(&types.Page{Docs: []*types.Document{header}}, nil)
	s.EXPECT().FindDocuments(gomock.Any(), "t1", "footers", published, "createdAt", uint64(1), uint64(1)).
		Return(&types.Page{Docs: []*types.Document{}}, nil)

	ctx := resolver.WithResolution(context.Background(), &resolver.Resolution{
		TenantID: "t1", Source: resolver.SourceDomain, Hostname: "acme.com", Features: map[string]bool{"custom_pages": true},
	})

	site, err := newTestService(s).Site(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if site.Tenant != (Tenant{ID: "t1", Name: "Acme", Slug: "acme"}) {
		t.Fatalf("unexpected tenant %+v", site.Tenant)
	}

	if site.Source != resolver.SourceDomain || !site.Features["custom_pages"] {
		t.Fatalf("unexpected resolution data %+v", site)
	}

	if site.Header != header || site.Footer != nil {
		t.Fatalf("unexpected chrome header=%v footer=%v", site.Header, site.Footer)
	}
}

func TestServiceSiteWithoutTenant(t *testing.T) {
	ctrl := gomock.NewController(t)

	if _, err := newTestService(NewMockStorageInterface(ctrl)).Site(context.Background()); !errors.Is(err, query.ErrMissingTenant) {
		t.Fatalf("expected ErrMissingTenant, got %v", err)
	}
}

func TestServiceCanSwitch(t *testing.T) {
	tests := []struct {
		name      string
		principal *access.Principal
		setup     func(*MockStorageInterface)

		expectedErr error
	}{
		{
			name:        "anonymous",
			setup:       func(*MockStorageInterface) {},
			expectedErr: ErrUnauthenticated,
		},
		{
			name:      "member of the target tenant",
			principal: &access.Principal{UserID: "u1"},
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetTenantByID(gomock.Any(), "t2").Return(&types.Tenant{ID: "t2", Enabled: true}, nil)
				s.EXPECT().GetMembership(gomock.Any(), "t2", "u1").Return(&types.Membership{TenantID: "t2", Role: types.RoleEditor}, nil)
			},
		},
		{
			name:      "not a member of the target tenant",
			principal: &access.Principal{UserID: "u1"},
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetTenantByID(gomock.Any(), "t2").Return(&types.Tenant{ID: "t2", Enabled: true}, nil)
				s.EXPECT().GetMembership(gomock.Any(), "t2", "u1").Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrForbidden,
		},
		{
			name:      "super admin switches anywhere",
			principal: &access.Principal{UserID: "root", SuperAdmin: true},
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetTenantByID(gomock.Any(), "t2").Return(&types.Tenant{ID: "t2", Enabled: true}, nil)
			},
		},
		{
			name:      "disabled tenant",
			principal: &access.Principal{UserID: "root", SuperAdmin: true},
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetTenantByID(gomock.Any(), "t2").Return(&types.Tenant{ID: "t2"}, nil)
			},
			expectedErr: ErrForbidden,
		},
		{
			name:      "missing tenant",
			principal: &access.Principal{UserID: "root", SuperAdmin: true},
			setup: func(s *MockStorageInterface) {
				s.EXPECT().GetTenantByID(gomock.Any(), "t2").Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrForbidden,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			s := NewMockStorageInterface(ctrl)
			test.setup(s)

			err := newTestService(s).CanSwitch(access.WithPrincipal(context.Background(), test.principal), "t2")

			if test.expectedErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if test.expectedErr != nil && !errors.Is(err, test.expectedErr) {
				t.Fatalf("expected error %v, got %v", test.expectedErr, err)
			}
		})
	}
}
