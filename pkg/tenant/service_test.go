// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-sites/internal/access"
	"github.com/canonical/tenant-sites/internal/authorization"
	"github.com/canonical/tenant-sites/internal/db"
	"github.com/canonical/tenant-sites/internal/kratos"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tenant.go -source=./interfaces.go

type serviceMocks struct {
	storage *MockStorageInterface
	authz   *MockAuthzInterface
	kratos  *MockKratosClientInterface
	cache   *MockResolverCacheInterface
}

func setupService(t *testing.T) (*Service, serviceMocks) {
	ctrl := gomock.NewController(t)

	m := serviceMocks{
		storage: NewMockStorageInterface(ctrl),
		authz:   NewMockAuthzInterface(ctrl),
		kratos:  NewMockKratosClientInterface(ctrl),
		cache:   NewMockResolverCacheInterface(ctrl),
	}

	logger := logging.NewNoopLogger()
	s := NewService(m.storage, m.authz, m.kratos, m.cache, "24h", tracing.NewNoopTracer(), monitoring.NewNoopMonitor("", logger), logger)

	return s, m
}

func asAdmin(ctx context.Context) context.Context {
	return access.WithPrincipal(ctx, &access.Principal{UserID: "root", SuperAdmin: true})
}

func TestServiceCreateTenant(t *testing.T) {
	s, m := setupService(t)

	created := &types.Tenant{ID: "t1", Name: "Acme", Slug: "acme", Enabled: true}

	m.storage.EXPECT().CreateTenant(gomock.Any(), &types.Tenant{Name: "Acme", Slug: "acme", Enabled: true}).Return(created, nil)
	m.cache.EXPECT().InvalidateTenant(gomock.Any(), created).Return(nil)

	got, err := s.CreateTenant(asAdmin(context.Background()), &CreateTenantRequest{Name: "Acme", Slug: "ACME"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != created {
		t.Fatalf("expected %+v, got %+v", created, got)
	}
}

func TestServiceCreateTenantDuplicateSlug(t *testing.T) {
	s, m := setupService(t)

	m.storage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("slug: %w", storage.ErrDuplicateKey))

	if _, err := s.CreateTenant(context.Background(), &CreateTenantRequest{Name: "Acme", Slug: "acme"}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestServiceUpdateTenant(t *testing.T) {
	s, m := setupService(t)

	name := "Acme Inc"
	slug := "acme-inc"
	disabled := false

	before := &types.Tenant{ID: "t1", Name: "Acme", Slug: "acme", Enabled: true}
	after := &types.Tenant{ID: "t1", Name: name, Slug: slug, Enabled: false}

	gomock.InOrder(
		m.storage.EXPECT().GetTenantByID(gomock.Any(), "t1").Return(before, nil),
		m.storage.EXPECT().UpdateTenant(gomock.Any(), &types.Tenant{ID: "t1", Name: name, Slug: slug}, []string{"name", "slug", "enabled"}).Return(nil),
		m.storage.EXPECT().GetTenantByID(gomock.Any(), "t1").Return(after, nil),
		m.cache.EXPECT().InvalidateTenant(gomock.Any(), before, after).Return(nil),
	)

	got, err := s.UpdateTenant(context.Background(), "t1", &UpdateTenantRequest{Name: &name, Slug: &slug, Enabled: &disabled})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != after {
		t.Fatalf("expected %+v, got %+v", after, got)
	}
}

func TestServiceUpdateTenantNotFound(t *testing.T) {
	s, m := setupService(t)

	m.storage.EXPECT().GetTenantByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	if _, err := s.UpdateTenant(context.Background(), "missing", &UpdateTenantRequest{}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceDeleteTenant(t *testing.T) {
	tests := []struct {
		name     string
		authzErr error
	}{
		{name: "clean delete"},
		{name: "authz failure does not fail the delete", authzErr: fmt.Errorf("fga down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := setupService(t)

			tenant := &types.Tenant{ID: "t1", Slug: "acme"}
			domains := []*types.Domain{{Hostname: "acme.com"}, {Hostname: "www.acme.com"}}

			m.storage.EXPECT().GetTenantByID(gomock.Any(), "t1").Return(tenant, nil)
			m.storage.EXPECT().ListDomains(gomock.Any(), "t1").Return(domains, nil)
			m.storage.EXPECT().DeleteTenant(gomock.Any(), "t1").Return(nil)
			m.authz.EXPECT().DeleteTenant(gomock.Any(), "t1").Return(tt.authzErr)
			m.cache.EXPECT().InvalidateTenant(gomock.Any(), tenant).Return(nil)
			m.cache.EXPECT().Invalidate(gomock.Any(), "acme.com", "www.acme.com").Return(nil)

			if err := s.DeleteTenant(context.Background(), "t1"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestServiceCreateDomain(t *testing.T) {
	tests := []struct {
		name  string
		input *CreateDomainRequest
		setup func(serviceMocks)

		expectedErr error
	}{
		{
			name:  "hostname is normalized and active by default",
			input: &CreateDomainRequest{Hostname: "Acme.COM.", TenantID: "t1"},
			setup: func(m serviceMocks) {
				d := &types.Domain{Hostname: "acme.com", TenantID: "t1", Active: true, Features: map[string]bool{}}
				m.storage.EXPECT().CreateDomain(gomock.Any(), d).Return(&types.Domain{ID: "d1", Hostname: "acme.com"}, nil)
				m.cache.EXPECT().Invalidate(gomock.Any(), "acme.com").Return(nil)
			},
		},
		{
			name:  "port is stripped",
			input: &CreateDomainRequest{Hostname: "acme.localhost:3000", TenantID: "t1", Features: map[string]bool{"blog": true}},
			setup: func(m serviceMocks) {
				d := &types.Domain{Hostname: "acme.localhost", TenantID: "t1", Active: true, Features: map[string]bool{"blog": true}}
				m.storage.EXPECT().CreateDomain(gomock.Any(), d).Return(&types.Domain{ID: "d1", Hostname: "acme.localhost"}, nil)
				m.cache.EXPECT().Invalidate(gomock.Any(), "acme.localhost").Return(nil)
			},
		},
		{
			name:        "empty hostname",
			input:       &CreateDomainRequest{Hostname: ":8080", TenantID: "t1"},
			setup:       func(serviceMocks) {},
			expectedErr: ErrInvalidInput,
		},
		{
			name:  "taken hostname",
			input: &CreateDomainRequest{Hostname: "acme.com", TenantID: "t1"},
			setup: func(m serviceMocks) {
				m.storage.EXPECT().CreateDomain(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateKey)
			},
			expectedErr: storage.ErrDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := setupService(t)
			tt.setup(m)

			_, err := s.CreateDomain(context.Background(), tt.input)
			if tt.expectedErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestServiceUpdateDomainInvalidatesBothHosts(t *testing.T) {
	s, m := setupService(t)

	hostname := "new.acme.com"

	m.storage.EXPECT().GetDomain(gomock.Any(), "d1").Return(&types.Domain{ID: "d1", Hostname: "old.acme.com"}, nil)
	m.storage.EXPECT().UpdateDomain(gomock.Any(), &types.Domain{ID: "d1", Hostname: hostname}, []string{"hostname"}).Return(nil)
	m.storage.EXPECT().GetDomain(gomock.Any(), "d1").Return(&types.Domain{ID: "d1", Hostname: hostname}, nil)
	m.cache.EXPECT().Invalidate(gomock.Any(), "old.acme.com", hostname).Return(nil)

	if _, err := s.UpdateDomain(context.Background(), "d1", &UpdateDomainRequest{Hostname: &hostname}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceDomainInvalidationWaitsForCommit(t *testing.T) {
	tests := []struct {
		name        string
		failure     error
		invalidated bool
	}{
		{name: "committed", invalidated: true},
		{name: "rolled back", failure: errors.New("answered 500")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, m := setupService(t)

			conn, _, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to open sqlmock: %v", err)
			}
			defer conn.Close()

			logger := logging.NewNoopLogger()
			client := db.NewDBClientFromDB(conn, false, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("", logger), logger)

			hostname := "new.acme.com"
			returned := false

			m.storage.EXPECT().GetDomain(gomock.Any(), "d1").Return(&types.Domain{ID: "d1", Hostname: "old.acme.com"}, nil)
			m.storage.EXPECT().UpdateDomain(gomock.Any(), gomock.Any(), []string{"hostname"}).Return(nil)
			m.storage.EXPECT().GetDomain(gomock.Any(), "d1").Return(&types.Domain{ID: "d1", Hostname: hostname}, nil)

			calls := 0
			if test.invalidated {
				m.cache.EXPECT().Invalidate(gomock.Any(), "old.acme.com", hostname).DoAndReturn(
					func(context.Context, ...string) error {
						if !returned {
							t.Error("cache invalidated before the transaction ended")
						}
						calls++
						return nil
					},
				)
			}

			err = client.WithTx(context.Background(), func(ctx context.Context) error {
				defer func() { returned = true }()

				if _, err := s.UpdateDomain(ctx, "d1", &UpdateDomainRequest{Hostname: &hostname}); err != nil {
					return err
				}
				return test.failure
			})

			if !errors.Is(err, test.failure) {
				t.Fatalf("expected %v, got %v", test.failure, err)
			}

			if test.invalidated && calls != 1 {
				t.Fatalf("expected one invalidation after commit, got %d", calls)
			}
		})
	}
}

func TestServiceDeleteDomain(t *testing.T) {
	s, m := setupService(t)

	m.storage.EXPECT().GetDomain(gomock.Any(), "d1").Return(&types.Domain{ID: "d1", Hostname: "acme.com"}, nil)
	m.storage.EXPECT().DeleteDomain(gomock.Any(), "d1").Return(nil)
	m.cache.EXPECT().Invalidate(gomock.Any(), "acme.com").Return(fmt.Errorf("redis down"))

	if err := s.DeleteDomain(context.Background(), "d1"); err != nil {
		t.Fatalf("cache failures must not fail the delete: %v", err)
	}
}

func TestServiceCanManageMembers(t *testing.T) {
	tests := []struct {
		name      string
		principal *access.Principal
		setup     func(serviceMocks)

		expectedErr error
	}{
		{
			name:        "anonymous",
			setup:       func(serviceMocks) {},
			expectedErr: ErrUnauthenticated,
		},
		{
			name:      "super admin",
			principal: &access.Principal{UserID: "root", SuperAdmin: true},
			setup:     func(serviceMocks) {},
		},
		{
			name:      "can_edit relation",
			principal: &access.Principal{UserID: "u1"},
			setup: func(m serviceMocks) {
				m.authz.EXPECT().CheckTenantAccess(gomock.Any(), "t1", "u1", authorization.CAN_EDIT_PERMISSION).Return(true, nil)
			},
		},
		{
			name:      "admin membership when authz is unavailable",
			principal: &access.Principal{UserID: "u1"},
			setup: func(m serviceMocks) {
				m.authz.EXPECT().CheckTenantAccess(gomock.Any(), "t1", "u1", gomock.Any()).Return(false, fmt.Errorf("fga down"))
				m.storage.EXPECT().GetMembership(gomock.Any(), "t1", "u1").Return(&types.Membership{Role: types.RoleAdmin}, nil)
			},
		},
		{
			name:      "editor is forbidden",
			principal: &access.Principal{UserID: "u1"},
			setup: func(m serviceMocks) {
				m.authz.EXPECT().CheckTenantAccess(gomock.Any(), "t1", "u1", gomock.Any()).Return(false, nil)
				m.storage.EXPECT().GetMembership(gomock.Any(), "t1", "u1").Return(&types.Membership{Role: types.RoleEditor}, nil)
			},
			expectedErr: ErrForbidden,
		},
		{
			name:      "non member is forbidden",
			principal: &access.Principal{UserID: "u1"},
			setup: func(m serviceMocks) {
				m.authz.EXPECT().CheckTenantAccess(gomock.Any(), "t1", "u1", gomock.Any()).Return(false, nil)
				m.storage.EXPECT().GetMembership(gomock.Any(), "t1", "u1").Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := setupService(t)
			tt.setup(m)

			ctx := context.Background()
			if tt.principal != nil {
				ctx = access.WithPrincipal(ctx, tt.principal)
			}

			if err := s.CanManageMembers(ctx, "t1"); !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestServiceListMembers(t *testing.T) {
	s, m := setupService(t)

	m.storage.EXPECT().ListMembersByTenantID(gomock.Any(), "t1").Return([]*types.Membership{
		{KratosIdentityID: "u1", Role: types.RoleOwner},
		{KratosIdentityID: "u2", Role: types.RoleEditor},
	}, nil)
	m.kratos.EXPECT().GetIdentity(gomock.Any(), "u1").Return(&kratos.Identity{ID: "u1", Email: "owner@acme.com"}, nil)
	m.kratos.EXPECT().GetIdentity(gomock.Any(), "u2").Return(nil, fmt.Errorf("gone"))

	users, err := s.ListMembers(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []*types.TenantUser{
		{UserID: "u1", Email: "owner@acme.com", Role: types.RoleOwner},
		{UserID: "u2", Email: "unknown", Role: types.RoleEditor},
	}

	if !reflect.DeepEqual(users, expected) {
		t.Fatalf("expected %+v, got %+v", expected, users)
	}
}

func TestServiceProvisionMember(t *testing.T) {
	tests := []struct {
		name  string
		setup func(serviceMocks)

		expectedErr bool
	}{
		{
			name: "existing identity",
			setup: func(m serviceMocks) {
				m.kratos.EXPECT().GetIdentityIDByEmail(gomock.Any(), "a@acme.com").Return("u1", nil)
				m.storage.EXPECT().AddMember(gomock.Any(), "t1", "u1", types.RoleEditor).Return("m1", nil)
				m.authz.EXPECT().AssignRole(gomock.Any(), "t1", "u1", types.RoleEditor).Return(nil)
			},
		},
		{
			name: "new identity is created",
			setup: func(m serviceMocks) {
				m.kratos.EXPECT().GetIdentityIDByEmail(gomock.Any(), "a@acme.com").Return("", nil)
				m.kratos.EXPECT().CreateIdentity(gomock.Any(), "a@acme.com", "").Return("u1", nil)
				m.storage.EXPECT().AddMember(gomock.Any(), "t1", "u1", types.RoleEditor).Return("m1", nil)
				m.authz.EXPECT().AssignRole(gomock.Any(), "t1", "u1", types.RoleEditor).Return(nil)
			},
		},
		{
			name: "authz failure",
			setup: func(m serviceMocks) {
				m.kratos.EXPECT().GetIdentityIDByEmail(gomock.Any(), "a@acme.com").Return("u1", nil)
				m.storage.EXPECT().AddMember(gomock.Any(), "t1", "u1", types.RoleEditor).Return("m1", nil)
				m.authz.EXPECT().AssignRole(gomock.Any(), "t1", "u1", types.RoleEditor).Return(fmt.Errorf("fga down"))
			},
			expectedErr: true,
		},
		{
			name: "already a member",
			setup: func(m serviceMocks) {
				m.kratos.EXPECT().GetIdentityIDByEmail(gomock.Any(), "a@acme.com").Return("u1", nil)
				m.storage.EXPECT().AddMember(gomock.Any(), "t1", "u1", types.RoleEditor).Return("", storage.ErrDuplicateKey)
			},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := setupService(t)
			tt.setup(m)

			user, err := s.ProvisionMember(context.Background(), "t1", "a@acme.com", types.RoleEditor)
			if tt.expectedErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if *user != (types.TenantUser{UserID: "u1", Email: "a@acme.com", Role: types.RoleEditor}) {
				t.Fatalf("unexpected user %+v", user)
			}
		})
	}
}

func TestServiceInviteExistingMember(t *testing.T) {
	s, m := setupService(t)

	m.kratos.EXPECT().GetIdentityIDByEmail(gomock.Any(), "a@acme.com").Return("u1", nil)
	m.storage.EXPECT().AddMember(gomock.Any(), "t1", "u1", types.RoleUser).Return("", storage.ErrDuplicateKey)
	m.kratos.EXPECT().CreateRecoveryLink(gomock.Any(), "u1", "24h").Return("https://login/recover", "123456", nil)

	link, code, err := s.InviteMember(context.Background(), "t1", "a@acme.com", types.RoleUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if link != "https://login/recover" || code != "123456" {
		t.Fatalf("unexpected invitation %q %q", link, code)
	}
}

func TestServiceUpdateMember(t *testing.T) {
	s, m := setupService(t)

	gomock.InOrder(
		m.storage.EXPECT().GetMembership(gomock.Any(), "t1", "u1").Return(&types.Membership{Role: types.RoleEditor}, nil),
		m.authz.EXPECT().ChangeRole(gomock.Any(), "t1", "u1", types.RoleEditor, types.RoleAdmin).Return(nil),
		m.storage.EXPECT().UpdateMember(gomock.Any(), "t1", "u1", types.RoleAdmin).Return(nil),
	)
	m.kratos.EXPECT().GetIdentity(gomock.Any(), "u1").Return(&kratos.Identity{ID: "u1", Email: "a@acme.com"}, nil)

	user, err := s.UpdateMember(context.Background(), "t1", "u1", types.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Role != types.RoleAdmin || user.Email != "a@acme.com" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestServiceUpdateMemberSameRole(t *testing.T) {
	s, m := setupService(t)

	m.storage.EXPECT().GetMembership(gomock.Any(), "t1", "u1").Return(&types.Membership{Role: types.RoleAdmin}, nil)
	m.kratos.EXPECT().GetIdentity(gomock.Any(), "u1").Return(&kratos.Identity{ID: "u1", Email: "a@acme.com"}, nil)

	if _, err := s.UpdateMember(context.Background(), "t1", "u1", types.RoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceRemoveMember(t *testing.T) {
	s, m := setupService(t)

	m.storage.EXPECT().GetMembership(gomock.Any(), "t1", "u1").Return(&types.Membership{Role: types.RoleEditor}, nil)
	m.storage.EXPECT().RemoveMember(gomock.Any(), "t1", "u1").Return(nil)
	m.authz.EXPECT().RemoveRole(gomock.Any(), "t1", "u1", types.RoleEditor).Return(fmt.Errorf("fga down"))

	if err := s.RemoveMember(context.Background(), "t1", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceRemoveMemberNotFound(t *testing.T) {
	s, m := setupService(t)

	m.storage.EXPECT().GetMembership(gomock.Any(), "t1", "u1").Return(nil, storage.ErrNotFound)

	if err := s.RemoveMember(context.Background(), "t1", "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
