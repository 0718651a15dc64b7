// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/tenant-sites/internal/kratos"
	"github.com/canonical/tenant-sites/internal/types"
)

type ServiceInterface interface {
	CreateTenant(ctx context.Context, in *CreateTenantRequest) (*types.Tenant, error)
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	UpdateTenant(ctx context.Context, id string, in *UpdateTenantRequest) (*types.Tenant, error)
	DeleteTenant(ctx context.Context, id string) error
	ListMyTenants(ctx context.Context, userID string) ([]*types.Tenant, error)

	CreateDomain(ctx context.Context, in *CreateDomainRequest) (*types.Domain, error)
	ListDomains(ctx context.Context, tenantID string) ([]*types.Domain, error)
	UpdateDomain(ctx context.Context, id string, in *UpdateDomainRequest) (*types.Domain, error)
	DeleteDomain(ctx context.Context, id string) error

	CanManageMembers(ctx context.Context, tenantID string) error
	ListMembers(ctx context.Context, tenantID string) ([]*types.TenantUser, error)
	ProvisionMember(ctx context.Context, tenantID, email, role string) (*types.TenantUser, error)
	InviteMember(ctx context.Context, tenantID, email, role string) (string, string, error)
	UpdateMember(ctx context.Context, tenantID, userID, role string) (*types.TenantUser, error)
	RemoveMember(ctx context.Context, tenantID, userID string) error
}

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *types.Tenant, paths []string) error
	DeleteTenant(ctx context.Context, id string) error

	AddMember(ctx context.Context, tenantID, userID, role string) (string, error)
	GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error)
	ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error)
	UpdateMember(ctx context.Context, tenantID, userID, role string) error
	RemoveMember(ctx context.Context, tenantID, userID string) error

	CreateDomain(ctx context.Context, d *types.Domain) (*types.Domain, error)
	GetDomain(ctx context.Context, id string) (*types.Domain, error)
	ListDomains(ctx context.Context, tenantID string) ([]*types.Domain, error)
	UpdateDomain(ctx context.Context, d *types.Domain, paths []string) error
	DeleteDomain(ctx context.Context, id string) error
}

type AuthzInterface interface {
	AssignRole(ctx context.Context, tenantID, userID, role string) error
	ChangeRole(ctx context.Context, tenantID, userID, from, to string) error
	RemoveRole(ctx context.Context, tenantID, userID, role string) error
	DeleteTenant(ctx context.Context, tenantID string) error
	CheckTenantAccess(ctx context.Context, tenantID, userID, relation string) (bool, error)
}

type KratosClientInterface interface {
	GetIdentityIDByEmail(ctx context.Context, email string) (string, error)
	CreateIdentity(ctx context.Context, email, site string) (string, error)
	GetIdentity(ctx context.Context, id string) (*kratos.Identity, error)
	CreateRecoveryLink(ctx context.Context, identityID string, expiresIn string) (string, string, error)
}

// ResolverCacheInterface drops resolver cache entries made stale by admin writes.
type ResolverCacheInterface interface {
	Invalidate(ctx context.Context, hostnames ...string) error
	InvalidateTenant(ctx context.Context, tenants ...*types.Tenant) error
}
