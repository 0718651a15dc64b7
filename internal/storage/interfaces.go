// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/canonical/tenant-sites/internal/query"
	"github.com/canonical/tenant-sites/internal/types"
)

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*types.Tenant, error)
	GetAgencyOwnerTenant(ctx context.Context) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	ListTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	ListActiveTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *types.Tenant, paths []string) error
	DeleteTenant(ctx context.Context, id string) error

	AddMember(ctx context.Context, tenantID, userID, role string) (string, error)
	GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error)
	ListMembersByTenantID(ctx context.Context, tenantID string) ([]*types.Membership, error)
	UpdateMember(ctx context.Context, tenantID, userID, role string) error
	RemoveMember(ctx context.Context, tenantID, userID string) error

	CreateDomain(ctx context.Context, d *types.Domain) (*types.Domain, error)
	GetDomain(ctx context.Context, id string) (*types.Domain, error)
	GetActiveDomainByHostname(ctx context.Context, hostname string) (*types.Domain, error)
	ListDomains(ctx context.Context, tenantID string) ([]*types.Domain, error)
	UpdateDomain(ctx context.Context, d *types.Domain, paths []string) error
	DeleteDomain(ctx context.Context, id string) error

	FindDocuments(ctx context.Context, tenantID, collection string, where query.Where, sort string, limit, page uint64) (*types.Page, error)
	GetDocument(ctx context.Context, tenantID, collection, id string, constraint query.Where) (*types.Document, error)
	CreateDocument(ctx context.Context, d *types.Document) (*types.Document, error)
	UpdateDocument(ctx context.Context, tenantID, collection, id string, constraint query.Where, patch *types.DocumentPatch) (*types.Document, error)
	DeleteDocument(ctx context.Context, tenantID, collection, id string, constraint query.Where) error
}
