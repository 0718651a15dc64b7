// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"context"

	"github.com/canonical/tenant-sites/internal/types"
)

type ResolverInterface interface {
	Resolve(ctx context.Context, host, cookieTenantID string) (*Resolution, error)
	Invalidate(ctx context.Context, hostnames ...string) error
	InvalidateTenant(ctx context.Context, tenants ...*types.Tenant) error
}

type StorageInterface interface {
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*types.Tenant, error)
	GetAgencyOwnerTenant(ctx context.Context) (*types.Tenant, error)
	GetActiveDomainByHostname(ctx context.Context, hostname string) (*types.Domain, error)
}
