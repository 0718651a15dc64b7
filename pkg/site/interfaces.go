// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package site

import (
	"context"
	"net/http"

	"github.com/canonical/tenant-sites/internal/query"
	"github.com/canonical/tenant-sites/internal/types"
)

type ServiceInterface interface {
	Site(ctx context.Context) (*Site, error)
	CanSwitch(ctx context.Context, tenantID string) error
}

type StorageInterface interface {
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetMembership(ctx context.Context, tenantID, userID string) (*types.Membership, error)
	FindDocuments(ctx context.Context, tenantID, collection string, where query.Where, sort string, limit, page uint64) (*types.Page, error)
}

type CookieInterface interface {
	SetSwitchCookie(w http.ResponseWriter, r *http.Request, tenantID string) error
}
