// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"

	"github.com/ory/hydra/v2/oauth2"

	"github.com/canonical/tenant-sites/internal/types"
	"github.com/canonical/tenant-sites/pkg/resolver"
)

// StorageInterface is the subset of internal/storage used by the hooks.
type StorageInterface interface {
	AddMember(ctx context.Context, tenantID, userID, role string) (string, error)
	ListActiveTenantsByUserID(ctx context.Context, userID string) ([]*types.Tenant, error)
}

// AuthorizerInterface is the subset of internal/authorization used by the hooks.
type AuthorizerInterface interface {
	AssignRole(ctx context.Context, tenantID, userID, role string) error
}

type ResolverInterface interface {
	Resolve(ctx context.Context, host, cookieTenantID string) (*resolver.Resolution, error)
}

type ServiceInterface interface {
	HandleRegistration(ctx context.Context, identity *KratosIdentity) (string, error)
	HandleTokenHook(ctx context.Context, req *oauth2.TokenHookRequest) (*TokenHookResponse, error)
}
