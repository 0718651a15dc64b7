// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package kratos

import "context"

type ClientInterface interface {
	GetIdentityIDByEmail(ctx context.Context, email string) (string, error)
	CreateIdentity(ctx context.Context, email, site string) (string, error)
	GetIdentity(ctx context.Context, id string) (*Identity, error)
	CreateRecoveryLink(ctx context.Context, identityID string, expiresIn string) (string, string, error)
}
