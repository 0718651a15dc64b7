// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "context"

type TokenVerifierInterface interface {
	// VerifyToken verifies a raw JWT string and returns its claims when the
	// token is valid and passes the configured access policy.
	VerifyToken(ctx context.Context, rawToken string) (*Claims, error)
}
