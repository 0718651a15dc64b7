// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import "context"

type tenantContextKey struct{}

// tenantSetting is read by the row level security policies of the tenant
// scoped tables.
const tenantSetting = "app.current_tenant"

const setTenantQuery = "SELECT set_config('" + tenantSetting + "', $1, true)"

// ContextWithTenant marks the statements run with ctx as belonging to tenantID.
// With row level security enforced, the transaction serving them is bound to
// the tenant before the statement runs.
func ContextWithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tenantID)
}

func TenantFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tenantContextKey{}).(string)
	return id
}
