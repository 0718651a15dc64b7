// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import "context"

type principalKey struct{}

// Principal is the caller of a request as seen from the resolved tenant.
// A nil Principal is an anonymous caller.
type Principal struct {
	UserID     string
	Email      string
	SuperAdmin bool
	// TenantID and Role describe the membership in the resolved tenant, both
	// are empty when the caller is not a member.
	TenantID string
	Role     string
}

func (p *Principal) Authenticated() bool {
	return p != nil && p.UserID != ""
}

func (p *Principal) MemberOf(tenantID string) bool {
	return p.Authenticated() && tenantID != "" && p.TenantID == tenantID && p.Role != ""
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
