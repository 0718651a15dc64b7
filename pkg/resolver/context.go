// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import "context"

type resolutionKey struct{}

func WithResolution(ctx context.Context, r *Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey{}, r)
}

func ResolutionFromContext(ctx context.Context) (*Resolution, bool) {
	r, ok := ctx.Value(resolutionKey{}).(*Resolution)
	return r, ok && r != nil
}

// TenantIDFromContext returns the resolved tenant of the request, if any.
func TenantIDFromContext(ctx context.Context) (string, bool) {
	r, ok := ResolutionFromContext(ctx)
	if !ok || r.TenantID == "" {
		return "", false
	}
	return r.TenantID, true
}
