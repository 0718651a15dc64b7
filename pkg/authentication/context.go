// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "context"

type contextKey struct{}

var claimsContextKey = contextKey{}

// Claims is the subset of token claims the service relies on.
type Claims struct {
	Subject string   `json:"sub"`
	Email   string   `json:"email"`
	Scope   string   `json:"scope"`
	Scopes  []string `json:"scp"`
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

func GetClaims(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	return c, ok && c != nil
}

// WithUserID stores a bare subject, for callers authenticated without a token.
func WithUserID(ctx context.Context, userID string) context.Context {
	return WithClaims(ctx, &Claims{Subject: userID})
}

// GetUserID returns the authenticated subject, false for anonymous requests.
func GetUserID(ctx context.Context) (string, bool) {
	c, ok := GetClaims(ctx)
	if !ok || c.Subject == "" {
		return "", false
	}
	return c.Subject, true
}
