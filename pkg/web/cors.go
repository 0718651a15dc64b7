// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/canonical/tenant-sites/pkg/resolver"
)

// middlewareCORS lets the tenant frontends call the API with their
// credentials; the resolved tenant header is readable by scripts.
func middlewareCORS(origins []string) func(http.Handler) http.Handler {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}

	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{resolver.TenantHeader},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}

	// tenant domains are not known up front, any origin is reflected back
	if wildcard {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(_ *http.Request, _ string) bool { return true }
		opts.AllowCredentials = true
	}

	return cors.Handler(opts)
}
