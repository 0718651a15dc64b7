// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"net/http"
	"strings"

	"github.com/canonical/tenant-sites/internal/http/types"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

type Middleware struct {
	verifier TokenVerifierInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Authenticate rejects requests without a valid bearer token.
func (m *Middleware) Authenticate() func(http.Handler) http.Handler {
	return m.middleware("authentication.Middleware.Authenticate", true)
}

// Optional lets anonymous requests through, a token that is present still
// has to be valid.
func (m *Middleware) Optional() func(http.Handler) http.Handler {
	return m.middleware("authentication.Middleware.Optional", false)
}

func (m *Middleware) middleware(spanName string, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), spanName)
			defer span.End()

			header := r.Header.Get("Authorization")
			if header == "" && !required {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token, ok := bearerToken(header)
			if !ok {
				types.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := m.verifier.VerifyToken(ctx, token)
			if err != nil {
				m.logger.Debugf("token verification failed: %v", err)
				types.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

// bearerToken parses "Bearer <token>", the scheme is case insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func NewMiddleware(verifier TokenVerifierInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		verifier: verifier,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
