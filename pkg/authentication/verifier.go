// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

// JWTVerifier accepts tokens of the configured issuer. When allowed subjects
// or a required scope are configured the token has to satisfy one of them,
// otherwise every valid token is accepted.
type JWTVerifier struct {
	verifier        *oidc.IDTokenVerifier
	allowedSubjects []string
	requiredScope   string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, rawToken string) (*Claims, error) {
	ctx, span := v.tracer.Start(ctx, "authentication.JWTVerifier.VerifyToken")
	defer span.End()

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	claims := new(Claims)
	if err := token.Claims(claims); err != nil {
		v.logger.Debugf("Failed to extract claims: %v", err)
		return nil, err
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("unauthorized: token has no subject")
	}

	if v.authorized(claims) {
		return claims, nil
	}

	v.logger.Security().AuthzFailure(claims.Subject, "jwt_api_access")
	return nil, fmt.Errorf("unauthorized: missing required scope or subject not allowed")
}

func (v *JWTVerifier) authorized(claims *Claims) bool {
	if len(v.allowedSubjects) == 0 && v.requiredScope == "" {
		return true
	}

	if slices.Contains(v.allowedSubjects, claims.Subject) {
		return true
	}

	if v.requiredScope == "" {
		return false
	}

	return slices.Contains(strings.Fields(claims.Scope), v.requiredScope) ||
		slices.Contains(claims.Scopes, v.requiredScope)
}

func newJWTVerifier(
	verifier *oidc.IDTokenVerifier,
	allowedSubjects []string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *JWTVerifier {
	return &JWTVerifier{
		verifier:        verifier,
		allowedSubjects: allowedSubjects,
		requiredScope:   requiredScope,
		tracer:          tracer,
		monitor:         monitor,
		logger:          logger,
	}
}
