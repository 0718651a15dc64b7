// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

// keysClient fetches discovery documents and signing keys.
var keysClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

// NewJWTAuthenticator verifies the access tokens of issuer. Signing keys come
// from jwksURL when set, from the discovery document of the issuer otherwise.
// The client id is not checked, tokens minted for any front end of the
// agency are accepted.
func NewJWTAuthenticator(
	ctx context.Context,
	issuer string,
	jwksURL string,
	allowedSubjects []string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (TokenVerifierInterface, error) {
	if issuer == "" {
		return nil, errors.New("an OIDC issuer is required when authentication is enabled")
	}

	ctx = oidc.ClientContext(ctx, keysClient)
	cfg := &oidc.Config{SkipClientIDCheck: true}

	if jwksURL != "" {
		logger.Infof("Verifying tokens of %s with the keys at %s", issuer, jwksURL)
		keys := oidc.NewRemoteKeySet(ctx, jwksURL)

		return newJWTVerifier(oidc.NewVerifier(issuer, keys, cfg), allowedSubjects, requiredScope, tracer, monitor, logger), nil
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover issuer %s: %w", issuer, err)
	}

	logger.Infof("Verifying tokens of %s through discovery", issuer)

	return newJWTVerifier(provider.Verifier(cfg), allowedSubjects, requiredScope, tracer, monitor, logger), nil
}
