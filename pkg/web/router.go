// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/tenant-sites/internal/db"
	"github.com/canonical/tenant-sites/internal/identity"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/pkg/authentication"
	"github.com/canonical/tenant-sites/pkg/metrics"
	"github.com/canonical/tenant-sites/pkg/resolver"
	"github.com/canonical/tenant-sites/pkg/status"
)

// APIInterface is implemented by every package exposing HTTP endpoints.
type APIInterface interface {
	RegisterEndpoints(chi.Router)
}

// Middlewares groups the request pipeline stages shared by the API groups.
type Middlewares struct {
	Resolver       *resolver.Middleware
	Authentication *authentication.Middleware
	Identity       *identity.Middleware
	// RateLimit guards the site API when set.
	RateLimit func(http.Handler) http.Handler
}

// APIs groups the endpoint sets by the pipeline they are mounted behind.
type APIs struct {
	// Site APIs are served on tenant hosts and need a resolved tenant.
	Site []APIInterface
	// Admin APIs need an authenticated caller, no tenant is resolved.
	Admin []APIInterface
	// Hooks are called by Kratos and Hydra.
	Hooks []APIInterface
}

func NewRouter(
	apis APIs,
	mdw Middlewares,
	dbClient db.DBClientInterface,
	allowedOrigins []string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(allowedOrigins),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(dbClient, tracer, monitor, logger).RegisterEndpoints(router)

	router.Group(func(r chi.Router) {
		if mdw.RateLimit != nil {
			r.Use(mdw.RateLimit)
		}

		r.Use(
			mdw.Resolver.Require(),
			mdw.Authentication.Optional(),
			mdw.Identity.Principal,
			db.TransactionMiddleware(dbClient, logger),
		)

		for _, api := range apis.Site {
			api.RegisterEndpoints(r)
		}
	})

	router.Group(func(r chi.Router) {
		r.Use(
			mdw.Authentication.Authenticate(),
			mdw.Identity.Principal,
			db.TransactionMiddleware(dbClient, logger),
		)

		for _, api := range apis.Admin {
			api.RegisterEndpoints(r)
		}
	})

	router.Group(func(r chi.Router) {
		r.Use(db.TransactionMiddleware(dbClient, logger))

		for _, api := range apis.Hooks {
			api.RegisterEndpoints(r)
		}
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
