// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-sites/internal/http/types"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/version"
)

const (
	okValue     = "ok"
	failedValue = "unavailable"

	pingTimeout = 2 * time.Second
)

type API struct {
	db PingerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/status", a.alive)
	mux.Get("/api/v0/version", a.version)
	mux.Get("/api/v0/ready", a.ready)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "status.API.alive")
	defer span.End()

	types.WriteJSON(w, http.StatusOK, Status{Status: okValue})
}

func (a *API) version(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "status.API.version")
	defer span.End()

	info := &BuildInfo{Version: version.Version}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.Name = bi.Main.Path
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.CommitHash = s.Value
			}
		}
	}

	types.WriteJSON(w, http.StatusOK, Status{Status: okValue, BuildInfo: info})
}

// ready answers 503 while the database cannot be reached.
func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.ready")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	res := Readiness{Status: okValue, Services: map[string]string{"database": okValue}}
	status := http.StatusOK

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Errorf("database is not reachable: %v", err)
		a.monitor.SetDependencyAvailability(map[string]string{"component": "database"}, 0)

		res.Status = failedValue
		res.Services["database"] = failedValue
		status = http.StatusServiceUnavailable
	} else {
		a.monitor.SetDependencyAvailability(map[string]string{"component": "database"}, 1)
	}

	types.WriteJSON(w, status, res)
}

func NewAPI(db PingerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.db = db

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
