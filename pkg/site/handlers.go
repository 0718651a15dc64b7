// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package site

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-sites/internal/http/types"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

type API struct {
	service  ServiceInterface
	cookies  CookieInterface
	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/site", a.site)
	r.Post("/api/site/tenant", a.switchTenant)
}

func (a *API) site(w http.ResponseWriter, r *http.Request) {
	site, err := a.service.Site(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteJSON(w, http.StatusOK, site)
}

func (a *API) switchTenant(w http.ResponseWriter, r *http.Request) {
	req := new(SwitchRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		types.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.validate.Struct(req); err != nil {
		types.WriteError(w, http.StatusBadRequest, "tenant_id must be a uuid")
		return
	}

	if err := a.service.CanSwitch(r.Context(), req.TenantID); err != nil {
		a.writeError(w, err)
		return
	}

	if err := a.cookies.SetSwitchCookie(w, r, req.TenantID); err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "tenant switched", map[string]string{"tenant_id": req.TenantID})
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		types.WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, ErrForbidden):
		types.WriteError(w, http.StatusForbidden, "forbidden")
	default:
		if status := types.WriteErrorFrom(w, err); status == http.StatusInternalServerError {
			a.logger.Errorf("site request failed: %v", err)
		}
	}
}

func NewAPI(service ServiceInterface, cookies CookieInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)
	a.service = service
	a.cookies = cookies
	a.validate = validator.New(validator.WithRequiredStructEnabled())

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
