// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ory/hydra/v2/oauth2"

	"github.com/canonical/tenant-sites/internal/http/types"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/pkg/resolver"
)

const maxHookBody = 1 << 20

type API struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Post("/api/v0/webhooks/registration", a.registration)
	r.Post("/api/v0/webhooks/token", a.tokenHook)
}

func (a *API) registration(w http.ResponseWriter, r *http.Request) {
	identity := new(KratosIdentity)
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxHookBody)).Decode(identity); err != nil {
		a.logger.Errorf("failed to decode registration hook: %v", err)
		types.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenantID, err := a.service.HandleRegistration(r.Context(), identity)
	switch {
	case err == nil:
		types.WriteResponse(w, http.StatusOK, "registration handled", map[string]string{"tenant_id": tenantID})
	case errors.Is(err, ErrInvalidIdentity), errors.Is(err, resolver.ErrTenantNotResolved):
		types.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		a.logger.Errorf("registration hook failed: %v", err)
		types.WriteError(w, http.StatusInternalServerError, "failed to handle registration")
	}
}

func (a *API) tokenHook(w http.ResponseWriter, r *http.Request) {
	req := new(oauth2.TokenHookRequest)
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxHookBody)).Decode(req); err != nil {
		a.logger.Errorf("failed to decode token hook: %v", err)
		types.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := a.service.HandleTokenHook(r.Context(), req)
	switch {
	case err == nil:
		// Hydra reads the session claims at the top level of the body
		types.WriteJSON(w, http.StatusOK, resp)
	case errors.Is(err, ErrInvalidSession):
		types.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		a.logger.Errorf("token hook failed: %v", err)
		types.WriteError(w, http.StatusInternalServerError, "failed to handle token hook")
	}
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)
	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
