// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package content

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-sites/internal/http/types"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

const maxBodyBytes = 1 << 20

type API struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/{collection}", a.find)
	r.Post("/api/{collection}", a.create)
	r.Get("/api/{collection}/{id}", a.get)
	r.Patch("/api/{collection}/{id}", a.update)
	r.Delete("/api/{collection}/{id}", a.delete)
}

func (a *API) find(w http.ResponseWriter, r *http.Request) {
	page, err := a.service.Find(r.Context(), chi.URLParam(r, "collection"), r.URL.Query())
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteJSON(w, http.StatusOK, page)
}

func (a *API) get(w http.ResponseWriter, r *http.Request) {
	doc, err := a.service.Get(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteJSON(w, http.StatusOK, doc)
}

func (a *API) create(w http.ResponseWriter, r *http.Request) {
	input, ok := a.decode(w, r)
	if !ok {
		return
	}

	doc, err := a.service.Create(r.Context(), chi.URLParam(r, "collection"), input)
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusCreated, "created", doc)
}

func (a *API) update(w http.ResponseWriter, r *http.Request) {
	input, ok := a.decode(w, r)
	if !ok {
		return
	}

	doc, err := a.service.Update(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"), input)
	if err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "updated", doc)
}

func (a *API) delete(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Delete(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}

	types.WriteResponse(w, http.StatusOK, "deleted", nil)
}

func (a *API) decode(w http.ResponseWriter, r *http.Request) (*DocumentInput, bool) {
	input := new(DocumentInput)

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(input); err != nil {
		types.WriteError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	return input, true
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownCollection):
		types.WriteError(w, http.StatusNotFound, "unknown collection")
	case errors.Is(err, ErrUnauthenticated):
		types.WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, ErrForbidden):
		types.WriteError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrInvalidInput):
		types.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		if status := types.WriteErrorFrom(w, err); status == http.StatusInternalServerError {
			a.logger.Errorf("content request failed: %v", err)
		}
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
