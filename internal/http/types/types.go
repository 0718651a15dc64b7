// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package types holds the JSON envelopes shared by the HTTP handlers.
package types

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canonical/tenant-sites/internal/db"
	"github.com/canonical/tenant-sites/internal/query"
	"github.com/canonical/tenant-sites/internal/storage"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Response wraps the payload of the administration endpoints.
type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Status: status, Message: message})
}

func WriteResponse(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{Data: data, Message: message, Status: status})
}

// ErrorStatus maps the domain errors handlers bubble up to an HTTP status
// and a message safe to return to the client.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict, "already exists"
	case errors.Is(err, storage.ErrForeignKeyViolation):
		return http.StatusConflict, "referenced resource does not exist or is still in use"
	case errors.Is(err, query.ErrMissingTenant):
		return http.StatusNotFound, "unknown site"
	case errors.Is(err, query.ErrInvalidField),
		errors.Is(err, query.ErrInvalidOperator),
		errors.Is(err, query.ErrInvalidValue),
		errors.Is(err, db.ErrPageOutOfRange):
		return http.StatusBadRequest, err.Error()
	}

	return http.StatusInternalServerError, "internal server error"
}

// WriteErrorFrom writes the mapped status of err.
func WriteErrorFrom(w http.ResponseWriter, err error) int {
	status, message := ErrorStatus(err)
	WriteError(w, status, message)
	return status
}
