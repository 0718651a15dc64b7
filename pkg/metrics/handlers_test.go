// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-sites/internal/logging"
)

func TestPrometheusEndpoint(t *testing.T) {
	mux := chi.NewMux()
	NewAPI(logging.NewNoopLogger()).RegisterEndpoints(mux)

	req := httptest.NewRequest(http.MethodGet, prometheusPath, nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	// the default registry always carries the go collector
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Fatal("expected go runtime metrics in the exposition")
	}
}
