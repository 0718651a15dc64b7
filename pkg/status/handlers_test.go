// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/version"
)

//go:generate mockgen -build_flags=--mod=mod -package status -destination ./mock_status.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package status -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go

func TestAliveOK(t *testing.T) {
	ctrl := gomock.NewController(t)

	mux := chi.NewMux()
	NewAPI(NewMockPingerInterface(ctrl), tracing.NewNoopTracer(), NewMockMonitorInterface(ctrl), logging.NewNoopLogger()).RegisterEndpoints(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v0/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	s := new(Status)
	if err := json.Unmarshal(w.Body.Bytes(), s); err != nil {
		t.Fatalf("unexpected body: %v", err)
	}

	if s.Status != okValue || s.BuildInfo != nil {
		t.Fatalf("unexpected status %+v", s)
	}
}

func TestVersion(t *testing.T) {
	ctrl := gomock.NewController(t)

	mux := chi.NewMux()
	NewAPI(NewMockPingerInterface(ctrl), tracing.NewNoopTracer(), NewMockMonitorInterface(ctrl), logging.NewNoopLogger()).RegisterEndpoints(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v0/version", nil))

	s := new(Status)
	if err := json.Unmarshal(w.Body.Bytes(), s); err != nil {
		t.Fatalf("unexpected body: %v", err)
	}

	if s.BuildInfo == nil || s.BuildInfo.Version != version.Version {
		t.Fatalf("expected version %s, got %+v", version.Version, s.BuildInfo)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error

		expectedStatus       int
		expectedAvailability float64
	}{
		{name: "database reachable", expectedStatus: http.StatusOK, expectedAvailability: 1},
		{name: "database down", pingErr: fmt.Errorf("connection refused"), expectedStatus: http.StatusServiceUnavailable},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			pinger := NewMockPingerInterface(ctrl)
			monitor := NewMockMonitorInterface(ctrl)

			pinger.EXPECT().Ping(gomock.Any()).Return(test.pingErr)
			monitor.EXPECT().SetDependencyAvailability(map[string]string{"component": "database"}, test.expectedAvailability).Return(nil)

			mux := chi.NewMux()
			NewAPI(pinger, tracing.NewNoopTracer(), monitor, logging.NewNoopLogger()).RegisterEndpoints(mux)

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v0/ready", nil))

			if w.Code != test.expectedStatus {
				t.Fatalf("expected status %d, got %d", test.expectedStatus, w.Code)
			}
		})
	}
}
