// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

func TestMiddleware(t *testing.T) {
	cookies := NewCookieSigner("tenant", []byte("secret"), time.Hour)
	resolved, _ := cookies.Issue("t1", "acme.com", false)
	switched, _ := cookies.Issue("t1", "acme.com", true)

	tests := []struct {
		name     string
		optional bool
		cookie   string
		setup    func(*MockResolverInterface)

		expectedStatus    int
		expectedTenant    string
		expectedSetCookie bool
	}{
		{
			name: "resolved tenant is propagated",
			setup: func(r *MockResolverInterface) {
				r.EXPECT().Resolve(gomock.Any(), "acme.com", "").
					Return(&Resolution{TenantID: "t1", Source: SourceDomain, Hostname: "acme.com"}, nil)
			},
			expectedStatus:    http.StatusOK,
			expectedTenant:    "t1",
			expectedSetCookie: true,
		},
		{
			name:   "matching cookie is not reissued",
			cookie: resolved,
			setup: func(r *MockResolverInterface) {
				r.EXPECT().Resolve(gomock.Any(), "acme.com", "").
					Return(&Resolution{TenantID: "t1", Source: SourceDomain, Hostname: "acme.com"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedTenant: "t1",
		},
		{
			name:   "resolved cookie does not outlive a remapped domain",
			cookie: resolved,
			setup: func(r *MockResolverInterface) {
				r.EXPECT().Resolve(gomock.Any(), "acme.com", "").
					Return(&Resolution{TenantID: "t2", Source: SourceDomain, Hostname: "acme.com"}, nil)
			},
			expectedStatus:    http.StatusOK,
			expectedTenant:    "t2",
			expectedSetCookie: true,
		},
		{
			name:   "resolved cookie does not keep a removed domain alive",
			cookie: resolved,
			setup: func(r *MockResolverInterface) {
				r.EXPECT().Resolve(gomock.Any(), "acme.com", "").Return(nil, ErrTenantNotResolved)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "switched cookie selects the tenant",
			cookie: switched,
			setup: func(r *MockResolverInterface) {
				r.EXPECT().Resolve(gomock.Any(), "acme.com", "t1").
					Return(&Resolution{TenantID: "t1", Source: SourceCookie, Hostname: "acme.com"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedTenant: "t1",
		},
		{
			name:   "ignored switched cookie is replaced",
			cookie: switched,
			setup: func(r *MockResolverInterface) {
				r.EXPECT().Resolve(gomock.Any(), "acme.com", "t1").
					Return(&Resolution{TenantID: "t1", Source: SourceDomain, Hostname: "acme.com"}, nil)
			},
			expectedStatus:    http.StatusOK,
			expectedTenant:    "t1",
			expectedSetCookie: true,
		},
		{
			name: "unknown site answers 404",
			setup: func(r *MockResolverInterface) {
				r.EXPECT().Resolve(gomock.Any(), "acme.com", "").Return(nil, fmt.Errorf("%w: acme.com", ErrTenantNotResolved))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:     "optional lets unknown sites through",
			optional: true,
			setup: func(r *MockResolverInterface) {
				r.EXPECT().Resolve(gomock.Any(), "acme.com", "").Return(nil, ErrTenantNotResolved)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "lookup failure answers 500",
			setup: func(r *MockResolverInterface) {
				r.EXPECT().Resolve(gomock.Any(), "acme.com", "").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			resolver := NewMockResolverInterface(ctrl)
			test.setup(resolver)

			logger := logging.NewNoopLogger()
			m := NewMiddleware(resolver, cookies, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("", logger), logger)

			var (
				seenHeader  string
				seenContext string
			)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenHeader = r.Header.Get(TenantHeader)
				seenContext, _ = TenantIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			mw := m.Require()
			if test.optional {
				mw = m.Optional()
			}

			req := httptest.NewRequest(http.MethodGet, "http://acme.com/api/pages", nil)
			req.Header.Set(TenantHeader, "spoofed")
			if test.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "tenant", Value: test.cookie})
			}
			rr := httptest.NewRecorder()

			mw(handler).ServeHTTP(rr, req)

			if rr.Code != test.expectedStatus {
				t.Fatalf("expected status %d, got %d", test.expectedStatus, rr.Code)
			}

			if rr.Code != http.StatusOK {
				body := make(map[string]any)
				if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
					t.Fatalf("expected a json error body: %v", err)
				}
				if test.expectedStatus == http.StatusNotFound && body["message"] != "unknown site" {
					t.Fatalf("expected unknown site, got %v", body["message"])
				}
				return
			}

			if seenHeader != test.expectedTenant || seenContext != test.expectedTenant {
				t.Fatalf("expected tenant %q downstream, got header %q and context %q", test.expectedTenant, seenHeader, seenContext)
			}

			if got := rr.Header().Get(TenantHeader); got != test.expectedTenant {
				t.Fatalf("expected response tenant header %q, got %q", test.expectedTenant, got)
			}

			if set := len(rr.Result().Cookies()) > 0; set != test.expectedSetCookie {
				t.Fatalf("expected cookie set %v, got %v", test.expectedSetCookie, set)
			}
		})
	}
}
