// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-sites/internal/access"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
	"github.com/canonical/tenant-sites/pkg/authentication"
)

//go:generate mockgen -build_flags=--mod=mod -package identity -destination ./mock_storage.go -source=./middleware.go

func tenantOf(id string) TenantFunc {
	return func(context.Context) (string, bool) {
		return id, id != ""
	}
}

func TestMiddlewarePrincipal(t *testing.T) {
	tests := []struct {
		name        string
		claims      *authentication.Claims
		header      string
		trustHeader bool
		tenant      string
		setup       func(*MockMembershipStorage)

		expected       *access.Principal
		expectedStatus int
	}{
		{
			name:           "anonymous",
			tenant:         "t1",
			setup:          func(*MockMembershipStorage) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "member of the resolved tenant",
			claims: &authentication.Claims{Subject: "u1", Email: "u1@example.com"},
			tenant: "t1",
			setup: func(s *MockMembershipStorage) {
				s.EXPECT().GetMembership(gomock.Any(), "t1", "u1").Return(&types.Membership{TenantID: "t1", KratosIdentityID: "u1", Role: types.RoleEditor}, nil)
			},
			expected:       &access.Principal{UserID: "u1", Email: "u1@example.com", TenantID: "t1", Role: types.RoleEditor},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "non member",
			claims: &authentication.Claims{Subject: "u2"},
			tenant: "t1",
			setup: func(s *MockMembershipStorage) {
				s.EXPECT().GetMembership(gomock.Any(), "t1", "u2").Return(nil, storage.ErrNotFound)
			},
			expected:       &access.Principal{UserID: "u2"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "super admin by email without tenant",
			claims:         &authentication.Claims{Subject: "u3", Email: "Root@Agency.io"},
			setup:          func(*MockMembershipStorage) {},
			expected:       &access.Principal{UserID: "u3", Email: "Root@Agency.io", SuperAdmin: true},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "trusted proxy header",
			header:      "u4",
			trustHeader: true,
			tenant:      "t1",
			setup: func(s *MockMembershipStorage) {
				s.EXPECT().GetMembership(gomock.Any(), "t1", "u4").Return(&types.Membership{TenantID: "t1", Role: types.RoleUser}, nil)
			},
			expected:       &access.Principal{UserID: "u4", TenantID: "t1", Role: types.RoleUser},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "untrusted proxy header is ignored",
			header:         "u4",
			tenant:         "t1",
			setup:          func(*MockMembershipStorage) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "membership lookup failure",
			claims: &authentication.Claims{Subject: "u1"},
			tenant: "t1",
			setup: func(s *MockMembershipStorage) {
				s.EXPECT().GetMembership(gomock.Any(), "t1", "u1").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			s := NewMockMembershipStorage(ctrl)
			test.setup(s)

			logger := logging.NewNoopLogger()
			m := NewMiddleware(s, tenantOf(test.tenant), []string{"root@agency.io"}, test.trustHeader, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("", logger), logger)

			var seen *access.Principal
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = access.PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
			if test.claims != nil {
				req = req.WithContext(authentication.WithClaims(req.Context(), test.claims))
			}
			if test.header != "" {
				req.Header.Set(HeaderName, test.header)
			}
			rr := httptest.NewRecorder()

			m.Principal(handler).ServeHTTP(rr, req)

			if rr.Code != test.expectedStatus {
				t.Fatalf("expected status %d, got %d", test.expectedStatus, rr.Code)
			}

			if !reflect.DeepEqual(seen, test.expected) {
				t.Fatalf("expected principal %+v, got %+v", test.expected, seen)
			}
		})
	}
}
