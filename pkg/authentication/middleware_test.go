// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_verifier.go -source=./interfaces.go

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		required   bool
		authHeader string
		setupMocks func(*MockTokenVerifierInterface)

		expectedStatus int
		expectedUser   string
	}{
		{
			name:           "required without a token",
			required:       true,
			setupMocks:     func(*MockTokenVerifierInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "required with a raw token",
			required:       true,
			authHeader:     "my-token",
			setupMocks:     func(*MockTokenVerifierInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "required with a rejected token",
			required:   true,
			authHeader: "Bearer bad",
			setupMocks: func(m *MockTokenVerifierInterface) {
				m.EXPECT().VerifyToken(gomock.Any(), "bad").Return(nil, errors.New("expired"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "required with a valid token",
			required:   true,
			authHeader: "Bearer good",
			setupMocks: func(m *MockTokenVerifierInterface) {
				m.EXPECT().VerifyToken(gomock.Any(), "good").Return(&Claims{Subject: "user-1"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedUser:   "user-1",
		},
		{
			name:           "optional without a token",
			setupMocks:     func(*MockTokenVerifierInterface) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "optional with basic credentials",
			authHeader:     "Basic dXNlcjpwYXNz",
			setupMocks:     func(*MockTokenVerifierInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "optional with a rejected token",
			authHeader: "Bearer bad",
			setupMocks: func(m *MockTokenVerifierInterface) {
				m.EXPECT().VerifyToken(gomock.Any(), "bad").Return(nil, errors.New("expired"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "optional with a lower case scheme",
			authHeader: "bearer good",
			setupMocks: func(m *MockTokenVerifierInterface) {
				m.EXPECT().VerifyToken(gomock.Any(), "good").Return(&Claims{Subject: "user-1", Email: "a@example.com"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedUser:   "user-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockTracer := NewMockTracingInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockVerifier := NewMockTokenVerifierInterface(ctrl)

			spanName := "authentication.Middleware.Optional"
			if tt.required {
				spanName = "authentication.Middleware.Authenticate"
			}
			mockTracer.EXPECT().Start(gomock.Any(), spanName).
				DoAndReturn(func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
					return ctx, trace.SpanFromContext(ctx)
				})
			mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
			tt.setupMocks(mockVerifier)

			middleware := NewMiddleware(mockVerifier, mockTracer, NewMockMonitorInterface(ctrl), mockLogger)
			mw := middleware.Optional()
			if tt.required {
				mw = middleware.Authenticate()
			}

			var user string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user, _ = GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			mw(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			if user != tt.expectedUser {
				t.Fatalf("expected user %q, got %q", tt.expectedUser, user)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		found  bool
	}{
		{header: "", found: false},
		{header: "Bearer my-token-123", token: "my-token-123", found: true},
		{header: "BEARER my-token-123", token: "my-token-123", found: true},
		{header: "Bearer ", found: false},
		{header: "my-token-123", found: false},
	}

	for _, test := range tests {
		t.Run(test.header, func(t *testing.T) {
			token, found := bearerToken(test.header)

			if token != test.token || found != test.found {
				t.Fatalf("expected (%q, %v), got (%q, %v)", test.token, test.found, token, found)
			}
		})
	}
}
