// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-sites/internal/access"
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/storage"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
)

const tenantUUID = "0190a1f2-0000-7000-8000-000000000001"

var (
	superAdmin = &access.Principal{UserID: "root", SuperAdmin: true}
	member     = &access.Principal{UserID: "u1", TenantID: tenantUUID, Role: types.RoleAdmin}
)

func TestAPI(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		principal *access.Principal
		setup     func(*MockServiceInterface)

		expectedStatus int
	}{
		{
			name:           "admin routes need a caller",
			method:         http.MethodGet,
			path:           "/api/v0/admin/tenants",
			setup:          func(*MockServiceInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "admin routes need a super admin",
			method:         http.MethodGet,
			path:           "/api/v0/admin/tenants",
			principal:      member,
			setup:          func(*MockServiceInterface) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:      "list tenants",
			method:    http.MethodGet,
			path:      "/api/v0/admin/tenants",
			principal: superAdmin,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().ListTenants(gomock.Any()).Return([]*types.Tenant{{ID: tenantUUID}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "create tenant",
			method:    http.MethodPost,
			path:      "/api/v0/admin/tenants",
			body:      `{"name":"Acme","slug":"acme"}`,
			principal: superAdmin,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CreateTenant(gomock.Any(), &CreateTenantRequest{Name: "Acme", Slug: "acme"}).Return(&types.Tenant{ID: tenantUUID}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "create tenant with a dotted slug",
			method:         http.MethodPost,
			path:           "/api/v0/admin/tenants",
			body:           `{"name":"Acme","slug":"acme.com"}`,
			principal:      superAdmin,
			setup:          func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "create tenant with a taken slug",
			method:    http.MethodPost,
			path:      "/api/v0/admin/tenants",
			body:      `{"name":"Acme","slug":"acme"}`,
			principal: superAdmin,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateKey)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:      "get missing tenant",
			method:    http.MethodGet,
			path:      "/api/v0/admin/tenants/" + tenantUUID,
			principal: superAdmin,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().GetTenant(gomock.Any(), tenantUUID).Return(nil, storage.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:      "disable tenant",
			method:    http.MethodPatch,
			path:      "/api/v0/admin/tenants/" + tenantUUID,
			body:      `{"enabled":false}`,
			principal: superAdmin,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().UpdateTenant(gomock.Any(), tenantUUID, gomock.Any()).Return(&types.Tenant{ID: tenantUUID}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "delete tenant",
			method:    http.MethodDelete,
			path:      "/api/v0/admin/tenants/" + tenantUUID,
			principal: superAdmin,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().DeleteTenant(gomock.Any(), tenantUUID).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "list domains of a tenant",
			method:    http.MethodGet,
			path:      "/api/v0/admin/domains?tenant_id=" + tenantUUID,
			principal: superAdmin,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().ListDomains(gomock.Any(), tenantUUID).Return([]*types.Domain{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "create domain",
			method:    http.MethodPost,
			path:      "/api/v0/admin/domains",
			body:      `{"hostname":"acme.com","tenant_id":"` + tenantUUID + `"}`,
			principal: superAdmin,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CreateDomain(gomock.Any(), gomock.Any()).Return(&types.Domain{ID: "d1"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:      "create domain with a bad hostname",
			method:    http.MethodPost,
			path:      "/api/v0/admin/domains",
			body:      `{"hostname":":80","tenant_id":"` + tenantUUID + `"}`,
			principal: superAdmin,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CreateDomain(gomock.Any(), gomock.Any()).Return(nil, ErrInvalidInput)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "delete domain",
			method:    http.MethodDelete,
			path:      "/api/v0/admin/domains/d1",
			principal: superAdmin,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().DeleteDomain(gomock.Any(), "d1").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "members of a managed tenant",
			method:    http.MethodGet,
			path:      "/api/v0/admin/tenants/" + tenantUUID + "/members",
			principal: member,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CanManageMembers(gomock.Any(), tenantUUID).Return(nil)
				s.EXPECT().ListMembers(gomock.Any(), tenantUUID).Return([]*types.TenantUser{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "members of another tenant",
			method:    http.MethodGet,
			path:      "/api/v0/admin/tenants/other/members",
			principal: member,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CanManageMembers(gomock.Any(), "other").Return(ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:      "provision member",
			method:    http.MethodPost,
			path:      "/api/v0/admin/tenants/" + tenantUUID + "/members",
			body:      `{"email":"a@acme.com","role":"editor"}`,
			principal: member,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CanManageMembers(gomock.Any(), tenantUUID).Return(nil)
				s.EXPECT().ProvisionMember(gomock.Any(), tenantUUID, "a@acme.com", types.RoleEditor).
					Return(&types.TenantUser{UserID: "u2", Email: "a@acme.com", Role: types.RoleEditor}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:      "provision member with an unknown role",
			method:    http.MethodPost,
			path:      "/api/v0/admin/tenants/" + tenantUUID + "/members",
			body:      `{"email":"a@acme.com","role":"god"}`,
			principal: member,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CanManageMembers(gomock.Any(), tenantUUID).Return(nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "invite member",
			method:    http.MethodPost,
			path:      "/api/v0/admin/tenants/" + tenantUUID + "/invitations",
			body:      `{"email":"a@acme.com","role":"user"}`,
			principal: member,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CanManageMembers(gomock.Any(), tenantUUID).Return(nil)
				s.EXPECT().InviteMember(gomock.Any(), tenantUUID, "a@acme.com", types.RoleUser).Return("https://login/recover", "123456", nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:      "update member",
			method:    http.MethodPatch,
			path:      "/api/v0/admin/tenants/" + tenantUUID + "/members/u2",
			body:      `{"role":"admin"}`,
			principal: member,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CanManageMembers(gomock.Any(), tenantUUID).Return(nil)
				s.EXPECT().UpdateMember(gomock.Any(), tenantUUID, "u2", types.RoleAdmin).Return(&types.TenantUser{UserID: "u2"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "remove missing member",
			method:    http.MethodDelete,
			path:      "/api/v0/admin/tenants/" + tenantUUID + "/members/u2",
			principal: member,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().CanManageMembers(gomock.Any(), tenantUUID).Return(nil)
				s.EXPECT().RemoveMember(gomock.Any(), tenantUUID, "u2").Return(storage.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "my tenants need a caller",
			method:         http.MethodGet,
			path:           "/api/v0/me/tenants",
			setup:          func(*MockServiceInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:      "my tenants",
			method:    http.MethodGet,
			path:      "/api/v0/me/tenants",
			principal: member,
			setup: func(s *MockServiceInterface) {
				s.EXPECT().ListMyTenants(gomock.Any(), "u1").Return([]*types.Tenant{{ID: tenantUUID}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			svc := NewMockServiceInterface(ctrl)
			test.setup(svc)

			logger := logging.NewNoopLogger()
			router := chi.NewMux()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), test.principal)))
				})
			})
			NewAPI(svc, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("", logger), logger).RegisterEndpoints(router)

			req := httptest.NewRequest(test.method, test.path, strings.NewReader(test.body))
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			if rr.Code != test.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", test.expectedStatus, rr.Code, rr.Body.String())
			}

			body := make(map[string]any)
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
		})
	}
}
