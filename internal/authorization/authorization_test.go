// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"errors"
	"testing"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"
	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/openfga"
	"github.com/canonical/tenant-sites/internal/tracing"
	"github.com/canonical/tenant-sites/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_interfaces.go -source=./interfaces.go

func newTestAuthorizer(ctrl *gomock.Controller) (*Authorizer, *MockAuthzClientInterface) {
	mockClient := NewMockAuthzClientInterface(ctrl)
	logger := logging.NewNoopLogger()

	return NewAuthorizer(mockClient, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("", logger), logger), mockClient
}

func TestAuthorizer_Check(t *testing.T) {
	contextualTuples := []openfga.Tuple{*openfga.NewTuple("user:789", "owner", "tenant:456")}

	testCases := []struct {
		name           string
		setupMocks     func(*MockAuthzClientInterface)
		expectedResult bool
		expectedErr    bool
	}{
		{
			name: "allowed",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().Check(gomock.Any(), "user:123", "member", "tenant:456", contextualTuples[0]).Return(true, nil)
			},
			expectedResult: true,
		},
		{
			name: "not allowed",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().Check(gomock.Any(), "user:123", "member", "tenant:456", contextualTuples[0]).Return(false, nil)
			},
		},
		{
			name: "client error",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().Check(gomock.Any(), "user:123", "member", "tenant:456", contextualTuples[0]).Return(false, errors.New("client error"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			a, mockClient := newTestAuthorizer(ctrl)
			tc.setupMocks(mockClient)

			result, err := a.Check(context.Background(), "user:123", "member", "tenant:456", contextualTuples...)

			if tc.expectedErr != (err != nil) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}

			if result != tc.expectedResult {
				t.Errorf("expected result %v, got %v", tc.expectedResult, result)
			}
		})
	}
}

func TestAuthorizer_AssignRole(t *testing.T) {
	testCases := []struct {
		role     string
		relation string
		err      error
	}{
		{role: types.RoleOwner, relation: OWNER_RELATION},
		{role: types.RoleAdmin, relation: ADMIN_RELATION},
		{role: types.RoleEditor, relation: EDITOR_RELATION},
		{role: types.RoleUser, relation: MEMBER_RELATION},
		{role: "guest", err: ErrUnknownRole},
	}

	for _, tc := range testCases {
		t.Run(tc.role, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			a, mockClient := newTestAuthorizer(ctrl)
			if tc.err == nil {
				mockClient.EXPECT().WriteTuple(gomock.Any(), "user:u1", tc.relation, "tenant:t1").Return(nil)
			}

			err := a.AssignRole(context.Background(), "t1", "u1", tc.role)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected error %v got %v", tc.err, err)
			}
		})
	}
}

func TestAuthorizer_ChangeRole(t *testing.T) {
	ctrl := gomock.NewController(t)

	a, mockClient := newTestAuthorizer(ctrl)

	gomock.InOrder(
		mockClient.EXPECT().DeleteTuple(gomock.Any(), "user:u1", MEMBER_RELATION, "tenant:t1").Return(nil),
		mockClient.EXPECT().WriteTuple(gomock.Any(), "user:u1", EDITOR_RELATION, "tenant:t1").Return(nil),
	)

	if err := a.ChangeRole(context.Background(), "t1", "u1", types.RoleUser, types.RoleEditor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// same role is a no-op
	if err := a.ChangeRole(context.Background(), "t1", "u1", types.RoleEditor, types.RoleEditor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthorizer_CheckTenantAccess(t *testing.T) {
	ctrl := gomock.NewController(t)

	a, mockClient := newTestAuthorizer(ctrl)
	mockClient.EXPECT().Check(gomock.Any(), "user:u1", CAN_EDIT_PERMISSION, "tenant:t1").Return(true, nil)

	ok, err := a.CheckTenantAccess(context.Background(), "t1", "u1", CAN_EDIT_PERMISSION)
	if err != nil || !ok {
		t.Fatalf("expected access, got %v %v", ok, err)
	}
}

func TestAuthorizer_DeleteTenant(t *testing.T) {
	page := func(token string, users ...string) *client.ClientReadResponse {
		r := &client.ClientReadResponse{ContinuationToken: token}
		for _, u := range users {
			r.Tuples = append(r.Tuples, fga.Tuple{Key: fga.TupleKey{User: u, Relation: MEMBER_RELATION, Object: "tenant:t1"}})
		}
		return r
	}

	testCases := []struct {
		name        string
		setupMocks  func(*MockAuthzClientInterface)
		expectedErr bool
	}{
		{
			name: "two pages",
			setupMocks: func(m *MockAuthzClientInterface) {
				gomock.InOrder(
					m.EXPECT().ReadTuples(gomock.Any(), "", "", "tenant:t1", "").Return(page("next", "user:a"), nil),
					m.EXPECT().DeleteTuples(gomock.Any(), *openfga.NewTuple("user:a", MEMBER_RELATION, "tenant:t1")).Return(nil),
					m.EXPECT().ReadTuples(gomock.Any(), "", "", "tenant:t1", "next").Return(page("", "user:b"), nil),
					m.EXPECT().DeleteTuples(gomock.Any(), *openfga.NewTuple("user:b", MEMBER_RELATION, "tenant:t1")).Return(nil),
				)
			},
		},
		{
			name: "nothing to delete",
			setupMocks: func(m *MockAuthzClientInterface) {
				m.EXPECT().ReadTuples(gomock.Any(), "", "", "tenant:t1", "").Return(page(""), nil)
			},
		},
		{
			name: "read error",
			setupMocks: func(m *MockAuthzClientInterface) {
				m.EXPECT().ReadTuples(gomock.Any(), "", "", "tenant:t1", "").Return(nil, errors.New("boom"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			a, mockClient := newTestAuthorizer(ctrl)
			tc.setupMocks(mockClient)

			err := a.DeleteTenant(context.Background(), "t1")
			if tc.expectedErr != (err != nil) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestAuthorizer_ValidateModel(t *testing.T) {
	testCases := []struct {
		name  string
		equal bool
		err   error
		want  error
	}{
		{name: "matching model", equal: true},
		{name: "drifted model", equal: false, want: ErrInvalidAuthModel},
		{name: "client error", err: errors.New("boom")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			a, mockClient := newTestAuthorizer(ctrl)
			mockClient.EXPECT().CompareModel(gomock.Any(), gomock.Any()).Return(tc.equal, tc.err)

			err := a.ValidateModel(context.Background())
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v got %v", tc.err, err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
		})
	}
}

func TestAuthorizationModelProvider(t *testing.T) {
	model := NewAuthorizationModelProvider("v0").GetModel()

	if model.GetSchemaVersion() != "1.1" {
		t.Fatalf("unexpected schema version %q", model.GetSchemaVersion())
	}

	found := map[string]bool{}
	for _, td := range model.GetTypeDefinitions() {
		found[td.GetType()] = true
	}

	if !found["user"] || !found["tenant"] {
		t.Fatalf("expected user and tenant types, got %v", found)
	}

	if _, err := NewAuthorizationModelProvider("v9").Model(); err == nil {
		t.Fatal("expected error for unknown model version")
	}
}
