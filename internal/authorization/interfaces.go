// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"

	"github.com/canonical/tenant-sites/internal/openfga"
)

type AuthorizerInterface interface {
	ListObjects(context.Context, string, string, string) ([]string, error)
	Check(context.Context, string, string, string, ...openfga.Tuple) (bool, error)
	ValidateModel(context.Context) error

	AssignRole(ctx context.Context, tenantID, userID, role string) error
	ChangeRole(ctx context.Context, tenantID, userID, from, to string) error
	RemoveRole(ctx context.Context, tenantID, userID, role string) error

	DeleteTenant(context.Context, string) error
	CheckTenantAccess(ctx context.Context, tenantID, userID, relation string) (bool, error)
}

type AuthzClientInterface interface {
	ListObjects(context.Context, string, string, string) ([]string, error)
	Check(context.Context, string, string, string, ...openfga.Tuple) (bool, error)
	ReadModel(context.Context) (*fga.AuthorizationModel, error)
	CompareModel(context.Context, fga.AuthorizationModel) (bool, error)
	ReadTuples(context.Context, string, string, string, string) (*client.ClientReadResponse, error)
	WriteTuple(ctx context.Context, user, relation, object string) error
	WriteTuples(context.Context, ...openfga.Tuple) error
	DeleteTuple(ctx context.Context, user, relation, object string) error
	DeleteTuples(context.Context, ...openfga.Tuple) error
}
