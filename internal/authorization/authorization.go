// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"fmt"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/openfga"
	"github.com/canonical/tenant-sites/internal/tracing"
)

var ErrInvalidAuthModel = fmt.Errorf("invalid authorization model schema")

var _ AuthorizerInterface = (*Authorizer)(nil)

type Authorizer struct {
	client AuthzClientInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) Check(ctx context.Context, user string, relation string, object string, contextualTuples ...openfga.Tuple) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.Check")
	defer span.End()

	return a.client.Check(ctx, user, relation, object, contextualTuples...)
}

func (a *Authorizer) ListObjects(ctx context.Context, user string, relation string, objectType string) ([]string, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.ListObjects")
	defer span.End()

	return a.client.ListObjects(ctx, user, relation, objectType)
}

func (a *Authorizer) ValidateModel(ctx context.Context) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.ValidateModel")
	defer span.End()

	model := *NewAuthorizationModelProvider("v0").GetModel()

	eq, err := a.client.CompareModel(ctx, model)
	if err != nil {
		return err
	}
	if !eq {
		return ErrInvalidAuthModel
	}
	return nil
}

// AssignRole writes the relation mirroring role on the tenant.
func (a *Authorizer) AssignRole(ctx context.Context, tenantID, userID, role string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.AssignRole")
	defer span.End()

	relation, err := RoleRelation(role)
	if err != nil {
		return err
	}

	return a.client.WriteTuple(ctx, UserTuple(userID), relation, TenantTuple(tenantID))
}

func (a *Authorizer) ChangeRole(ctx context.Context, tenantID, userID, from, to string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.ChangeRole")
	defer span.End()

	if from == to {
		return nil
	}

	if err := a.RemoveRole(ctx, tenantID, userID, from); err != nil {
		return err
	}

	return a.AssignRole(ctx, tenantID, userID, to)
}

func (a *Authorizer) RemoveRole(ctx context.Context, tenantID, userID, role string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.RemoveRole")
	defer span.End()

	relation, err := RoleRelation(role)
	if err != nil {
		return err
	}

	return a.client.DeleteTuple(ctx, UserTuple(userID), relation, TenantTuple(tenantID))
}

func (a *Authorizer) CheckTenantAccess(ctx context.Context, tenantID, userID, relation string) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.CheckTenantAccess")
	defer span.End()

	return a.Check(ctx, UserTuple(userID), relation, TenantTuple(tenantID))
}

// DeleteTenant removes every tuple pointing at the tenant, page by page.
func (a *Authorizer) DeleteTenant(ctx context.Context, tenantID string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.DeleteTenant")
	defer span.End()

	cToken := ""
	for {
		r, err := a.client.ReadTuples(ctx, "", "", TenantTuple(tenantID), cToken)
		if err != nil {
			a.logger.Errorf("error when retrieving tuples: %s", err)
			return err
		}
		if len(r.Tuples) == 0 {
			break
		}

		ts := make([]openfga.Tuple, len(r.Tuples))
		for i, t := range r.Tuples {
			ts[i] = *openfga.NewTuple(t.Key.User, t.Key.Relation, t.Key.Object)
		}
		if err := a.client.DeleteTuples(ctx, ts...); err != nil {
			a.logger.Errorf("error when deleting tuples %v: %s", ts, err)
			return err
		}

		if r.ContinuationToken == "" {
			break
		}
		cToken = r.ContinuationToken
	}
	return nil
}

func NewAuthorizer(client AuthzClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	authorizer := new(Authorizer)
	authorizer.client = client
	authorizer.tracer = tracer
	authorizer.monitor = monitor
	authorizer.logger = logger

	return authorizer
}
