// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"context"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

// NoopClient is used when authorization is disabled. Writes succeed without
// effect and every check is denied, so only super admins pass relation checks.
type NoopClient struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *NoopClient) ListObjects(ctx context.Context, user, relation, objectType string) ([]string, error) {
	return []string{}, nil
}

func (c *NoopClient) Check(ctx context.Context, user, relation, object string, tuples ...Tuple) (bool, error) {
	c.logger.Debugf("authorization disabled, denying %s %s %s", user, relation, object)
	return false, nil
}

func (c *NoopClient) ReadModel(ctx context.Context) (*fga.AuthorizationModel, error) {
	return nil, nil
}

func (c *NoopClient) CompareModel(ctx context.Context, model fga.AuthorizationModel) (bool, error) {
	return true, nil
}

func (c *NoopClient) ReadTuples(ctx context.Context, user, relation, object, continuationToken string) (*client.ClientReadResponse, error) {
	return &client.ClientReadResponse{}, nil
}

func (c *NoopClient) WriteTuple(ctx context.Context, user, relation, object string) error {
	return nil
}

func (c *NoopClient) WriteTuples(ctx context.Context, tuples ...Tuple) error {
	return nil
}

func (c *NoopClient) DeleteTuple(ctx context.Context, user, relation, object string) error {
	return nil
}

func (c *NoopClient) DeleteTuples(ctx context.Context, tuples ...Tuple) error {
	return nil
}

func NewNoopClient(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *NoopClient {
	c := new(NoopClient)
	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c
}
