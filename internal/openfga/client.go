// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

// Client wraps the OpenFGA SDK with the narrow set of calls the service makes.
type Client struct {
	c *client.OpenFgaClient

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Client) ListObjects(ctx context.Context, user, relation, objectType string) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.ListObjects")
	defer span.End()

	r, err := c.c.ListObjects(ctx).Body(
		client.ClientListObjectsRequest{
			User:     user,
			Relation: relation,
			Type:     objectType,
		},
	).Execute()
	if err != nil {
		c.logger.Errorf("issues performing list operation: %s", err)
		return nil, err
	}

	return r.GetObjects(), nil
}

func (c *Client) Check(ctx context.Context, user, relation, object string, tuples ...Tuple) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.Check")
	defer span.End()

	body := client.ClientCheckRequest{
		User:     user,
		Relation: relation,
		Object:   object,
	}

	if len(tuples) > 0 {
		contextual := make([]client.ClientContextualTupleKey, 0, len(tuples))
		for _, t := range tuples {
			contextual = append(contextual, t.toClientTupleKey())
		}
		body.ContextualTuples = contextual
	}

	r, err := c.c.Check(ctx).Body(body).Execute()
	if err != nil {
		c.logger.Errorf("issues performing check operation: %s", err)
		return false, err
	}

	return r.GetAllowed(), nil
}

func (c *Client) ReadModel(ctx context.Context) (*fga.AuthorizationModel, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.ReadModel")
	defer span.End()

	r, err := c.c.ReadAuthorizationModel(ctx).Execute()
	if err != nil {
		c.logger.Errorf("issues performing read model operation: %s", err)
		return nil, err
	}

	return r.AuthorizationModel, nil
}

// CompareModel reports whether the type definitions of the configured model
// match the ones of model.
func (c *Client) CompareModel(ctx context.Context, model fga.AuthorizationModel) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.CompareModel")
	defer span.End()

	current, err := c.ReadModel(ctx)
	if err != nil {
		return false, err
	}

	if current == nil || current.GetSchemaVersion() != model.GetSchemaVersion() {
		return false, nil
	}

	a, err := normalize(current.GetTypeDefinitions())
	if err != nil {
		return false, err
	}

	b, err := normalize(model.GetTypeDefinitions())
	if err != nil {
		return false, err
	}

	return reflect.DeepEqual(a, b), nil
}

func normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) WriteModel(ctx context.Context, model *client.ClientWriteAuthorizationModelRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteModel")
	defer span.End()

	r, err := c.c.WriteAuthorizationModel(ctx).Body(*model).Execute()
	if err != nil {
		c.logger.Errorf("issues performing write model operation: %s", err)
		return "", err
	}

	return r.GetAuthorizationModelId(), nil
}

func (c *Client) CreateStore(ctx context.Context, name string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.CreateStore")
	defer span.End()

	r, err := c.c.CreateStore(ctx).Body(client.ClientCreateStoreRequest{Name: name}).Execute()
	if err != nil {
		c.logger.Errorf("issues performing create store operation: %s", err)
		return "", err
	}

	return r.GetId(), nil
}

func (c *Client) ReadTuples(ctx context.Context, user, relation, object, continuationToken string) (*client.ClientReadResponse, error) {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.ReadTuples")
	defer span.End()

	body := client.ClientReadRequest{}
	if user != "" {
		body.User = fga.PtrString(user)
	}
	if relation != "" {
		body.Relation = fga.PtrString(relation)
	}
	if object != "" {
		body.Object = fga.PtrString(object)
	}

	options := client.ClientReadOptions{}
	if continuationToken != "" {
		options.ContinuationToken = fga.PtrString(continuationToken)
	}

	r, err := c.c.Read(ctx).Body(body).Options(options).Execute()
	if err != nil {
		c.logger.Errorf("issues performing read operation: %s", err)
		return nil, err
	}

	return r, nil
}

func (c *Client) WriteTuple(ctx context.Context, user, relation, object string) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteTuple")
	defer span.End()

	return c.WriteTuples(ctx, *NewTuple(user, relation, object))
}

func (c *Client) WriteTuples(ctx context.Context, tuples ...Tuple) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.WriteTuples")
	defer span.End()

	if len(tuples) == 0 {
		return nil
	}

	body := make(client.ClientWriteTuplesBody, 0, len(tuples))
	for _, t := range tuples {
		body = append(body, t.toClientTupleKey())
	}

	if _, err := c.c.WriteTuples(ctx).Body(body).Execute(); err != nil {
		c.logger.Errorf("issues performing write operation: %s", err)
		return err
	}

	return nil
}

func (c *Client) DeleteTuple(ctx context.Context, user, relation, object string) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.DeleteTuple")
	defer span.End()

	return c.DeleteTuples(ctx, *NewTuple(user, relation, object))
}

func (c *Client) DeleteTuples(ctx context.Context, tuples ...Tuple) error {
	ctx, span := c.tracer.Start(ctx, "openfga.Client.DeleteTuples")
	defer span.End()

	if len(tuples) == 0 {
		return nil
	}

	body := make(client.ClientDeleteTuplesBody, 0, len(tuples))
	for _, t := range tuples {
		body = append(body, t.toWithoutCondition())
	}

	if _, err := c.c.DeleteTuples(ctx).Body(body).Execute(); err != nil {
		c.logger.Errorf("issues performing delete operation: %s", err)
		return err
	}

	return nil
}

// NewClient builds the SDK client, an invalid configuration is fatal.
func NewClient(cfg *Config) *Client {
	c := new(Client)

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		cfg.Logger.Fatalf("invalid openfga configuration: %s", err)
	}

	fgaConfig := &client.ClientConfiguration{
		ApiUrl:               fmt.Sprintf("%s://%s", cfg.ApiScheme, cfg.ApiHost),
		StoreId:              cfg.StoreID,
		AuthorizationModelId: cfg.AuthModelID,
		Credentials: &credentials.Credentials{
			Method: credentials.CredentialsMethodApiToken,
			Config: &credentials.Config{
				ApiToken: cfg.ApiToken,
			},
		},
		Debug: cfg.Debug,
	}

	sdk, err := client.NewSdkClient(fgaConfig)
	if err != nil {
		cfg.Logger.Fatalf("issues setting up openfga client %s", err)
	}

	c.c = sdk
	c.tracer = cfg.Tracer
	c.monitor = cfg.Monitor
	c.logger = cfg.Logger

	return c
}
