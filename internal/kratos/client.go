// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package kratos wraps the Kratos admin API calls used to provision members.
package kratos

import (
	"context"
	"fmt"
	"net/http"

	ory "github.com/ory/client-go"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

const (
	// SchemaID is the identity schema carrying the email and site traits.
	SchemaID = "default"

	TraitEmail = "email"
	TraitSite  = "site"
)

// Identity is the part of a Kratos identity the service reads.
type Identity struct {
	ID    string
	Email string
	// Site is the hostname the identity registered on, empty for identities
	// provisioned by an administrator.
	Site string
}

var _ ClientInterface = (*Client)(nil)

type Client struct {
	client *ory.APIClient

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// GetIdentityIDByEmail returns an empty id when no identity uses email.
func (c *Client) GetIdentityIDByEmail(ctx context.Context, email string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.GetIdentityIDByEmail")
	defer span.End()

	// empty page token works around https://github.com/ory/sdk/issues/461
	ids, r, err := c.client.IdentityAPI.ListIdentities(ctx).CredentialsIdentifier(email).PageToken("").Execute()
	if err != nil {
		if r != nil && r.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to list identities: %w", err)
	}

	if len(ids) == 0 {
		return "", nil
	}

	return ids[0].Id, nil
}

// CreateIdentity creates a password-less identity, site may be empty.
func (c *Client) CreateIdentity(ctx context.Context, email, site string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.CreateIdentity")
	defer span.End()

	traits := map[string]interface{}{TraitEmail: email}
	if site != "" {
		traits[TraitSite] = site
	}

	body := ory.CreateIdentityBody{
		SchemaId: SchemaID,
		Traits:   traits,
	}

	identity, _, err := c.client.IdentityAPI.CreateIdentity(ctx).CreateIdentityBody(body).Execute()
	if err != nil {
		return "", fmt.Errorf("failed to create identity: %w", err)
	}

	return identity.Id, nil
}

func (c *Client) GetIdentity(ctx context.Context, id string) (*Identity, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.GetIdentity")
	defer span.End()

	identity, _, err := c.client.IdentityAPI.GetIdentity(ctx, id).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return FromTraits(identity.Id, identity.Traits), nil
}

func (c *Client) CreateRecoveryLink(ctx context.Context, identityID string, expiresIn string) (string, string, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.CreateRecoveryLink")
	defer span.End()

	body := ory.CreateRecoveryCodeForIdentityBody{
		IdentityId: identityID,
		ExpiresIn:  &expiresIn,
	}

	code, _, err := c.client.IdentityAPI.CreateRecoveryCodeForIdentity(ctx).CreateRecoveryCodeForIdentityBody(body).Execute()
	if err != nil {
		return "", "", fmt.Errorf("failed to create recovery code: %w", err)
	}

	return code.RecoveryLink, code.RecoveryCode, nil
}

// FromTraits reads the email and site traits of an identity, missing or
// mistyped traits are left empty.
func FromTraits(id string, traits interface{}) *Identity {
	i := &Identity{ID: id}

	m, ok := traits.(map[string]interface{})
	if !ok {
		return i
	}

	i.Email, _ = m[TraitEmail].(string)
	i.Site, _ = m[TraitSite].(string)

	return i
}

func NewClient(kratosAdminURL string, httpClient *http.Client, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	conf := ory.NewConfiguration()
	conf.Servers = ory.ServerConfigurations{{URL: kratosAdminURL}}
	if httpClient != nil {
		conf.HTTPClient = httpClient
	}

	c := new(Client)
	c.client = ory.NewAPIClient(conf)

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c
}
