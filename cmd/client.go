// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/canonical/tenant-sites/internal/identity"
)

// adminClient talks to the administration endpoints of a running server.
type adminClient struct {
	userID string
	rest   *resty.Client
}

// envelope mirrors the body every administration endpoint answers with.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

func newAdminClient(endpoint, userID string, hc *http.Client) *adminClient {
	rest := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetHeader("Accept", "application/json")

	return &adminClient{userID: userID, rest: rest}
}

// do sends in as JSON and decodes the data field of the answer into out.
func (c *adminClient) do(ctx context.Context, method, path string, in, out any) error {
	env := new(envelope)

	req := c.rest.R().
		SetContext(ctx).
		SetResult(env).
		SetError(env)

	if in != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(in)
	}
	if c.userID != "" {
		req.SetHeader(identity.HeaderName, c.userID)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.IsError() {
		if env.Message == "" {
			env.Message = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode(), env.Message)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}

	return json.Unmarshal(env.Data, out)
}

func escape(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return strings.Join(escaped, "/")
}

// getClient builds the client from the persistent flags: a static bearer
// token wins over client credentials, with neither the requests go out
// unauthenticated and rely on --user-id.
func getClient(ctx context.Context) (*adminClient, error) {
	hc := http.DefaultClient

	switch {
	case accessToken != "":
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))
	case clientID != "":
		cfg, err := clientCredentials(ctx)
		if err != nil {
			return nil, err
		}
		hc = cfg.Client(ctx)
	}

	return newAdminClient(httpEndpoint, userID, hc), nil
}

// clientCredentials resolves the token endpoint through discovery when only
// the issuer is known.
func clientCredentials(ctx context.Context) (*clientcredentials.Config, error) {
	if tokenURL == "" {
		if issuerURL == "" {
			return nil, fmt.Errorf("either --token-url or --issuer-url must be provided")
		}

		provider, err := oidc.NewProvider(ctx, issuerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider from issuer: %w", err)
		}
		tokenURL = provider.Endpoint().TokenURL
	}

	return &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}, nil
}
