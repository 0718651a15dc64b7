// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import "errors"

const TenantsClaim = "tenants"

var (
	ErrInvalidIdentity = errors.New("identity id is required")
	ErrInvalidSession  = errors.New("token hook session has no subject")
)

// KratosIdentity is the payload the after-registration hook posts.
type KratosIdentity struct {
	ID     string       `json:"id"`
	Traits KratosTraits `json:"traits"`
}

type KratosTraits struct {
	Email string `json:"email"`
	// Site is the hostname the identity registered on.
	Site string `json:"site"`
}

type TokenHookSession struct {
	IDToken     map[string]interface{} `json:"id_token,omitempty"`
	AccessToken map[string]interface{} `json:"access_token,omitempty"`
}

// TokenHookResponse is merged by Hydra into the claims of the issued tokens.
type TokenHookResponse struct {
	Session TokenHookSession `json:"session"`
}
