// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package site

import (
	"errors"

	"github.com/canonical/tenant-sites/internal/types"
	"github.com/canonical/tenant-sites/pkg/resolver"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Site is what a frontend needs to render the chrome of the resolved tenant.
type Site struct {
	Tenant   Tenant          `json:"tenant"`
	Source   resolver.Source `json:"source"`
	Hostname string          `json:"hostname"`
	Features map[string]bool `json:"features"`
	Header   *types.Document `json:"header"`
	Footer   *types.Document `json:"footer"`
}

type SwitchRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid"`
}
