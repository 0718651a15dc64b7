// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
)

type CreateTenantRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,hostname_rfc1123,max=63,excludesall=."`
	AgencyOwner bool   `json:"agency_owner"`
}

// UpdateTenantRequest only changes the fields that are set.
type UpdateTenantRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Slug        *string `json:"slug" validate:"omitempty,hostname_rfc1123,max=63,excludesall=."`
	Enabled     *bool   `json:"enabled"`
	AgencyOwner *bool   `json:"agency_owner"`
}

type CreateDomainRequest struct {
	Hostname string          `json:"hostname" validate:"required,max=253"`
	TenantID string          `json:"tenant_id" validate:"required,uuid"`
	Active   *bool           `json:"active"`
	Features map[string]bool `json:"features"`
}

type UpdateDomainRequest struct {
	Hostname *string         `json:"hostname" validate:"omitempty,max=253"`
	TenantID *string         `json:"tenant_id" validate:"omitempty,uuid"`
	Active   *bool           `json:"active"`
	Features map[string]bool `json:"features"`
}

type MemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=owner admin editor user"`
}

type UpdateMemberRequest struct {
	Role string `json:"role" validate:"required,oneof=owner admin editor user"`
}

type InviteResponse struct {
	Link string `json:"link"`
	Code string `json:"code"`
}
