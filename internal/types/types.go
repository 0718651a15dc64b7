// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"time"
)

type Tenant struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	AgencyOwner bool      `db:"agency_owner" json:"agency_owner"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Enabled     bool      `db:"enabled" json:"enabled"`
}

// Domain maps a normalized hostname to the tenant serving it.
type Domain struct {
	ID        string          `db:"id" json:"id"`
	Hostname  string          `db:"hostname" json:"hostname"`
	TenantID  string          `db:"tenant_id" json:"tenant_id"`
	Active    bool            `db:"active" json:"active"`
	Features  map[string]bool `db:"features" json:"features"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type Membership struct {
	ID               string    `db:"id" json:"id"`
	TenantID         string    `db:"tenant_id" json:"tenant_id"`
	KratosIdentityID string    `db:"kratos_identity_id" json:"user_id"`
	Role             string    `db:"role" json:"role"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type TenantUser struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Document is the storage shape shared by every tenant scoped collection.
type Document struct {
	ID         string          `db:"id" json:"id"`
	Collection string          `db:"collection" json:"collection"`
	TenantID   string          `db:"tenant_id" json:"tenant"`
	OwnerID    string          `db:"owner_id" json:"owner,omitempty"`
	Status     string          `db:"status" json:"status"`
	Slug       string          `db:"slug" json:"slug,omitempty"`
	Title      string          `db:"title" json:"title,omitempty"`
	Data       json.RawMessage `db:"data" json:"data"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// DocumentPatch holds the fields of a partial document update, nil fields
// are left untouched and Data is merged into the stored object.
type DocumentPatch struct {
	Status *string
	Slug   *string
	Title  *string
	Data   json.RawMessage
}

// Page is a window of documents in the shape the CMS clients expect.
type Page struct {
	Docs        []*Document `json:"docs"`
	TotalDocs   uint64      `json:"totalDocs"`
	Limit       uint64      `json:"limit"`
	Page        uint64      `json:"page"`
	TotalPages  uint64      `json:"totalPages"`
	HasPrevPage bool        `json:"hasPrevPage"`
	HasNextPage bool        `json:"hasNextPage"`
}

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"

	StatusDraft     = "draft"
	StatusPublished = "published"
)

// ValidRole reports whether role is one of the membership roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleEditor, RoleUser:
		return true
	}
	return false
}
