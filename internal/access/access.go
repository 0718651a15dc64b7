// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package access decides whether a principal may run an operation on a
// collection of the resolved tenant, and which extra constraint applies.
package access

import (
	"github.com/canonical/tenant-sites/internal/collections"
	"github.com/canonical/tenant-sites/internal/query"
	"github.com/canonical/tenant-sites/internal/types"
)

type Operation string

const (
	Read   Operation = "read"
	Create Operation = "create"
	Update Operation = "update"
	Delete Operation = "delete"
)

type Reason int

const (
	ReasonNone Reason = iota
	// ReasonUnauthenticated denials are answered with 401.
	ReasonUnauthenticated
	// ReasonForbidden denials are answered with 403.
	ReasonForbidden
)

// Decision is the outcome of Decide. Constraint is ANDed into the tenant
// scoped query of an allowed operation and is empty when nothing is added.
type Decision struct {
	Allowed    bool
	Constraint query.Where
	Reason     Reason
}

func allow(constraint query.Where) Decision {
	return Decision{Allowed: true, Constraint: constraint}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Decide never widens the tenant scope, the caller still filters on tenantID.
func Decide(p *Principal, op Operation, c collections.Collection, tenantID string) Decision {
	if p.Authenticated() && p.SuperAdmin {
		return allow(query.Where{})
	}

	if p.MemberOf(tenantID) {
		return member(p, op, c)
	}

	if op != Read {
		if p.Authenticated() {
			return deny(ReasonForbidden)
		}
		return deny(ReasonUnauthenticated)
	}

	switch c.Read {
	case collections.ReadPublic:
		return allow(query.Where{})
	case collections.ReadPublished:
		return allow(query.Eq(query.FieldStatus, types.StatusPublished))
	}

	if p.Authenticated() {
		return deny(ReasonForbidden)
	}
	return deny(ReasonUnauthenticated)
}

func member(p *Principal, op Operation, c collections.Collection) Decision {
	switch p.Role {
	case types.RoleOwner, types.RoleAdmin, types.RoleEditor:
		return allow(query.Where{})
	case types.RoleUser:
	default:
		return deny(ReasonForbidden)
	}

	if c.OwnerScoped {
		return allow(query.Eq(query.FieldOwner, p.UserID))
	}

	if op != Read {
		return deny(ReasonForbidden)
	}

	if c.Read == collections.ReadPublic || !c.Drafts {
		return allow(query.Where{})
	}

	return allow(query.Eq(query.FieldStatus, types.StatusPublished))
}

// CanManageTenant reports whether p administers tenantID through its membership.
func CanManageTenant(p *Principal, tenantID string) bool {
	if p.Authenticated() && p.SuperAdmin {
		return true
	}

	return p.MemberOf(tenantID) && (p.Role == types.RoleOwner || p.Role == types.RoleAdmin)
}
