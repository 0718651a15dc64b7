// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"reflect"
	"testing"

	"github.com/canonical/tenant-sites/internal/collections"
	"github.com/canonical/tenant-sites/internal/query"
	"github.com/canonical/tenant-sites/internal/types"
)

var (
	pages         = collections.Collection{Slug: "pages", Drafts: true, Read: collections.ReadPublished}
	headers       = collections.Collection{Slug: "headers", Read: collections.ReadPublic}
	notifications = collections.Collection{Slug: "notifications", Read: collections.ReadAuthenticated, OwnerScoped: true}

	published = query.Eq(query.FieldStatus, types.StatusPublished)
)

func TestDecide(t *testing.T) {
	superAdmin := &Principal{UserID: "root", SuperAdmin: true}
	editor := &Principal{UserID: "u-editor", TenantID: "t1", Role: types.RoleEditor}
	user := &Principal{UserID: "u-user", TenantID: "t1", Role: types.RoleUser}
	outsider := &Principal{UserID: "u-out", TenantID: "t2", Role: types.RoleOwner}

	tests := []struct {
		name       string
		principal  *Principal
		op         Operation
		collection collections.Collection
		expected   Decision
	}{
		{
			name:       "super admin writes anything",
			principal:  superAdmin,
			op:         Delete,
			collection: notifications,
			expected:   Decision{Allowed: true},
		},
		{
			name:       "anonymous reads published pages only",
			op:         Read,
			collection: pages,
			expected:   Decision{Allowed: true, Constraint: published},
		},
		{
			name:       "anonymous reads public headers unconstrained",
			op:         Read,
			collection: headers,
			expected:   Decision{Allowed: true},
		},
		{
			name:       "anonymous cannot read authenticated collections",
			op:         Read,
			collection: notifications,
			expected:   Decision{Reason: ReasonUnauthenticated},
		},
		{
			name:       "anonymous cannot write",
			op:         Create,
			collection: headers,
			expected:   Decision{Reason: ReasonUnauthenticated},
		},
		{
			name:       "editor has full crud",
			principal:  editor,
			op:         Update,
			collection: pages,
			expected:   Decision{Allowed: true},
		},
		{
			name:       "editor reads drafts",
			principal:  editor,
			op:         Read,
			collection: pages,
			expected:   Decision{Allowed: true},
		},
		{
			name:       "user reads published pages",
			principal:  user,
			op:         Read,
			collection: pages,
			expected:   Decision{Allowed: true, Constraint: published},
		},
		{
			name:       "user cannot write pages",
			principal:  user,
			op:         Create,
			collection: pages,
			expected:   Decision{Reason: ReasonForbidden},
		},
		{
			name:       "user is limited to own notifications",
			principal:  user,
			op:         Update,
			collection: notifications,
			expected:   Decision{Allowed: true, Constraint: query.Eq(query.FieldOwner, "u-user")},
		},
		{
			name:       "member of another tenant reads like anonymous",
			principal:  outsider,
			op:         Read,
			collection: pages,
			expected:   Decision{Allowed: true, Constraint: published},
		},
		{
			name:       "member of another tenant cannot write",
			principal:  outsider,
			op:         Create,
			collection: pages,
			expected:   Decision{Reason: ReasonForbidden},
		},
		{
			name:       "authenticated non member cannot read authenticated collections",
			principal:  outsider,
			op:         Read,
			collection: notifications,
			expected:   Decision{Reason: ReasonForbidden},
		},
		{
			name:       "unknown role is denied",
			principal:  &Principal{UserID: "u", TenantID: "t1", Role: "guest"},
			op:         Read,
			collection: pages,
			expected:   Decision{Reason: ReasonForbidden},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := Decide(test.principal, test.op, test.collection, "t1")

			if !reflect.DeepEqual(d, test.expected) {
				t.Fatalf("expected %+v got %+v", test.expected, d)
			}
		})
	}
}

func TestDecideOnEveryDefaultCollection(t *testing.T) {
	registry := collections.Default()

	for _, slug := range registry.Slugs() {
		c, _ := registry.Get(slug)

		d := Decide(nil, Read, c, "t1")
		if c.Read == collections.ReadAuthenticated && d.Allowed {
			t.Fatalf("%s: anonymous read allowed", slug)
		}

		for _, op := range []Operation{Create, Update, Delete} {
			if Decide(nil, op, c, "t1").Allowed {
				t.Fatalf("%s: anonymous %s allowed", slug, op)
			}
		}
	}
}

func TestCanManageTenant(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		expected  bool
	}{
		{name: "anonymous", expected: false},
		{name: "super admin", principal: &Principal{UserID: "root", SuperAdmin: true}, expected: true},
		{name: "owner", principal: &Principal{UserID: "a", TenantID: "t1", Role: types.RoleOwner}, expected: true},
		{name: "admin", principal: &Principal{UserID: "a", TenantID: "t1", Role: types.RoleAdmin}, expected: true},
		{name: "editor", principal: &Principal{UserID: "a", TenantID: "t1", Role: types.RoleEditor}, expected: false},
		{name: "owner elsewhere", principal: &Principal{UserID: "a", TenantID: "t2", Role: types.RoleOwner}, expected: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := CanManageTenant(test.principal, "t1"); got != test.expected {
				t.Fatalf("expected %v got %v", test.expected, got)
			}
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	if p := PrincipalFromContext(context.Background()); p != nil {
		t.Fatalf("expected anonymous principal, got %+v", p)
	}

	p := &Principal{UserID: "u"}
	if got := PrincipalFromContext(WithPrincipal(context.Background(), p)); got != p {
		t.Fatalf("expected %+v got %+v", p, got)
	}
}
