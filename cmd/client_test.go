// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/canonical/tenant-sites/internal/http/types"
	"github.com/canonical/tenant-sites/internal/identity"
	model "github.com/canonical/tenant-sites/internal/types"
)

func TestAdminClientDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v0/admin/tenants/t1":
			if r.Header.Get(identity.HeaderName) != "root" {
				types.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			types.WriteResponse(w, http.StatusOK, "tenant", &model.Tenant{ID: "t1", Slug: "acme"})
		default:
			types.WriteError(w, http.StatusNotFound, "not found")
		}
	}))
	defer srv.Close()

	c := newAdminClient(srv.URL, "root", srv.Client())

	tenant := new(model.Tenant)
	if err := c.do(context.Background(), http.MethodGet, "/api/v0/admin/tenants/t1", nil, tenant); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tenant.Slug != "acme" {
		t.Fatalf("expected slug acme, got %q", tenant.Slug)
	}

	err := c.do(context.Background(), http.MethodGet, "/api/v0/admin/tenants/t2", nil, tenant)
	if err == nil || !strings.Contains(err.Error(), "404 not found") {
		t.Fatalf("expected the error message of the server, got %v", err)
	}

	c.userID = ""
	err = c.do(context.Background(), http.MethodGet, "/api/v0/admin/tenants/t1", nil, tenant)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestFeatureFlags(t *testing.T) {
	got := featureFlags([]string{"blog", "shop=false", "events=true"})
	expected := map[string]bool{"blog": true, "shop": false, "events": true}

	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

func TestEscape(t *testing.T) {
	if got := escape("t 1", "a/b"); got != "t%201/a%2Fb" {
		t.Fatalf("unexpected path %q", got)
	}
}
