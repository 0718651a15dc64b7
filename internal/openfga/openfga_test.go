// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"context"
	"testing"

	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

func TestTupleConversions(t *testing.T) {
	tuple := NewTuple("user:u1", "owner", "tenant:t1")

	u, r, o := tuple.Values()
	if u != "user:u1" || r != "owner" || o != "tenant:t1" {
		t.Fatalf("unexpected values %s %s %s", u, r, o)
	}

	key := tuple.toClientTupleKey()
	if key.User != u || key.Relation != r || key.Object != o {
		t.Fatalf("unexpected tuple key %+v", key)
	}

	plain := tuple.toWithoutCondition()
	if plain.User != u || plain.Relation != r || plain.Object != o {
		t.Fatalf("unexpected tuple key %+v", plain)
	}
}

func TestNoopClientDenies(t *testing.T) {
	logger := logging.NewNoopLogger()
	c := NewNoopClient(tracing.NewNoopTracer(), monitoring.NewNoopMonitor("", logger), logger)

	allowed, err := c.Check(context.Background(), "user:u1", "can_edit", "tenant:t1")
	if err != nil || allowed {
		t.Fatalf("expected denial, got %v %v", allowed, err)
	}

	if err := c.WriteTuple(context.Background(), "user:u1", "owner", "tenant:t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := c.ReadTuples(context.Background(), "", "", "tenant:t1", "")
	if err != nil || len(r.Tuples) != 0 {
		t.Fatalf("expected no tuples, got %+v %v", r, err)
	}
}
