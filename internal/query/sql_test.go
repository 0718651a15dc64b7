// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package query

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestColumn(t *testing.T) {
	tests := []struct {
		field    string
		expected string
		err      error
	}{
		{field: "tenant", expected: "tenant_id"},
		{field: "owner", expected: "owner_id"},
		{field: "createdAt", expected: "created_at"},
		{field: "color", expected: "data->>'color'"},
		{field: "hero.image.url", expected: "data #>> '{hero,image,url}'"},
		{field: "a'b", err: ErrInvalidField},
		{field: "", err: ErrInvalidField},
	}

	for _, test := range tests {
		t.Run(test.field, func(t *testing.T) {
			col, err := Column(test.field)

			if !errors.Is(err, test.err) {
				t.Fatalf("expected error %v got %v", test.err, err)
			}

			if col != test.expected {
				t.Fatalf("expected %q got %q", test.expected, col)
			}
		})
	}
}

func TestToSql(t *testing.T) {
	tests := []struct {
		name     string
		where    Where
		sql      string
		args     []interface{}
		contains []string
	}{
		{
			name:  "empty where",
			where: Where{},
			sql:   "(1=1)",
			args:  []interface{}{},
		},
		{
			name:  "tenant scoped equality",
			where: mustForTenant(t, Eq(FieldSlug, "home"), "t1"),
			sql:   "(tenant_id = ? AND (slug = ?))",
			args:  []interface{}{"t1", "home"},
		},
		{
			name: "or is nested below the tenant filter",
			where: mustForTenant(t, Or(
				Eq(FieldTenant, "t2"),
				Eq(FieldSlug, "home"),
			), "t1"),
			contains: []string{"tenant_id = ? AND", "OR"},
			args:     []interface{}{"t1", "t2", "home"},
		},
		{
			name: "exists and in",
			where: Where{Conditions: []Condition{
				{Field: "hero", Op: Exists, Value: true},
				{Field: FieldStatus, Op: In, Value: []string{"draft", "published"}},
			}},
			sql:  "(data->>'hero' IS NOT NULL AND status IN (?,?))",
			args: []interface{}{"draft", "published"},
		},
		{
			name: "contains escapes wildcards",
			where: Where{Conditions: []Condition{
				{Field: "title", Op: Contains, Value: "50%_off"},
			}},
			contains: []string{"title ILIKE ?"},
			args:     []interface{}{`%50\%\_off%`},
		},
		{
			name: "like matches every word",
			where: Where{Conditions: []Condition{
				{Field: "title", Op: Like, Value: "hello world"},
			}},
			contains: []string{"title ILIKE ? AND title ILIKE ?"},
			args:     []interface{}{"%hello%", "%world%"},
		},
		{
			name: "range",
			where: Where{Conditions: []Condition{
				{Field: "createdAt", Op: GreaterThanEqual, Value: "2024-01-01"},
				{Field: "createdAt", Op: LessThan, Value: "2025-01-01"},
			}},
			sql:  "(created_at >= ? AND created_at < ?)",
			args: []interface{}{"2024-01-01", "2025-01-01"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, err := ToSql(test.where)
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}

			sql, args, err := s.ToSql()
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}

			if test.sql != "" && sql != test.sql {
				t.Fatalf("expected %q got %q", test.sql, sql)
			}

			for _, c := range test.contains {
				if !strings.Contains(sql, c) {
					t.Fatalf("expected %q to contain %q", sql, c)
				}
			}

			if len(args) == 0 && len(test.args) == 0 {
				return
			}

			if !reflect.DeepEqual(args, test.args) {
				t.Fatalf("expected args %v got %v", test.args, args)
			}
		})
	}
}

func TestToSqlRejectsInvalidTree(t *testing.T) {
	_, err := ToSql(Where{Conditions: []Condition{{Field: "x", Op: "regex", Value: "a"}}})
	if !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator got %v", err)
	}

	_, err = ToSql(Where{Conditions: []Condition{{Field: "x", Op: Exists, Value: "yes"}}})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue got %v", err)
	}
}

func TestOrderBy(t *testing.T) {
	clauses, err := OrderBy("")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !reflect.DeepEqual(clauses, []string{"created_at DESC", "id ASC"}) {
		t.Fatalf("unexpected default order %v", clauses)
	}

	clauses, err = OrderBy("title,-rank")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !reflect.DeepEqual(clauses, []string{"title ASC", "data->>'rank' DESC", "id ASC"}) {
		t.Fatalf("unexpected order %v", clauses)
	}

	if _, err := OrderBy("-"); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField got %v", err)
	}
}

func mustForTenant(t *testing.T, w Where, tenantID string) Where {
	t.Helper()

	scoped, err := ForTenant(w, tenantID)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	return scoped
}
