// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package query holds the predicate tree used to filter tenant scoped
// documents and its translation to SQL.
package query

import (
	"errors"
	"regexp"
	"strings"
)

type Operator string

const (
	Equals           Operator = "equals"
	NotEquals        Operator = "not_equals"
	In               Operator = "in"
	NotIn            Operator = "not_in"
	Like             Operator = "like"
	Contains         Operator = "contains"
	Exists           Operator = "exists"
	GreaterThan      Operator = "greater_than"
	GreaterThanEqual Operator = "greater_than_equal"
	LessThan         Operator = "less_than"
	LessThanEqual    Operator = "less_than_equal"
)

const (
	FieldTenant = "tenant"
	FieldOwner  = "owner"
	FieldStatus = "status"
	FieldSlug   = "slug"
)

var (
	ErrMissingTenant   = errors.New("tenant id is required to scope a query")
	ErrInvalidField    = errors.New("invalid field name")
	ErrInvalidOperator = errors.New("invalid operator")
	ErrInvalidValue    = errors.New("invalid value")
)

var fieldPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*(\.[a-zA-Z0-9_-]+)*$`)

var operators = map[Operator]struct{}{
	Equals:           {},
	NotEquals:        {},
	In:               {},
	NotIn:            {},
	Like:             {},
	Contains:         {},
	Exists:           {},
	GreaterThan:      {},
	GreaterThanEqual: {},
	LessThan:         {},
	LessThanEqual:    {},
}

type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Where matches a document when every condition and every And clause match,
// and, if Or is not empty, at least one of the Or clauses matches.
type Where struct {
	Conditions []Condition
	And        []Where
	Or         []Where
}

func (w Where) IsEmpty() bool {
	return len(w.Conditions) == 0 && len(w.And) == 0 && len(w.Or) == 0
}

// Validate checks field names and operators across the whole tree.
func (w Where) Validate() error {
	for _, c := range w.Conditions {
		if !ValidField(c.Field) {
			return ErrInvalidField
		}
		if _, ok := operators[c.Op]; !ok {
			return ErrInvalidOperator
		}
	}

	for _, sub := range append(append([]Where{}, w.And...), w.Or...) {
		if err := sub.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func ValidField(field string) bool {
	return fieldPattern.MatchString(field)
}

func ValidOperator(op Operator) bool {
	_, ok := operators[op]
	return ok
}

func Eq(field string, value any) Where {
	return Where{Conditions: []Condition{{Field: field, Op: Equals, Value: value}}}
}

// And combines clauses, empty clauses are dropped.
func And(ws ...Where) Where {
	out := Where{}
	for _, w := range ws {
		if w.IsEmpty() {
			continue
		}
		out.And = append(out.And, w)
	}
	if len(out.And) == 1 {
		return out.And[0]
	}
	return out
}

func Or(ws ...Where) Where {
	return Where{Or: ws}
}

// ForTenant ANDs the tenant equality filter into w.
// A missing tenant never widens a query, it is an error.
func ForTenant(w Where, tenantID string) (Where, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return Where{}, ErrMissingTenant
	}

	return Where{
		Conditions: []Condition{{Field: FieldTenant, Op: Equals, Value: tenantID}},
		And:        nonEmpty(w),
	}, nil
}

func nonEmpty(w Where) []Where {
	if w.IsEmpty() {
		return nil
	}
	return []Where{w}
}
