// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var columns = map[string]string{
	"id":         "id",
	"collection": "collection",
	FieldTenant:  "tenant_id",
	FieldOwner:   "owner_id",
	FieldStatus:  "status",
	FieldSlug:    "slug",
	"title":      "title",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

// Column returns the SQL expression a field is stored under. Fields outside
// the fixed column set live in the jsonb data column.
func Column(field string) (string, error) {
	if !ValidField(field) {
		return "", ErrInvalidField
	}

	if c, ok := columns[field]; ok {
		return c, nil
	}

	if !strings.Contains(field, ".") {
		return fmt.Sprintf("data->>'%s'", field), nil
	}

	return fmt.Sprintf("data #>> '{%s}'", strings.ReplaceAll(field, ".", ",")), nil
}

// ToSql compiles w into a squirrel predicate. An empty tree compiles to a
// tautology, callers are expected to scope it with ForTenant first.
func ToSql(w Where) (sq.Sqlizer, error) {
	parts := sq.And{}

	for _, c := range w.Conditions {
		s, err := condition(c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}

	for _, sub := range w.And {
		s, err := ToSql(sub)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}

	if len(w.Or) > 0 {
		or := sq.Or{}
		for _, sub := range w.Or {
			s, err := ToSql(sub)
			if err != nil {
				return nil, err
			}
			or = append(or, s)
		}
		parts = append(parts, or)
	}

	return parts, nil
}

func condition(c Condition) (sq.Sqlizer, error) {
	col, err := Column(c.Field)
	if err != nil {
		return nil, err
	}

	switch c.Op {
	case Equals:
		return sq.Eq{col: c.Value}, nil
	case NotEquals:
		return sq.NotEq{col: c.Value}, nil
	case In:
		return sq.Eq{col: list(c.Value)}, nil
	case NotIn:
		return sq.NotEq{col: list(c.Value)}, nil
	case GreaterThan:
		return sq.Gt{col: c.Value}, nil
	case GreaterThanEqual:
		return sq.GtOrEq{col: c.Value}, nil
	case LessThan:
		return sq.Lt{col: c.Value}, nil
	case LessThanEqual:
		return sq.LtOrEq{col: c.Value}, nil
	case Contains:
		return sq.ILike{col: "%" + escapeLike(fmt.Sprint(c.Value)) + "%"}, nil
	case Like:
		// every word has to appear, in any order
		words := strings.Fields(fmt.Sprint(c.Value))
		if len(words) == 0 {
			return nil, ErrInvalidValue
		}
		and := sq.And{}
		for _, word := range words {
			and = append(and, sq.ILike{col: "%" + escapeLike(word) + "%"})
		}
		return and, nil
	case Exists:
		exists, ok := c.Value.(bool)
		if !ok {
			return nil, ErrInvalidValue
		}
		if exists {
			return sq.NotEq{col: nil}, nil
		}
		return sq.Eq{col: nil}, nil
	}

	return nil, ErrInvalidOperator
}

func list(v any) any {
	switch vv := v.(type) {
	case []string, []any:
		return vv
	case string:
		return strings.Split(vv, ",")
	}
	return []any{v}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
