// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	wherePrefix   = "where"
	maxDepth      = 4
	maxConditions = 64
)

type node struct {
	conds []Condition
	and   map[int]*node
	or    map[int]*node
}

func newNode() *node {
	return &node{and: map[int]*node{}, or: map[int]*node{}}
}

// Parse reads a where clause from bracketed query parameters, for example
//
//	where[status][equals]=published
//	where[or][0][slug][equals]=home&where[or][1][slug][equals]=index
//
// Parameters not starting with "where[" are ignored.
func Parse(values url.Values) (Where, error) {
	root := newNode()
	count := 0

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path, ok := splitPath(key)
		if !ok || path[0] != wherePrefix {
			continue
		}

		count++
		if count > maxConditions {
			return Where{}, fmt.Errorf("too many conditions: %w", ErrInvalidValue)
		}

		if err := root.insert(path[1:], values[key], 0); err != nil {
			return Where{}, fmt.Errorf("parameter %q: %w", key, err)
		}
	}

	w := root.build()
	return w, w.Validate()
}

// splitPath turns "where[a][b]" into ["where", "a", "b"].
func splitPath(key string) ([]string, bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return nil, false
	}

	path := []string{key[:open]}
	rest := key[open:]

	for rest != "" {
		if rest[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, false
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}

	return path, true
}

func (n *node) insert(path []string, values []string, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("nesting too deep: %w", ErrInvalidValue)
	}

	if len(path) == 0 {
		return ErrInvalidField
	}

	switch path[0] {
	case "and", "or":
		if len(path) < 3 {
			return ErrInvalidField
		}
		idx, err := strconv.Atoi(path[1])
		if err != nil || idx < 0 || idx >= maxConditions {
			return fmt.Errorf("bad %s index %q: %w", path[0], path[1], ErrInvalidValue)
		}

		group := n.and
		if path[0] == "or" {
			group = n.or
		}
		child, ok := group[idx]
		if !ok {
			child = newNode()
			group[idx] = child
		}
		return child.insert(path[2:], values, depth+1)
	}

	if len(path) != 2 {
		return ErrInvalidOperator
	}

	field, op := path[0], Operator(path[1])
	if !ValidField(field) {
		return ErrInvalidField
	}
	if !ValidOperator(op) {
		return ErrInvalidOperator
	}

	value, err := parseValue(op, values)
	if err != nil {
		return err
	}

	n.conds = append(n.conds, Condition{Field: field, Op: op, Value: value})
	return nil
}

func parseValue(op Operator, values []string) (any, error) {
	if len(values) == 0 {
		return nil, ErrInvalidValue
	}

	switch op {
	case In, NotIn:
		var out []string
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
		if len(out) == 0 {
			return nil, ErrInvalidValue
		}
		return out, nil
	case Exists:
		b, err := strconv.ParseBool(values[0])
		if err != nil {
			return nil, ErrInvalidValue
		}
		return b, nil
	}

	return values[0], nil
}

func (n *node) build() Where {
	w := Where{Conditions: n.conds}

	for _, idx := range sortedKeys(n.and) {
		if sub := n.and[idx].build(); !sub.IsEmpty() {
			w.And = append(w.And, sub)
		}
	}
	for _, idx := range sortedKeys(n.or) {
		if sub := n.or[idx].build(); !sub.IsEmpty() {
			w.Or = append(w.Or, sub)
		}
	}

	return w
}

func sortedKeys(m map[int]*node) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
