// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package query

import "strings"

const DefaultSort = "-createdAt"

// OrderBy turns a sort parameter such as "-createdAt" or "title" into an
// ORDER BY clause. Multiple keys are comma separated.
func OrderBy(sort string) ([]string, error) {
	if strings.TrimSpace(sort) == "" {
		sort = DefaultSort
	}

	var out []string
	for _, key := range strings.Split(sort, ",") {
		key = strings.TrimSpace(key)
		dir := "ASC"
		if strings.HasPrefix(key, "-") {
			dir = "DESC"
			key = key[1:]
		}

		col, err := Column(key)
		if err != nil {
			return nil, err
		}
		out = append(out, col+" "+dir)
	}

	// stable pagination
	return append(out, "id ASC"), nil
}
