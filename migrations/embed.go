// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package migrations embeds the goose SQL migrations of the service schema.
package migrations

import "embed"

//go:embed *.sql
var EmbedMigrations embed.FS
