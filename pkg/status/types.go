// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

type Status struct {
	Status    string     `json:"status"`
	BuildInfo *BuildInfo `json:"buildInfo,omitempty"`
}

type BuildInfo struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	Name       string `json:"name"`
}

type Readiness struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}
