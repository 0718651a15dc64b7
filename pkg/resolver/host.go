// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"net"
	"strings"
)

// NormalizeHost lowercases host and strips the port and the trailing dot.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}

	return strings.TrimSuffix(host, ".")
}

// IsLocalhost reports whether a normalized host points at the local machine.
func IsLocalhost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasSuffix(host, ".localhost")
}

// subdomainLabel returns the first label of hosts carrying a subdomain:
// three labels or more, or a name under localhost.
func subdomainLabel(host string) (string, bool) {
	if net.ParseIP(host) != nil {
		return "", false
	}

	labels := strings.Split(host, ".")
	for _, l := range labels {
		if l == "" {
			return "", false
		}
	}

	if len(labels) >= 3 || (len(labels) == 2 && labels[1] == "localhost") {
		return labels[0], true
	}

	return "", false
}
