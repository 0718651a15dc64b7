// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"github.com/canonical/tenant-sites/internal/logging"
)

type Config struct {
	OtelHTTPEndpoint string
	OtelGRPCEndpoint string
	Logger           logging.LoggerInterface

	Enabled bool
}

func NewConfig(enabled bool, otelGRPCEndpoint, otelHTTPEndpoint string, logger logging.LoggerInterface) *Config {
	c := new(Config)

	c.OtelGRPCEndpoint = otelGRPCEndpoint
	c.OtelHTTPEndpoint = otelHTTPEndpoint
	c.Logger = logger
	c.Enabled = enabled

	return c
}

func NewNoopConfig() *Config {
	c := new(Config)
	c.Enabled = false
	c.Logger = logging.NewNoopLogger()
	return c
}
