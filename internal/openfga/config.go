// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"github.com/canonical/tenant-sites/internal/logging"
	"github.com/canonical/tenant-sites/internal/monitoring"
	"github.com/canonical/tenant-sites/internal/tracing"
)

type Config struct {
	ApiScheme   string `validate:"required,oneof=http https"`
	ApiHost     string `validate:"required,hostname_port"`
	StoreID     string
	ApiToken    string `validate:"required"`
	AuthModelID string
	Debug       bool

	Tracer  tracing.TracingInterface
	Monitor monitoring.MonitorInterface
	Logger  logging.LoggerInterface
}

func NewConfig(apiScheme, apiHost, storeID, apiToken, authModelID string, debug bool, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Config {
	c := new(Config)

	c.ApiScheme = apiScheme
	c.ApiHost = apiHost
	c.StoreID = storeID
	c.ApiToken = apiToken
	c.AuthModelID = authModelID
	c.Debug = debug

	c.Monitor = monitor
	c.Tracer = tracer
	c.Logger = logger

	return c
}
