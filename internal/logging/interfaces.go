// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Sync() error
	Security() SecurityLoggerInterface
}

// SecurityLoggerInterface emits audit events in a stable, machine readable shape.
type SecurityLoggerInterface interface {
	SystemStartup()
	SystemShutdown()
	AuthzFailure(userID, resource string)
	AdminAction(userID, action, object string)
	TenantResolutionFailure(host, reason string)
}
