// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

const securityLoggerName = "security"

// SecurityLogger writes audit events through a dedicated named zap logger.
// Events always carry an "event" field so they can be routed separately.
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup() {
	s.l.Info("system startup", zap.String("event", "sys_startup"))
}

func (s *SecurityLogger) SystemShutdown() {
	s.l.Info("system shutdown", zap.String("event", "sys_shutdown"))
}

func (s *SecurityLogger) AuthzFailure(userID, resource string) {
	s.l.Warn(
		"authorization failure",
		zap.String("event", "authz_fail:"+userID+","+resource),
		zap.String("user_id", userID),
		zap.String("resource", resource),
	)
}

func (s *SecurityLogger) AdminAction(userID, action, object string) {
	s.l.Info(
		"admin action",
		zap.String("event", "admin_action:"+action),
		zap.String("user_id", userID),
		zap.String("object", object),
	)
}

func (s *SecurityLogger) TenantResolutionFailure(host, reason string) {
	s.l.Warn(
		"tenant resolution failure",
		zap.String("event", "tenant_unresolved"),
		zap.String("host", host),
		zap.String("reason", reason),
	)
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l.Named(securityLoggerName)}
}
