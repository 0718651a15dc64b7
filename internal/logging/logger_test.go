// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugLogger(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("DEBUG")
	}()
}

func TestInvalidLevel(t *testing.T) {
	logger := NewLogger("invalid")
	if logger.Level().String() != "error" {
		t.Errorf("expected error level for invalid input, got %s", logger.Level())
	}
}

func TestSecurityLoggerEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := newSecurityLogger(zap.New(core))

	s.SystemStartup()
	s.AuthzFailure("user-1", "pages")
	s.TenantResolutionFailure("unknown.example.com", "no mapping")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	for _, e := range entries {
		if e.LoggerName != securityLoggerName {
			t.Errorf("expected logger name %q, got %q", securityLoggerName, e.LoggerName)
		}
		if _, ok := e.ContextMap()["event"]; !ok {
			t.Errorf("entry %q has no event field", e.Message)
		}
	}

	if host := entries[2].ContextMap()["host"]; host != "unknown.example.com" {
		t.Errorf("expected host field, got %v", host)
	}
}
