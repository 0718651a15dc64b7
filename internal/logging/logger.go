// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a new default logger
// it will need to be closed with
// ```
// defer logger.Sync()
// ```
// to make sure all has been piped out before terminating
func NewLogger(l string) *Logger {
	lvl := zapcore.ErrorLevel

	switch strings.ToLower(l) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info":
		lvl = zapcore.InfoLevel
	case "warn", "warning":
		lvl = zapcore.WarnLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Encoding = "json"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.LevelKey = "severity"
	config.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	config.EncoderConfig.TimeKey = "@timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger := zap.Must(config.Build())
	logger.Debug("logger construction succeeded")

	return &Logger{
		SugaredLogger: logger.Sugar(),
		security:      newSecurityLogger(logger),
	}
}
