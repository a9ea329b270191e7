// Package monitoringtest provides loggers for tests
package monitoringtest

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/monitoring"
)

// NewLogger routes log output through t.Log
func NewLogger(t testing.TB) *monitoring.Logger {
	return &monitoring.Logger{Logger: zaptest.NewLogger(t)}
}

// NewObservedLogger records every entry at or above level in memory
func NewObservedLogger(level zapcore.Level) (*monitoring.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &monitoring.Logger{Logger: zap.New(core)}, logs
}
