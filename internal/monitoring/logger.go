package monitoring

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with domain-specific helpers
type Logger struct {
	*zap.Logger
}

// NewLogger builds a zap logger. format "json" selects the production encoder,
// anything else the human-readable development encoder.
func NewLogger(level, format string) *Logger {
	lvl := zapcore.InfoLevel
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
	}

	return &Logger{Logger: l}
}

// NewNopLogger discards everything
func NewNopLogger() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Named returns a child logger scoped to a component
func (l *Logger) Named(component string) *Logger {
	return &Logger{Logger: l.Logger.Named(component)}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip, requestID string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("ip", ip),
		zap.String("request_id", requestID),
		zap.Int("status_code", statusCode),
		zap.Int64("duration_ms", duration.Milliseconds()),
	)
}

// ScoringLogger logs one completed scoring run
func (l *Logger) ScoringLogger(words int, durationSeconds, overall float64, feedbackSource string, elapsed time.Duration) {
	l.Info("Scoring Completed",
		zap.Int("words", words),
		zap.Float64("duration_seconds", durationSeconds),
		zap.Float64("overall_score", overall),
		zap.String("feedback_source", feedbackSource),
		zap.Int64("elapsed_ms", elapsed.Milliseconds()),
	)
}

// ExternalAPILogger logs a call to an embedding, grammar or summary provider
func (l *Logger) ExternalAPILogger(service, endpoint string, duration time.Duration, err error) {
	fields := []zap.Field{
		zap.String("service", service),
		zap.String("endpoint", endpoint),
		zap.Int64("duration_ms", duration.Milliseconds()),
		zap.Bool("success", err == nil),
	}
	if err != nil {
		l.Warn("External API Call", append(fields, zap.Error(err))...)
		return
	}
	l.Debug("External API Call", fields...)
}

// CacheLogger logs cache operations
func (l *Logger) CacheLogger(operation, key string, hit bool) {
	if len(key) > 8 {
		key = key[:8] + "..."
	}
	l.Debug("Cache Operation",
		zap.String("operation", operation),
		zap.String("key_hash", key),
		zap.Bool("hit", hit),
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		zap.String("event", event),
		zap.String("details", details),
		zap.String("uptime", time.Since(startTime).String()),
	)
}

var startTime = time.Now()
