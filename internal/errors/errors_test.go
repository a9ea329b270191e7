package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		category   ErrorCategory
		status     int
		messageTag string
	}{
		{"validation", NewValidationError("duration_seconds must be greater than zero", -3.0), CategoryValidation, http.StatusBadRequest, "[VALIDATION_ERROR]"},
		{"configuration", NewConfigurationError("embedding provider unreachable", fmt.Errorf("dial tcp")), CategoryConfiguration, http.StatusInternalServerError, "[CONFIGURATION_ERROR]"},
		{"external api", NewExternalAPIError("embedding", fmt.Errorf("503")), CategoryExternalAPI, http.StatusBadGateway, "[UPSTREAM_ERROR]"},
		{"timeout", NewTimeoutError("summary timed out", nil), CategoryTimeout, http.StatusGatewayTimeout, "[TIMEOUT_ERROR]"},
		{"rate limit", NewRateLimitError("30"), CategoryRateLimit, http.StatusTooManyRequests, "[RATE_LIMIT_EXCEEDED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Contains(t, tt.err.Error(), tt.messageTag)
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewExternalAPIError("grammar", cause)

	assert.ErrorIs(t, err, cause)
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
	}{
		{"already app error", NewValidationError("bad"), CategoryValidation},
		{"wrapped app error", fmt.Errorf("scoring: %w", NewValidationError("bad")), CategoryValidation},
		{"deadline", context.DeadlineExceeded, CategoryTimeout},
		{"cancelled", context.Canceled, CategoryTimeout},
		{"connection refused", fmt.Errorf("dial tcp 127.0.0.1:8081: connection refused"), CategoryNetwork},
		{"unknown", fmt.Errorf("boom"), CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, ToAppError(tt.err).Category)
		})
	}

	assert.Nil(t, ToAppError(nil))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("empty transcript")))
	assert.True(t, IsValidation(fmt.Errorf("wrap: %w", NewValidationError("empty transcript"))))
	assert.False(t, IsValidation(NewInternalError("x", nil)))
	assert.False(t, IsValidation(fmt.Errorf("plain")))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(NewNetworkError("down", nil)))
	assert.True(t, IsRetryableError(NewExternalAPIError("embedding", nil)))
	assert.False(t, IsRetryableError(NewValidationError("bad")))
	assert.False(t, IsRetryableError(NewConfigurationError("bad", nil)))
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, logs := observedLogger()

	r := gin.New()
	r.Use(ErrorHandler(logger))
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(NewValidationError("transcript must not be empty"))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"validation"`)

	entries := logs.FilterField(zap.String("error_category", "validation")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "/fail", entries[0].ContextMap()["path"])
}

func TestErrorHandlerLogsUpstreamFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, logs := observedLogger()

	r := gin.New()
	r.Use(ErrorHandler(logger))
	r.POST("/score", func(c *gin.Context) {
		_ = c.Error(NewExternalAPIError("embedding", fmt.Errorf("status 503")))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/score", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)

	entries := logs.FilterField(zap.String("error_category", "external_api")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusBadGateway), entries[0].ContextMap()["http_status"])
}

func TestErrorHandlerNilLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler(nil))
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("boom"))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecoveryHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, logs := observedLogger()

	r := gin.New()
	r.Use(RecoveryHandler(logger))
	r.GET("/panic", func(c *gin.Context) {
		panic("scorer exploded")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/panic", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"internal"`)

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Internal server error", entries[0].Message)
	assert.Contains(t, fmt.Sprint(entries[0].ContextMap()["cause"]), "scorer exploded")
	assert.Equal(t, 1, logs.FilterMessage("stack_trace").Len())
}
