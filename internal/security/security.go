package security

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/errors"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxTranscriptChars int           `json:"max_transcript_chars"`
	MaxBodyBytes       int64         `json:"max_body_bytes"`
	RequestTimeout     time.Duration `json:"request_timeout"`
	EnableHSTS         bool          `json:"enable_hsts"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxTranscriptChars: 20000,
		MaxBodyBytes:       256 << 10,
		RequestTimeout:     30 * time.Second,
	}
}

// SecurityMiddleware bundles the request guards placed in front of the scoring API
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance. Zero
// fields fall back to the defaults.
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	def := DefaultSecurityConfig()
	if config.MaxTranscriptChars <= 0 {
		config.MaxTranscriptChars = def.MaxTranscriptChars
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = def.MaxBodyBytes
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = def.RequestTimeout
	}
	return &SecurityMiddleware{config: config}
}

// Config returns the effective configuration
func (sm *SecurityMiddleware) Config() SecurityConfig {
	return sm.config
}

// ValidateTranscript rejects transcripts the scorer should never see: invalid
// UTF-8, NUL bytes and anything over the length limit. Emptiness is left to
// the scorer.
func (sm *SecurityMiddleware) ValidateTranscript(text string) error {
	if !utf8.ValidString(text) {
		return errors.NewValidationErrorWithMap(map[string]string{
			"transcript": "contains invalid UTF-8 encoding",
		})
	}
	if strings.ContainsRune(text, 0) {
		return errors.NewValidationErrorWithMap(map[string]string{
			"transcript": "contains invalid characters",
		})
	}
	if n := utf8.RuneCountInString(text); n > sm.config.MaxTranscriptChars {
		return errors.NewValidationErrorWithMap(map[string]string{
			"transcript": fmt.Sprintf("exceeds maximum length of %d characters (got %d)", sm.config.MaxTranscriptChars, n),
		})
	}
	return nil
}

// ValidateContentType requires a JSON body on requests that carry one
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		c.Next()
		return
	}

	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil || mediaType != "application/json" {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
			"error":    "unsupported content type, expected application/json",
			"category": errors.CategoryValidation,
		})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sm.config.MaxBodyBytes)
	c.Next()
}

// RequestTimeout bounds the request context
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}
