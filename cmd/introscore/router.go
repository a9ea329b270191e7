package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/analysis"
	_ "github.com/ZanzyTHEbar/speak-o-meter/internal/docs"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/resilience"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/security"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/types"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/validation"
)

// HealthReporter is the provider health view the health endpoints render
type HealthReporter interface {
	Healthy() bool
	GetAllServiceHealth() []resilience.ProviderHealth
}

// server holds the handler dependencies
type server struct {
	scorer        *analysis.Scorer
	validator     *validation.RequestValidator
	security      *security.SecurityMiddleware
	limiter       *ratelimit.RateLimiter
	health        HealthReporter
	breakers      *resilience.CircuitBreakerRegistry
	summarySource string
	allowOrigins  []string
	metrics       *monitoring.Metrics
	logger        *monitoring.Logger
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	httpLog := s.logger.Named("http").Logger

	r.Use(monitoring.RequestIDMiddleware())
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(errors.ErrorHandler(httpLog))
	r.Use(errors.RecoveryHandler(httpLog))
	r.Use(corsMiddleware(s.allowOrigins))
	r.Use(s.security.SecurityHeaders)

	r.GET("/health", s.handleHealth)
	r.GET("/health/services", s.handleServices)
	r.GET("/rubric", s.handleRubric)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/score",
		s.limiter.IPRateLimitMiddleware(),
		s.security.RequestTimeout,
		s.security.ValidateContentType,
		s.handleScore,
	)

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}

// handleScore godoc
// @Summary  Score a self-introduction transcript
// @Tags     scoring
// @Accept   json
// @Produce  json
// @Param    request body types.ScoreRequest true "Transcript and optional duration"
// @Success  200 {object} analysis.ScoreReport
// @Failure  400 {object} errors.Response
// @Failure  429 {object} errors.Response
// @Failure  502 {object} errors.Response
// @Router   /score [post]
func (s *server) handleScore(c *gin.Context) {
	start := time.Now()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.reject(c, errors.NewValidationErrorWithMap(map[string]string{"body": "request body is too large or unreadable"}))
		return
	}

	req, err := s.validator.DecodeScoreRequest(body)
	if err != nil {
		s.reject(c, err)
		return
	}
	if err := s.security.ValidateTranscript(req.Transcript); err != nil {
		s.reject(c, err)
		return
	}

	report, err := s.scorer.Score(c.Request.Context(), req.Transcript, req.DurationSeconds)
	if err != nil {
		if errors.IsValidation(err) {
			s.reject(c, err)
			return
		}
		s.metrics.RecordScoring("error", time.Since(start))
		_ = c.Error(err)
		return
	}

	elapsed := time.Since(start)
	s.metrics.RecordScoring("ok", elapsed)
	s.logger.ScoringLogger(report.Words, report.DurationSeconds, report.OverallScore, report.FeedbackSource, elapsed)

	c.JSON(http.StatusOK, report)
}

func (s *server) reject(c *gin.Context, err error) {
	s.metrics.RecordScoring("invalid", 0)
	_ = c.Error(err)
}

// handleHealth godoc
// @Summary  Service liveness and provider mode
// @Tags     health
// @Produce  json
// @Success  200 {object} types.HealthResponse
// @Failure  503 {object} types.HealthResponse
// @Router   /health [get]
func (s *server) handleHealth(c *gin.Context) {
	resp := types.HealthResponse{
		Status:        "ok",
		GrammarSource: s.scorer.GrammarSource(),
		Summary:       s.summarySource,
		Metrics:       s.metrics.GetStats(),
	}

	if !s.health.Healthy() {
		resp.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleServices godoc
// @Summary  Provider health and circuit breaker state
// @Tags     health
// @Produce  json
// @Success  200 {object} types.ServicesResponse
// @Router   /health/services [get]
func (s *server) handleServices(c *gin.Context) {
	c.JSON(http.StatusOK, types.ServicesResponse{
		Healthy:   s.health.Healthy(),
		Providers: s.health.GetAllServiceHealth(),
		Breakers:  s.breakers.GetStats(),
	})
}

// handleRubric godoc
// @Summary  Rubric criteria and point ceilings
// @Tags     scoring
// @Produce  json
// @Success  200 {array} analysis.CriterionSpec
// @Router   /rubric [get]
func (s *server) handleRubric(c *gin.Context) {
	c.JSON(http.StatusOK, analysis.Criteria())
}

// shutdown closes the limiter's background sweeper
func (s *server) shutdown(_ context.Context) {
	s.limiter.Close()
}
