package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/config"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/security"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/toolkit"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/validation"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scoring HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.Mode)

	logger := monitoring.NewLogger(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logger.Sync() }()
	metrics := monitoring.NewMetrics()

	tk, err := toolkit.Load(ctx, cfg, metrics, logger)
	if err != nil {
		logger.Error("Failed to load toolkit", zap.Error(err))
		return err
	}
	defer tk.Close()

	scorer, err := tk.NewScorer(ctx)
	if err != nil {
		logger.Error("Failed to create scorer", zap.Error(err))
		return err
	}

	validator, err := validation.NewRequestValidator()
	if err != nil {
		return err
	}

	s := &server{
		scorer:    scorer,
		validator: validator,
		security: security.NewSecurityMiddleware(security.SecurityConfig{
			MaxTranscriptChars: cfg.Server.MaxTranscriptChars,
			MaxBodyBytes:       cfg.Server.MaxBodyBytes,
			RequestTimeout:     cfg.Server.RequestTimeout,
			EnableHSTS:         cfg.Server.EnableHSTS,
		}),
		limiter: ratelimit.NewRateLimiter(tk.Redis, ratelimit.Config{
			IPLimitPerMin:   cfg.RateLimit.IPLimitPerMin,
			BurstMultiplier: cfg.RateLimit.BurstMultiplier,
		}, metrics, logger.Named("ratelimit")),
		health:        tk.Health,
		breakers:      tk.Breakers,
		summarySource: tk.SummarySource(),
		allowOrigins:  cfg.Server.AllowOrigins,
		metrics:       metrics,
		logger:        logger,
	}

	tk.StartHealthChecks(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed to start", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}
