// Package toolkit builds the process-wide provider set the scorer runs on:
// embedder, sentiment lexicon, grammar checker and summary model, together
// with their caches, circuit breakers and health tracking.
package toolkit

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/adapters"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/config"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/resilience"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/sentiment"
)

// Provider names used for breakers, health tracking and metrics
const (
	ServiceEmbedding = "embedding"
	ServiceGrammar   = "grammar"
	ServiceSummary   = "summary"
)

const cacheKeyPrefix = "introscore:emb:"

// Toolkit is read-only once built
type Toolkit struct {
	Providers analysis.Toolkit
	Rubric    *analysis.Rubric
	Redis     *ratelimit.RedisClient
	Health    *resilience.DegradationManager
	Breakers  *resilience.CircuitBreakerRegistry

	cfg     *config.Config
	metrics *monitoring.Metrics
	logger  *monitoring.Logger
	store   cache.Store
}

var (
	loadOnce sync.Once
	loaded   *Toolkit
	loadErr  error
)

// Load builds the toolkit on first call and returns the same instance (or
// error) afterwards
func Load(ctx context.Context, cfg *config.Config, metrics *monitoring.Metrics, logger *monitoring.Logger) (*Toolkit, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Build(ctx, cfg, metrics, logger)
	})
	return loaded, loadErr
}

// Build constructs a fresh toolkit. Optional providers that cannot be
// reached are left nil so the scorer uses its fallbacks; a missing embedder
// or sentiment lexicon is a configuration error.
func Build(ctx context.Context, cfg *config.Config, metrics *monitoring.Metrics, logger *monitoring.Logger) (*Toolkit, error) {
	if logger == nil {
		logger = monitoring.NewNopLogger()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	logger = logger.Named("toolkit")

	rubric, err := analysis.LoadRubric(cfg.Rubric.Path)
	if err != nil {
		return nil, errors.NewConfigurationError("Failed to load rubric", err)
	}

	t := &Toolkit{
		Rubric:   rubric,
		Health:   resilience.NewDegradationManager(resilience.DefaultDegradationConfig(), logger.Logger),
		Breakers: resilience.NewCircuitBreakerRegistry(),
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}

	t.Redis, err = ratelimit.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, logger)
	if err != nil {
		logger.Warn("Redis unavailable, continuing in-memory", zap.Error(err))
	}
	if t.Redis.IsEnabled() {
		t.store = cache.NewRedisStore(t.Redis.GetClient(), cacheKeyPrefix, cfg.Cache.TTL)
	} else {
		t.store = cache.NewMemoryStore(cfg.Cache.TTL)
	}

	if t.Providers.Embedder, err = t.buildEmbedder(ctx); err != nil {
		t.Close()
		return nil, errors.NewConfigurationError("Failed to build embedding provider", err)
	}

	lexicon, err := sentiment.NewAnalyzer()
	if err != nil {
		t.Close()
		return nil, errors.NewConfigurationError("Failed to load sentiment lexicon", err)
	}
	t.Providers.Sentiment = lexicon

	t.Providers.Grammar = t.buildGrammar(ctx)
	t.Providers.Summarizer = t.buildSummary(ctx)

	logger.Info("Toolkit loaded",
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.Bool("grammar_external", t.Providers.Grammar != nil),
		zap.Bool("summary_provider", t.Providers.Summarizer != nil),
		zap.Bool("redis", t.Redis.IsEnabled()),
	)
	return t, nil
}

func (t *Toolkit) clientOptions(service string) []adapters.ClientOption {
	return []adapters.ClientOption{
		adapters.WithBreaker(t.Breakers.GetOrCreate(service, resilience.CircuitBreakerConfig{})),
		adapters.WithHealth(t.Health),
		adapters.WithLogger(t.logger.Named(service)),
	}
}

func (t *Toolkit) buildEmbedder(ctx context.Context) (embedding.Embedder, error) {
	cfg := t.cfg.Embedding

	var (
		inner embedding.Embedder
		model string
		probe resilience.HealthCheckFunc
	)
	switch cfg.Provider {
	case "http":
		e, err := adapters.NewHTTPEmbedder(ctx, adapters.EmbeddingConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    cfg.Timeout,
			Retry:      resilience.DefaultRetryConfig(),
		}, t.clientOptions(ServiceEmbedding)...)
		if err != nil {
			return nil, err
		}
		inner, model, probe = e, cfg.Model, e.Probe
	case "hashing":
		t.logger.Warn("Using the offline hashing embedder; semantic similarity measures word overlap only and scores will not match a sentence model",
			zap.Int("dimensions", cfg.Dimensions))
		inner = adapters.NewHashingEmbedder(cfg.Dimensions)
		model = "hashing-" + strconv.Itoa(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	t.Health.RegisterService(ServiceEmbedding, false, probe)
	return adapters.NewCachedEmbedder(inner, cache.NewVectorCache(t.store), model, t.metrics, t.logger.Named("cache")), nil
}

func (t *Toolkit) buildGrammar(ctx context.Context) analysis.GrammarChecker {
	cfg := t.cfg.Grammar
	if !cfg.Enabled || cfg.URL == "" {
		return nil
	}

	client, err := adapters.NewLanguageToolClient(adapters.LanguageToolConfig{
		URL:      cfg.URL,
		Language: cfg.Language,
		Timeout:  cfg.Timeout,
	}, t.clientOptions(ServiceGrammar)...)
	if err != nil {
		t.logger.Warn("Grammar service misconfigured, using heuristic checks", zap.Error(err))
		return nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Probe(probeCtx); err != nil {
		t.logger.Warn("Grammar service unreachable, using heuristic checks",
			zap.String("url", cfg.URL), zap.Error(err))
		return nil
	}

	t.Health.RegisterService(ServiceGrammar, true, client.Probe)
	return client
}

func (t *Toolkit) buildSummary(ctx context.Context) analysis.Summarizer {
	if !t.cfg.SummaryConfigured() {
		t.logger.Info("Summary provider not configured, using fallback feedback")
		return nil
	}
	cfg := t.cfg.Summary

	client, err := adapters.NewSummaryClient(ctx, adapters.SummaryConfig{
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		Model:             cfg.Model,
		Temperature:       cfg.Temperature,
		MaxTokens:         cfg.MaxTokens,
		Timeout:           cfg.Timeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}, t.clientOptions(ServiceSummary)...)
	if err != nil {
		t.logger.Warn("Summary provider unavailable, using fallback feedback", zap.Error(err))
		return nil
	}

	t.Health.RegisterService(ServiceSummary, true, nil)
	return client
}

// NewScorer builds a scorer over the toolkit's providers
func (t *Toolkit) NewScorer(ctx context.Context) (*analysis.Scorer, error) {
	return analysis.NewScorer(ctx, t.Providers,
		analysis.WithRubric(t.Rubric),
		analysis.WithLogger(t.logger.Logger),
		analysis.WithObserver(t.metrics),
		analysis.WithSummaryTimeout(t.cfg.Summary.Timeout),
	)
}

// SummarySource reports which feedback source new reports will use
func (t *Toolkit) SummarySource() string {
	if t.Providers.Summarizer == nil {
		return analysis.FeedbackSourceFallback
	}
	return analysis.FeedbackSourceProvider
}

// StartHealthChecks probes the providers periodically until ctx is done
func (t *Toolkit) StartHealthChecks(ctx context.Context) {
	go t.Health.StartHealthChecks(ctx)
}

// Close releases the cache and Redis connection
func (t *Toolkit) Close() {
	if t.store != nil {
		_ = t.store.Close()
	}
	if t.Redis != nil {
		_ = t.Redis.Close()
	}
	t.Health.GracefulShutdown()
}
