package config

import "time"

// Config is the full service configuration
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Log         LogConfig       `mapstructure:"log"`
	Embedding   EmbeddingConfig `mapstructure:"embedding"`
	Grammar     GrammarConfig   `mapstructure:"grammar"`
	Summary     SummaryConfig   `mapstructure:"summary"`
	Cache       CacheConfig     `mapstructure:"cache"`
	RateLimit   RateLimitConfig `mapstructure:"ratelimit"`
	Rubric      RubricConfig    `mapstructure:"rubric"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`

	MaxTranscriptChars int   `mapstructure:"max_transcript_chars"`
	MaxBodyBytes       int64 `mapstructure:"max_body_bytes"`
	EnableHSTS         bool  `mapstructure:"enable_hsts"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EmbeddingConfig selects the sentence embedding provider.
// Provider "http" calls an OpenAI-compatible /embeddings endpoint,
// "hashing" uses the built-in offline embedder, for tests and offline runs
// only: it measures word overlap and does not approximate a sentence model.
type EmbeddingConfig struct {
	Provider   string        `mapstructure:"provider"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Dimensions int           `mapstructure:"dimensions"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// GrammarConfig points at a LanguageTool server. An empty URL or
// Enabled=false means the heuristic checker is used.
type GrammarConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	URL      string        `mapstructure:"url"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SummaryConfig configures the OpenAI-compatible chat model used for the
// prose summary. Without an API key the static fallback text is always used.
type SummaryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	Temperature       float32       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	IPLimitPerMin   int `mapstructure:"ip_limit_per_min"`
	BurstMultiplier int `mapstructure:"burst_multiplier"`
}

// RubricConfig optionally overrides the embedded rubric dictionaries
type RubricConfig struct {
	Path string `mapstructure:"path"`
}
