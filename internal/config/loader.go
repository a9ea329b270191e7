package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from, in increasing precedence: built-in defaults,
// configs/config.yaml, configs/config.<APP_ENVIRONMENT>.yaml, a .env file and
// the process environment (summary.api_key -> SUMMARY_API_KEY).
// A non-empty path replaces the config file search.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("summary.api_key", "SUMMARY_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("embedding.api_key", "EMBEDDING_API_KEY")
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading base config: %w", err)
			}
		}

		env := os.Getenv("APP_ENVIRONMENT")
		if env == "" {
			env = "development"
		}
		v.SetConfigName("config." + env)
		_ = v.MergeInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.max_transcript_chars", 20000)
	v.SetDefault("server.max_body_bytes", 256<<10)
	v.SetDefault("server.enable_hsts", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("embedding.provider", "http")
	v.SetDefault("embedding.base_url", "http://localhost:8090/v1")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.model", "sentence-transformers/all-MiniLM-L6-v2")
	v.SetDefault("embedding.dimensions", 384)
	v.SetDefault("embedding.timeout", 5*time.Second)

	v.SetDefault("grammar.enabled", true)
	v.SetDefault("grammar.url", "http://localhost:8081")
	v.SetDefault("grammar.language", "en-US")
	v.SetDefault("grammar.timeout", 5*time.Second)

	v.SetDefault("summary.enabled", true)
	v.SetDefault("summary.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("summary.api_key", "")
	v.SetDefault("summary.model", "llama-3.1-8b-instant")
	v.SetDefault("summary.temperature", 0.7)
	v.SetDefault("summary.max_tokens", 200)
	v.SetDefault("summary.timeout", 8*time.Second)
	v.SetDefault("summary.requests_per_minute", 30)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("ratelimit.ip_limit_per_min", 60)
	v.SetDefault("ratelimit.burst_multiplier", 2)

	v.SetDefault("rubric.path", "")
}

// Validate checks values that would otherwise fail deep inside a provider
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "http":
		if c.Embedding.BaseURL == "" {
			return fmt.Errorf("embedding.base_url is required for the http provider")
		}
	case "hashing":
	default:
		return fmt.Errorf("unknown embedding.provider %q", c.Embedding.Provider)
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}
	if c.Embedding.Timeout <= 0 || c.Grammar.Timeout <= 0 || c.Summary.Timeout <= 0 {
		return fmt.Errorf("provider timeouts must be positive")
	}
	if c.Summary.MaxTokens <= 0 {
		return fmt.Errorf("summary.max_tokens must be positive")
	}
	if c.Server.MaxTranscriptChars <= 0 {
		return fmt.Errorf("server.max_transcript_chars must be positive")
	}
	if c.RateLimit.IPLimitPerMin <= 0 {
		return fmt.Errorf("ratelimit.ip_limit_per_min must be positive")
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}

	return nil
}

// SummaryConfigured reports whether a live summary provider can be built
func (c *Config) SummaryConfigured() bool {
	return c.Summary.Enabled && c.Summary.APIKey != ""
}
