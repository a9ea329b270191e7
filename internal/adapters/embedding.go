package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaiembed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
	goopenai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/resilience"
)

const serviceEmbedding = "embedding"

// EmbeddingConfig configures an OpenAI-compatible /embeddings client
type EmbeddingConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int // expected vector size; 0 accepts any
	Timeout    time.Duration
	Retry      resilience.RetryConfig
}

// HTTPEmbedder wraps the eino OpenAI embedder with retries, a circuit
// breaker and a shape check on every response
type HTTPEmbedder struct {
	cfg    EmbeddingConfig
	client embedding.Embedder
	deps   clientDeps
}

var _ embedding.Embedder = (*HTTPEmbedder)(nil)

// NewHTTPEmbedder validates cfg and builds the client
func NewHTTPEmbedder(ctx context.Context, cfg EmbeddingConfig, opts ...ClientOption) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("embedding base URL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = resilience.DefaultRetryConfig()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	deps := newClientDeps(serviceEmbedding, cfg.Timeout, opts)

	client, err := openaiembed.NewEmbedder(ctx, &openaiembed.EmbeddingConfig{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		HTTPClient: deps.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	return newHTTPEmbedder(cfg, client, deps), nil
}

func newHTTPEmbedder(cfg EmbeddingConfig, client embedding.Embedder, deps clientDeps) *HTTPEmbedder {
	return &HTTPEmbedder{cfg: cfg, client: client, deps: deps}
}

// EmbedStrings returns one vector per text, in input order
func (e *HTTPEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	endpoint := e.cfg.BaseURL + "/embeddings"
	var vecs [][]float64
	err := resilience.Do(ctx, e.cfg.Retry, func(ctx context.Context) error {
		return e.deps.call(ctx, serviceEmbedding, endpoint, func(ctx context.Context) error {
			out, err := e.client.EmbedStrings(ctx, texts, opts...)
			if err != nil {
				return statusError(err)
			}
			vecs = out
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if err := e.check(vecs, len(texts)); err != nil {
		return nil, err
	}
	return vecs, nil
}

func (e *HTTPEmbedder) check(vecs [][]float64, want int) error {
	if len(vecs) != want {
		return fmt.Errorf("embedding provider returned %d vectors for %d inputs", len(vecs), want)
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return fmt.Errorf("embedding provider returned an empty vector at position %d", i)
		}
		if e.cfg.Dimensions > 0 && len(v) != e.cfg.Dimensions {
			return fmt.Errorf("embedding has %d dimensions, want %d", len(v), e.cfg.Dimensions)
		}
	}
	return nil
}

// statusError maps the OpenAI client's status errors onto HTTPError so the
// retry policy can tell transient failures from rejected requests
func statusError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return resilience.NewHTTPError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return resilience.NewHTTPError(reqErr.HTTPStatusCode, string(reqErr.Body))
	}
	return err
}

// Probe embeds a short string to check the provider is reachable
func (e *HTTPEmbedder) Probe(ctx context.Context) error {
	_, err := e.EmbedStrings(ctx, []string{"health check"})
	return err
}
