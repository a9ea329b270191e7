package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/analysis"
)

const serviceSummary = "summary"

// ChatGenerator is the part of an eino chat model the summary client uses
type ChatGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// SummaryConfig configures the OpenAI-compatible summary provider
type SummaryConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	Temperature       float32
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerMinute int
}

// SummaryClient generates coaching feedback from a prompt
type SummaryClient struct {
	gen     ChatGenerator
	limiter *rate.Limiter
	deps    clientDeps
	model   string
}

var _ analysis.Summarizer = (*SummaryClient)(nil)

// NewSummaryClient builds an openai chat model from cfg and wraps it
func NewSummaryClient(ctx context.Context, cfg SummaryConfig, opts ...ClientOption) (*SummaryClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("summary API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("summary model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}

	mcfg := &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}
	if cfg.Temperature > 0 {
		t := cfg.Temperature
		mcfg.Temperature = &t
	}
	if cfg.MaxTokens > 0 {
		n := cfg.MaxTokens
		mcfg.MaxTokens = &n
	}

	cm, err := openai.NewChatModel(ctx, mcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewSummaryClientWithGenerator(cm, cfg, opts...), nil
}

// NewSummaryClientWithGenerator wraps an existing chat model
func NewSummaryClientWithGenerator(gen ChatGenerator, cfg SummaryConfig, opts ...ClientOption) *SummaryClient {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	return &SummaryClient{
		gen:     gen,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		deps:    newClientDeps(serviceSummary, cfg.Timeout, opts),
		model:   cfg.Model,
	}
}

// Summarize sends prompt as a single user message and returns the reply text
func (s *SummaryClient) Summarize(ctx context.Context, prompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("summary rate limit wait: %w", err)
	}

	var text string
	err := s.deps.call(ctx, serviceSummary, s.model, func(ctx context.Context) error {
		msg, err := s.gen.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
		if err != nil {
			return err
		}
		if msg == nil {
			return fmt.Errorf("empty response")
		}
		text = strings.TrimSpace(msg.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("summary generation failed: %w", err)
	}
	return text, nil
}
