package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/analysis"
)

const serviceGrammar = "grammar"

// LanguageToolConfig points at a LanguageTool HTTP server
type LanguageToolConfig struct {
	URL      string
	Language string
	Timeout  time.Duration
}

// LanguageToolClient checks text against a LanguageTool /v2/check endpoint.
// Calls are made once; the scorer falls back to its heuristic on failure.
type LanguageToolClient struct {
	cfg  LanguageToolConfig
	deps clientDeps
}

var _ analysis.GrammarChecker = (*LanguageToolClient)(nil)

type languageToolResponse struct {
	Matches []struct {
		Message string `json:"message"`
		Offset  int    `json:"offset"`
		Length  int    `json:"length"`
		Rule    struct {
			ID       string `json:"id"`
			Category struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"category"`
		} `json:"rule"`
	} `json:"matches"`
}

// NewLanguageToolClient builds a client. Language defaults to en-US.
func NewLanguageToolClient(cfg LanguageToolConfig, opts ...ClientOption) (*LanguageToolClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("grammar service URL is required")
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")

	return &LanguageToolClient{cfg: cfg, deps: newClientDeps(serviceGrammar, cfg.Timeout, opts)}, nil
}

// Check returns the issues LanguageTool reports for text
func (c *LanguageToolClient) Check(ctx context.Context, text string) ([]analysis.GrammarIssue, error) {
	form := url.Values{}
	form.Set("language", c.cfg.Language)
	form.Set("text", text)
	body := form.Encode()

	endpoint := c.cfg.URL + "/v2/check"
	var out languageToolResponse
	err := c.deps.call(ctx, serviceGrammar, endpoint, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		return doJSON(c.deps.httpClient, req, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("grammar check failed: %w", err)
	}

	issues := make([]analysis.GrammarIssue, 0, len(out.Matches))
	for _, m := range out.Matches {
		issues = append(issues, analysis.GrammarIssue{
			RuleID:   m.Rule.ID,
			Category: m.Rule.Category.Name,
			Message:  m.Message,
			Offset:   m.Offset,
			Length:   m.Length,
		})
	}
	return issues, nil
}

// Probe checks the server answers /v2/languages
func (c *LanguageToolClient) Probe(ctx context.Context) error {
	endpoint := c.cfg.URL + "/v2/languages"
	return c.deps.call(ctx, serviceGrammar, endpoint, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		return doJSON(c.deps.httpClient, req, nil)
	})
}
