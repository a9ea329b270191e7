package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/resilience"
)

type healthLog struct {
	mu       sync.Mutex
	outcomes map[string][]error
}

func (h *healthLog) RecordOutcome(service string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.outcomes == nil {
		h.outcomes = map[string][]error{}
	}
	h.outcomes[service] = append(h.outcomes[service], err)
}

func fastRetry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingItem struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

func embeddingList(vecs ...[]float64) map[string]interface{} {
	data := make([]embeddingItem, len(vecs))
	for i, v := range vecs {
		data[i] = embeddingItem{Object: "embedding", Index: i, Embedding: v}
	}
	return map[string]interface{}{"object": "list", "data": data, "model": "mini"}
}

func apiError(message string) map[string]interface{} {
	return map[string]interface{}{"error": map[string]string{"message": message, "type": "server_error"}}
}

func embeddingServer(t *testing.T, handler func(req embeddingRequest) (int, interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embeddingRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEmbedder(t *testing.T, cfg EmbeddingConfig, opts ...ClientOption) *HTTPEmbedder {
	t.Helper()
	e, err := NewHTTPEmbedder(context.Background(), cfg, opts...)
	require.NoError(t, err)
	return e
}

func TestHTTPEmbedder_EmbedStrings(t *testing.T) {
	srv := embeddingServer(t, func(req embeddingRequest) (int, interface{}) {
		assert.Equal(t, "mini", req.Model)
		assert.Equal(t, []string{"a", "b", "c"}, req.Input)
		return http.StatusOK, embeddingList([]float64{0, 1}, []float64{1, 1}, []float64{2, 1})
	})

	e := newTestEmbedder(t, EmbeddingConfig{BaseURL: srv.URL + "/v1/", APIKey: "secret", Model: "mini", Dimensions: 2})

	vecs, err := e.EmbedStrings(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1}, {1, 1}, {2, 1}}, vecs)
}

type countingTransport struct {
	calls atomic.Int32
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return http.DefaultTransport.RoundTrip(r)
}

func TestHTTPEmbedder_UsesInjectedHTTPClient(t *testing.T) {
	srv := embeddingServer(t, func(req embeddingRequest) (int, interface{}) {
		return http.StatusOK, embeddingList([]float64{1, 0})
	})

	transport := &countingTransport{}
	e := newTestEmbedder(t, EmbeddingConfig{BaseURL: srv.URL + "/v1", APIKey: "secret", Model: "mini"},
		WithHTTPClient(&http.Client{Transport: transport, Timeout: time.Second}))

	_, err := e.EmbedStrings(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), transport.calls.Load())
}

func TestHTTPEmbedder_ModelOption(t *testing.T) {
	srv := embeddingServer(t, func(req embeddingRequest) (int, interface{}) {
		assert.Equal(t, "large", req.Model)
		return http.StatusOK, embeddingList([]float64{1})
	})

	e := newTestEmbedder(t, EmbeddingConfig{BaseURL: srv.URL + "/v1", APIKey: "secret", Model: "mini"})

	_, err := e.EmbedStrings(context.Background(), []string{"a"}, embedding.WithModel("large"))
	require.NoError(t, err)
}

func TestHTTPEmbedder_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := embeddingServer(t, func(req embeddingRequest) (int, interface{}) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return http.StatusServiceUnavailable, apiError("warming up")
		}
		return http.StatusOK, embeddingList([]float64{1})
	})

	health := &healthLog{}
	e := newTestEmbedder(t,
		EmbeddingConfig{BaseURL: srv.URL + "/v1", APIKey: "secret", Model: "mini", Retry: fastRetry()},
		WithHealth(health),
	)

	_, err := e.EmbedStrings(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	require.Len(t, health.outcomes[serviceEmbedding], 2)
	assert.Error(t, health.outcomes[serviceEmbedding][0])
	assert.NoError(t, health.outcomes[serviceEmbedding][1])
}

func TestHTTPEmbedder_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := embeddingServer(t, func(req embeddingRequest) (int, interface{}) {
		atomic.AddInt32(&calls, 1)
		return http.StatusUnauthorized, apiError("bad key")
	})

	e := newTestEmbedder(t, EmbeddingConfig{BaseURL: srv.URL + "/v1", APIKey: "secret", Model: "mini", Retry: fastRetry()})

	_, err := e.EmbedStrings(context.Background(), []string{"a"})
	require.Error(t, err)

	var httpErr *resilience.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPEmbedder_RejectsMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"too few vectors", embeddingList([]float64{1, 1})},
		{"wrong dimensions", embeddingList([]float64{1}, []float64{1})},
		{"empty vector", embeddingList([]float64{1, 1}, []float64{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := embeddingServer(t, func(req embeddingRequest) (int, interface{}) {
				return http.StatusOK, tt.body
			})
			e := newTestEmbedder(t, EmbeddingConfig{BaseURL: srv.URL + "/v1", APIKey: "secret", Model: "mini", Dimensions: 2})

			_, err := e.EmbedStrings(context.Background(), []string{"a", "b"})
			assert.Error(t, err)
		})
	}
}

func TestHTTPEmbedder_BreakerOpens(t *testing.T) {
	var calls int32
	srv := embeddingServer(t, func(req embeddingRequest) (int, interface{}) {
		atomic.AddInt32(&calls, 1)
		return http.StatusBadGateway, nil
	})

	cb := resilience.NewCircuitBreaker(serviceEmbedding, resilience.CircuitBreakerConfig{FailureThreshold: 2, RecoveryTimeout: time.Minute})
	e := newTestEmbedder(t,
		EmbeddingConfig{BaseURL: srv.URL + "/v1", APIKey: "secret", Model: "mini", Retry: fastRetry()},
		WithBreaker(cb),
	)

	_, err := e.EmbedStrings(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, resilience.StateOpen, cb.State())
}

func TestHTTPEmbedder_PassesThroughTransportErrors(t *testing.T) {
	inner := &mockEmbedder{}
	inner.On("EmbedStrings", mock.Anything, []string{"a"}).Return(nil, errors.New("dial tcp: connection refused"))

	cfg := EmbeddingConfig{BaseURL: "http://embeddings", Model: "mini", Retry: resilience.SingleAttempt()}
	e := newHTTPEmbedder(cfg, inner, newClientDeps(serviceEmbedding, time.Second, nil))

	_, err := e.EmbedStrings(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	var httpErr *resilience.HTTPError
	assert.False(t, errors.As(err, &httpErr))
}

func TestNewHTTPEmbedder_Validation(t *testing.T) {
	_, err := NewHTTPEmbedder(context.Background(), EmbeddingConfig{Model: "mini"})
	assert.Error(t, err)

	_, err = NewHTTPEmbedder(context.Background(), EmbeddingConfig{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestHashingEmbedder(t *testing.T) {
	h := NewHashingEmbedder(0)
	assert.Equal(t, 384, h.Dimensions())

	vecs, err := h.EmbedStrings(context.Background(), []string{
		"Hello, my name is Asha",
		"hello my name is asha",
		"",
		"The weather in the mountains was cold",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 4)

	norm := 0.0
	for _, v := range vecs[0] {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	assert.Equal(t, vecs[0], vecs[1], "case and punctuation are ignored")
	assert.Equal(t, make([]float64, 384), vecs[2])
	assert.Greater(t, dot(vecs[0], vecs[1]), dot(vecs[0], vecs[3]))
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	args := m.Called(ctx, texts)
	if v := args.Get(0); v != nil {
		return v.([][]float64), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCachedEmbedder_OnlyEmbedsMisses(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore(time.Hour)
	defer store.Close()

	inner := &mockEmbedder{}
	inner.On("EmbedStrings", ctx, []string{"a", "b"}).Return([][]float64{{1}, {2}}, nil).Once()
	inner.On("EmbedStrings", ctx, []string{"c"}).Return([][]float64{{3}}, nil).Once()

	metrics := monitoring.NewMetrics()
	c := NewCachedEmbedder(inner, cache.NewVectorCache(store), "mini", metrics, nil)

	vecs, err := c.EmbedStrings(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1}, {2}}, vecs)

	vecs, err = c.EmbedStrings(ctx, []string{"b", "c", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2}, {3}, {1}}, vecs)

	inner.AssertExpectations(t)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.CacheLookups("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheLookups("hit")))
}

func TestCachedEmbedder_KeysIncludeModel(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore(time.Hour)
	defer store.Close()
	vc := cache.NewVectorCache(store)

	first := &mockEmbedder{}
	first.On("EmbedStrings", ctx, []string{"a"}).Return([][]float64{{1}}, nil).Once()
	second := &mockEmbedder{}
	second.On("EmbedStrings", ctx, []string{"a"}).Return([][]float64{{9}}, nil).Once()

	_, err := NewCachedEmbedder(first, vc, "m1", nil, nil).EmbedStrings(ctx, []string{"a"})
	require.NoError(t, err)
	vecs, err := NewCachedEmbedder(second, vc, "m2", nil, nil).EmbedStrings(ctx, []string{"a"})
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{9}}, vecs)
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestCachedEmbedder_PropagatesErrors(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore(time.Hour)
	defer store.Close()

	inner := &mockEmbedder{}
	inner.On("EmbedStrings", ctx, []string{"a"}).Return(nil, errors.New("boom"))

	_, err := NewCachedEmbedder(inner, cache.NewVectorCache(store), "mini", nil, nil).EmbedStrings(ctx, []string{"a"})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 0, store.Size())
}

func TestLanguageToolClient_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/check", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "en-US", r.PostForm.Get("language"))
		assert.Equal(t, "he go home", r.PostForm.Get("text"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"matches":[{"message":"Possible agreement error","offset":3,"length":2,
			"rule":{"id":"HE_VERB_AGR","category":{"id":"GRAMMAR","name":"Grammar"}}}]}`)
	}))
	defer srv.Close()

	c, err := NewLanguageToolClient(LanguageToolConfig{URL: srv.URL})
	require.NoError(t, err)

	issues, err := c.Check(context.Background(), "he go home")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "HE_VERB_AGR", issues[0].RuleID)
	assert.Equal(t, "Grammar", issues[0].Category)
	assert.Equal(t, "Possible agreement error", issues[0].Message)
	assert.Equal(t, 3, issues[0].Offset)
	assert.Equal(t, 2, issues[0].Length)
}

func TestLanguageToolClient_SingleAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	health := &healthLog{}
	c, err := NewLanguageToolClient(LanguageToolConfig{URL: srv.URL}, WithHealth(health))
	require.NoError(t, err)

	_, err = c.Check(context.Background(), "text")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Len(t, health.outcomes[serviceGrammar], 1)
}

func TestLanguageToolClient_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/languages" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `[{"name":"English (US)","code":"en","longCode":"en-US"}]`)
	}))
	defer srv.Close()

	c, err := NewLanguageToolClient(LanguageToolConfig{URL: srv.URL + "/"})
	require.NoError(t, err)
	assert.NoError(t, c.Probe(context.Background()))

	_, err = NewLanguageToolClient(LanguageToolConfig{})
	assert.Error(t, err)
}

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.calls++
	if len(input) > 0 {
		f.prompt = input[0].Content
	}
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func TestSummaryClient_Summarize(t *testing.T) {
	gen := &fakeGenerator{reply: "  Keep it up!  \n"}
	s := NewSummaryClientWithGenerator(gen, SummaryConfig{Model: "gpt", RequestsPerMinute: 6000})

	text, err := s.Summarize(context.Background(), "Score: 80")
	require.NoError(t, err)
	assert.Equal(t, "Keep it up!", text)
	assert.Equal(t, "Score: 80", gen.prompt)
}

func TestSummaryClient_ErrorsAreNotRetried(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream 503")}
	health := &healthLog{}
	s := NewSummaryClientWithGenerator(gen, SummaryConfig{Model: "gpt", RequestsPerMinute: 6000}, WithHealth(health))

	_, err := s.Summarize(context.Background(), "prompt")
	assert.ErrorContains(t, err, "upstream 503")
	assert.Equal(t, 1, gen.calls)
	assert.Len(t, health.outcomes[serviceSummary], 1)
}

func TestSummaryClient_RateLimitHonorsContext(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	s := NewSummaryClientWithGenerator(gen, SummaryConfig{Model: "gpt", RequestsPerMinute: 1})

	_, err := s.Summarize(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Summarize(ctx, "second")
	assert.Error(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestNewSummaryClient_OpenAICompatibleServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "coach-1", body.Model)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"coach-1",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Nice introduction."},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}}`)
	}))
	defer srv.Close()

	s, err := NewSummaryClient(context.Background(), SummaryConfig{
		BaseURL: srv.URL,
		APIKey:  "sk-test",
		Model:   "coach-1",
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)

	text, err := s.Summarize(context.Background(), "Give feedback")
	require.NoError(t, err)
	assert.Equal(t, "Nice introduction.", text)
}

func TestNewSummaryClient_Validation(t *testing.T) {
	_, err := NewSummaryClient(context.Background(), SummaryConfig{Model: "m"})
	assert.Error(t, err)
	_, err = NewSummaryClient(context.Background(), SummaryConfig{APIKey: "k"})
	assert.Error(t, err)
}
