package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/mock"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/sentiment"
)

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float64), args.Error(1)
}

// constantEmbedder maps every text to the same vector
type constantEmbedder struct {
	vec []float64
}

func (e constantEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = append([]float64(nil), e.vec...)
	}
	return out, nil
}

type MockGrammarChecker struct {
	mock.Mock
}

func (m *MockGrammarChecker) Check(ctx context.Context, text string) ([]GrammarIssue, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]GrammarIssue), args.Error(1)
}

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type stubPolarity struct {
	scores sentiment.Scores
}

func (s stubPolarity) Polarity(string) sentiment.Scores {
	return s.scores
}

type recordingObserver struct {
	mu       sync.Mutex
	criteria map[string]float64
	calls    map[string]string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{criteria: map[string]float64{}, calls: map[string]string{}}
}

func (o *recordingObserver) RecordCriterion(name string, points float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.criteria[name] = points
}

func (o *recordingObserver) RecordExternalCall(service, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls[service] = outcome
}
