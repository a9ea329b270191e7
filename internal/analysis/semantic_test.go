package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTemplates = []string{"name and age", "family", "hobbies", "goals", "unique facts"}

func templateVectors(vec []float64) [][]float64 {
	out := make([][]float64, len(testTemplates))
	for i := range out {
		out[i] = vec
	}
	return out
}

func TestNewSemanticScorerEmbedsTemplatesOnce(t *testing.T) {
	ctx := context.Background()
	m := new(MockEmbedder)
	m.On("EmbedStrings", mock.Anything, testTemplates).Return(templateVectors([]float64{1, 0}), nil).Once()
	m.On("EmbedStrings", mock.Anything, []string{"transcript"}).Return([][]float64{{1, 0}}, nil).Times(2)

	s, err := NewSemanticScorer(ctx, m, testTemplates)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _, err := s.Score(ctx, "transcript")
		require.NoError(t, err)
	}

	m.AssertExpectations(t)
}

func TestNewSemanticScorerErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSemanticScorer(ctx, nil, testTemplates)
		assert.Error(t, err)
	})

	t.Run("no templates", func(t *testing.T) {
		_, err := NewSemanticScorer(ctx, constantEmbedder{vec: []float64{1}}, nil)
		assert.Error(t, err)
	})

	t.Run("provider failure", func(t *testing.T) {
		m := new(MockEmbedder)
		m.On("EmbedStrings", mock.Anything, testTemplates).Return(nil, errors.New("model not loaded"))
		_, err := NewSemanticScorer(ctx, m, testTemplates)
		assert.ErrorContains(t, err, "model not loaded")
	})

	t.Run("mismatched dimensions", func(t *testing.T) {
		m := new(MockEmbedder)
		vecs := templateVectors([]float64{1, 0})
		vecs[3] = []float64{1, 0, 0}
		m.On("EmbedStrings", mock.Anything, testTemplates).Return(vecs, nil)
		_, err := NewSemanticScorer(ctx, m, testTemplates)
		assert.Error(t, err)
	})
}

func TestSemanticScore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		transcript []float64
		points     int
		rationale  string
		avg        float64
	}{
		{"identical direction", []float64{3, 0}, 10, "Excellent semantic match (avg: 1.000, max: 1.000)", 1},
		{"orthogonal", []float64{0, 2}, 2, "Weak semantic match (avg: 0.000, max: 0.000)", 0},
		{"opposite is clamped in report", []float64{-1, 0}, 2, "Weak semantic match (avg: -1.000, max: -1.000)", 0},
		{"zero vector", []float64{0, 0}, 2, "Weak semantic match (avg: 0.000, max: 0.000)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockEmbedder)
			m.On("EmbedStrings", mock.Anything, testTemplates).Return(templateVectors([]float64{1, 0}), nil)
			m.On("EmbedStrings", mock.Anything, []string{"text"}).Return([][]float64{tt.transcript}, nil)

			s, err := NewSemanticScorer(ctx, m, testTemplates)
			require.NoError(t, err)

			c, sa, err := s.Score(ctx, "text")
			require.NoError(t, err)
			assert.Equal(t, tt.points, c.Points)
			assert.Equal(t, tt.rationale, c.Rationale)
			assert.Equal(t, tt.avg, sa.AvgSimilarity)
		})
	}
}

func TestSemanticScoreBands(t *testing.T) {
	ctx := context.Background()

	// templates split between two axes so the mean lands between bands
	m := new(MockEmbedder)
	m.On("EmbedStrings", mock.Anything, testTemplates).Return([][]float64{
		{1, 0}, {1, 0}, {1, 0}, {0, 1}, {0, 1},
	}, nil)
	m.On("EmbedStrings", mock.Anything, []string{"text"}).Return([][]float64{{1, 0}}, nil)

	s, err := NewSemanticScorer(ctx, m, testTemplates)
	require.NoError(t, err)

	c, sa, err := s.Score(ctx, "text")
	require.NoError(t, err)
	assert.Equal(t, 8, c.Points)
	assert.Equal(t, "Good semantic alignment (avg: 0.600, max: 1.000)", c.Rationale)
	assert.Equal(t, 0.6, sa.AvgSimilarity)
	assert.Equal(t, 1.0, sa.MaxSimilarity)
}

func TestSemanticScorePropagatesProviderError(t *testing.T) {
	ctx := context.Background()
	m := new(MockEmbedder)
	m.On("EmbedStrings", mock.Anything, testTemplates).Return(templateVectors([]float64{1, 0}), nil)
	m.On("EmbedStrings", mock.Anything, []string{"text"}).Return(nil, errors.New("timeout"))

	s, err := NewSemanticScorer(ctx, m, testTemplates)
	require.NoError(t, err)

	_, _, err = s.Score(ctx, "text")
	assert.Error(t, err)
}
