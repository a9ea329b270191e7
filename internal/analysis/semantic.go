package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/cloudwego/eino/components/embedding"
)

// SemanticScorer compares a transcript against the rubric's ideal-introduction
// templates. Template vectors are computed once at construction.
type SemanticScorer struct {
	embedder  embedding.Embedder
	templates [][]float64
}

// NewSemanticScorer embeds the templates up front. Failure here means the
// embedding provider is unusable and scoring cannot proceed.
func NewSemanticScorer(ctx context.Context, embedder embedding.Embedder, templates []string) (*SemanticScorer, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedding provider is required")
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("at least one semantic template is required")
	}

	vecs, err := embedder.EmbedStrings(ctx, templates)
	if err != nil {
		return nil, fmt.Errorf("failed to embed templates: %w", err)
	}
	if len(vecs) != len(templates) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d templates", len(vecs), len(templates))
	}
	for i, v := range vecs {
		if len(v) == 0 || len(v) != len(vecs[0]) {
			return nil, fmt.Errorf("template %d has dimension %d, want %d", i, len(v), len(vecs[0]))
		}
	}

	return &SemanticScorer{embedder: embedder, templates: vecs}, nil
}

// Score embeds text and grades the mean cosine similarity to the templates
func (s *SemanticScorer) Score(ctx context.Context, text string) (ScoreContribution, SemanticAnalysis, error) {
	vecs, err := s.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return ScoreContribution{}, SemanticAnalysis{}, err
	}
	if len(vecs) != 1 || len(vecs[0]) != len(s.templates[0]) {
		return ScoreContribution{}, SemanticAnalysis{}, fmt.Errorf("unexpected transcript embedding shape")
	}

	sum, maxSim := 0.0, math.Inf(-1)
	for _, t := range s.templates {
		sim := cosine(vecs[0], t)
		sum += sim
		if sim > maxSim {
			maxSim = sim
		}
	}
	avg := sum / float64(len(s.templates))

	b := floorBand(avg, semanticBands)
	c := ScoreContribution{
		Name:      ContribSemantic,
		Points:    b.points,
		MaxPoints: maxSemantic,
		Rationale: fmt.Sprintf("%s (avg: %.3f, max: %.3f)", b.label, avg, maxSim),
	}
	sa := SemanticAnalysis{
		AvgSimilarity: roundTo(clip(avg, 0, 1), 3),
		MaxSimilarity: roundTo(clip(maxSim, 0, 1), 3),
	}
	return c, sa, nil
}

// cosine is 0 when either vector has zero magnitude
func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
