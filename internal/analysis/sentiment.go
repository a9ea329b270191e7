package analysis

import (
	"fmt"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/sentiment"
)

// PolarityAnalyzer produces VADER-style polarity scores
type PolarityAnalyzer interface {
	Polarity(text string) sentiment.Scores
}

// ScoreSentiment grades positivity; the tone label is informational only
func ScoreSentiment(analyzer PolarityAnalyzer, text string) ScoreContribution {
	s := analyzer.Polarity(text)
	b := floorBand(s.Pos, positivityBands)

	return ScoreContribution{
		Name:      ContribSentiment,
		Points:    b.points,
		MaxPoints: maxSentiment,
		Rationale: fmt.Sprintf("%s (score: %.2f)", tone(s.Compound), s.Pos),
	}
}

func tone(compound float64) string {
	switch {
	case compound >= 0.05:
		return "Positive"
	case compound <= -0.05:
		return "Negative"
	default:
		return "Neutral"
	}
}
