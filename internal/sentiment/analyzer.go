// Package sentiment adapts the VADER analyzer to the scoring engine.
package sentiment

import (
	"fmt"
	"math"

	"github.com/jonreiter/govader"
)

// Scores holds polarity proportions (Pos, Neg, Neu in [0,1]) and the
// normalized Compound score in [-1,1].
type Scores struct {
	Pos      float64 `json:"pos"`
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Compound float64 `json:"compound"`
}

// Analyzer is safe for concurrent use once built.
type Analyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer loads the VADER lexicon. Loading is expensive; build one per
// process and share it.
func NewAnalyzer() (a *Analyzer, err error) {
	// govader panics when its embedded assets fail to parse
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("failed to load sentiment lexicon: %v", r)
		}
	}()
	return &Analyzer{sia: govader.NewSentimentIntensityAnalyzer()}, nil
}

// Size returns the number of lexicon entries.
func (a *Analyzer) Size() int {
	return len(a.sia.Lexicon)
}

// Polarity scores text. Proportions are rounded to three places and the
// compound score to four, the precision the reference VADER reports.
func (a *Analyzer) Polarity(text string) Scores {
	s := a.sia.PolarityScores(text)
	return Scores{
		Pos:      round(s.Positive, 3),
		Neg:      round(s.Negative, 3),
		Neu:      round(s.Neutral, 3),
		Compound: round(s.Compound, 4),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
