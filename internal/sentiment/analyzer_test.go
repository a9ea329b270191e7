package sentiment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-3

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer()
	require.NoError(t, err)
	return a
}

func TestNewAnalyzerLoadsLexicon(t *testing.T) {
	a := newAnalyzer(t)
	assert.Greater(t, a.Size(), 7000)
}

// Reference values are the outputs of the reference VADER implementation.
func TestPolarityMatchesReferenceVADER(t *testing.T) {
	tests := []struct {
		text string
		want Scores
	}{
		{"The book was good.", Scores{Pos: 0.492, Neu: 0.508, Compound: 0.4404}},
		{"VADER is smart, handsome, and funny.", Scores{Pos: 0.746, Neu: 0.254, Compound: 0.8316}},
		{"VADER is smart, handsome, and funny!", Scores{Pos: 0.752, Neu: 0.248, Compound: 0.8439}},
		{"VADER is VERY SMART, handsome, and FUNNY.", Scores{Pos: 0.754, Neu: 0.246, Compound: 0.9227}},
		{"VADER is not smart, handsome, nor funny.", Scores{Neg: 0.646, Neu: 0.354, Compound: -0.7424}},
		{"The plot was good, but the characters are uncompelling and the dialog is not great.", Scores{Pos: 0.094, Neg: 0.327, Neu: 0.579, Compound: -0.7042}},
		{"Not bad at all", Scores{Pos: 0.487, Neu: 0.513, Compound: 0.431}},
		{"Sentiment analysis has never been good.", Scores{Neg: 0.325, Neu: 0.675, Compound: -0.3412}},
		{"Make sure you :) or :D today!", Scores{Pos: 0.706, Neu: 0.294, Compound: 0.8633}},
	}

	a := newAnalyzer(t)
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := a.Polarity(tt.text)
			assert.InDelta(t, tt.want.Pos, got.Pos, tolerance)
			assert.InDelta(t, tt.want.Neg, got.Neg, tolerance)
			assert.InDelta(t, tt.want.Neu, got.Neu, tolerance)
			assert.InDelta(t, tt.want.Compound, got.Compound, tolerance)
		})
	}
}

func TestPolarityOnIntroductions(t *testing.T) {
	a := newAnalyzer(t)

	enthusiastic := a.Polarity("I am thrilled, joyful and elated. Glorious, splendid, marvelous day!")
	assert.InDelta(t, 0.853, enthusiastic.Pos, tolerance)

	warm := a.Polarity("Hi. I am Sam. I adore painting, it is delightful and I feel blessed and grateful.")
	assert.InDelta(t, 0.544, warm.Pos, tolerance)
	assert.Greater(t, warm.Compound, 0.0)
}

func TestPolarityRounding(t *testing.T) {
	s := newAnalyzer(t).Polarity("Hello, my name is Priya and I am from Pune. I love reading books.")

	assert.Equal(t, round(s.Pos, 3), s.Pos)
	assert.Equal(t, round(s.Compound, 4), s.Compound)
	assert.InDelta(t, 1.0, s.Pos+s.Neg+s.Neu, 2e-3)
}

func TestPolarityEmptyText(t *testing.T) {
	assert.Equal(t, Scores{}, newAnalyzer(t).Polarity(""))
}

func TestPolarityConcurrentUse(t *testing.T) {
	a := newAnalyzer(t)
	want := a.Polarity("The book was good.")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, a.Polarity("The book was good."))
		}()
	}
	wg.Wait()
}
