// Package report renders score reports for people: interpretation bands and
// the plain-text and JSON report layouts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/analysis"
)

// Band is a labelled score range
type Band struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

var overallBands = []struct {
	min  float64
	band Band
}{
	{80, Band{"Excellent!", "Outstanding communication skills demonstrated."}},
	{60, Band{"Good!", "Strong performance with room for minor improvements."}},
	{40, Band{"Fair", "Some good elements, but needs improvement in key areas."}},
	{0, Band{"Needs Work", "Significant improvements needed across multiple areas."}},
}

// Interpretation maps an overall score (0-100) to its band
func Interpretation(overall float64) Band {
	for _, b := range overallBands {
		if overall >= b.min {
			return b.band
		}
	}
	return overallBands[len(overallBands)-1].band
}

// SemanticInterpretation describes an average template similarity
func SemanticInterpretation(avg float64) string {
	switch {
	case avg >= 0.7:
		return "Strong semantic alignment with ideal self-introductions!"
	case avg >= 0.5:
		return "Good semantic structure detected."
	default:
		return "Consider adding more typical self-introduction elements."
	}
}

const (
	heavyRule = "=================================================="
	lightRule = "--------------------------------------------------"
)

// WriteText writes the plain-text report
func WriteText(w io.Writer, r *analysis.ScoreReport) error {
	var b strings.Builder

	band := Interpretation(r.OverallScore)
	b.WriteString("COMMUNICATION SKILLS SCORING REPORT\n")
	b.WriteString(heavyRule + "\n\n")
	fmt.Fprintf(&b, "Overall Score: %v/100 (%s)\n", r.OverallScore, band.Label)
	fmt.Fprintf(&b, "%s\n", band.Description)
	fmt.Fprintf(&b, "Word Count: %d\n", r.Words)
	fmt.Fprintf(&b, "Sentences: %d\n", r.Sentences)
	fmt.Fprintf(&b, "Duration: %.0f seconds\n\n", r.DurationSeconds)

	b.WriteString("DETAILED SCORES:\n")
	b.WriteString(lightRule + "\n")
	for _, c := range r.Criteria {
		fmt.Fprintf(&b, "\n%s: %d/%d (%.1f%%)\n", c.Name, c.TotalScore, c.MaxScore, percent(c.TotalScore, c.MaxScore))
		for _, sub := range c.Contributions {
			fmt.Fprintf(&b, "  - %s: %d/%d - %s\n", sub.Name, sub.Points, sub.MaxPoints, sub.Rationale)
		}
	}

	b.WriteString("\nSEMANTIC ANALYSIS:\n")
	fmt.Fprintf(&b, "Average Similarity: %.3f\n", r.SemanticAnalysis.AvgSimilarity)
	fmt.Fprintf(&b, "Best Match: %.3f\n", r.SemanticAnalysis.MaxSimilarity)
	fmt.Fprintf(&b, "%s\n", SemanticInterpretation(r.SemanticAnalysis.AvgSimilarity))

	fmt.Fprintf(&b, "\n%s\nAI FEEDBACK:\n%s\n", heavyRule, r.AIFeedback)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes the report in its wire format, indented for reading
func WriteJSON(w io.Writer, r *analysis.ScoreReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func percent(score, max int) float64 {
	if max == 0 {
		return 0
	}
	return float64(score) / float64(max) * 100
}
