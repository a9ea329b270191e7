package analysis

import (
	"fmt"
	"strings"
)

// ScoreSalutation grades the greeting in the first sentence (text before the first '.')
func (r *Rubric) ScoreSalutation(text string) ScoreContribution {
	first := strings.SplitN(strings.ToLower(strings.TrimSpace(text)), ".", 2)[0]

	points, rationale := 0, "No salutation found"
	switch {
	case containsAny(first, r.Salutation.Excellent):
		points, rationale = 5, "Excellent salutation"
	case containsAny(first, r.Salutation.Good):
		points, rationale = 4, "Good salutation"
	case containsAny(first, r.Salutation.Normal):
		points, rationale = 2, "Normal salutation"
	}

	return ScoreContribution{Name: ContribSalutation, Points: points, MaxPoints: maxSalutation, Rationale: rationale}
}

// ScoreKeywords awards points per rubric topic mentioned anywhere in the text
func (r *Rubric) ScoreKeywords(text string) ScoreContribution {
	lower := strings.ToLower(text)

	points := 0
	var found, missing []string
	for _, c := range r.Keywords.MustHave {
		if containsAny(lower, c.Terms) {
			points += mustHavePoints
			found = append(found, c.Name)
		} else {
			missing = append(missing, c.Name)
		}
	}
	for _, c := range r.Keywords.GoodToHave {
		if containsAny(lower, c.Terms) {
			points += goodToHavePoints
		}
	}
	if points > maxKeywords {
		points = maxKeywords
	}

	return ScoreContribution{
		Name:      ContribKeywords,
		Points:    points,
		MaxPoints: maxKeywords,
		Rationale: fmt.Sprintf("Found: %s | Missing: %s", joinOrNone(found), joinOrNone(missing)),
	}
}

// ScoreFlow checks greeting, early identity details and a closing line
func (r *Rubric) ScoreFlow(text string) ScoreContribution {
	c := ScoreContribution{Name: ContribFlow, MaxPoints: maxFlow}

	sentences := SplitSentences(text)
	if len(sentences) < 3 {
		c.Rationale = "Too short to evaluate flow"
		return c
	}

	points := maxFlow
	var issues []string

	if !containsAny(strings.ToLower(sentences[0]), r.Flow.Greetings) {
		points--
		issues = append(issues, "Missing salutation")
	}
	if !containsAny(strings.ToLower(strings.Join(sentences[:3], " ")), r.Flow.Identity) {
		points -= 2
		issues = append(issues, "Basic details not introduced early")
	}
	if !containsAny(strings.ToLower(sentences[len(sentences)-1]), r.Flow.Closings) {
		points--
		issues = append(issues, "No closing statement")
	}

	if points < 0 {
		points = 0
	}
	c.Points = points
	if len(issues) == 0 {
		c.Rationale = "Good flow maintained"
	} else {
		c.Rationale = strings.Join(issues, "; ")
	}
	return c
}

// ScoreFillers counts filler words bounded by a leading space and a trailing space, comma or period
func (r *Rubric) ScoreFillers(text string) ScoreContribution {
	lower := strings.ToLower(text)
	words := WordCount(text)

	total := 0
	var found []string
	for _, f := range r.Fillers {
		n := strings.Count(lower, " "+f+" ") +
			strings.Count(lower, " "+f+",") +
			strings.Count(lower, " "+f+".")
		if n == 0 {
			continue
		}
		total += n
		if len(found) < 3 {
			found = append(found, fmt.Sprintf("%s(%d)", f, n))
		}
	}

	rate := safeDiv(float64(total), float64(words)) * 100
	b := ceilingBand(rate, fillerBands)

	rationale := fmt.Sprintf("%d fillers (%.1f%%)", total, rate)
	if len(found) > 0 {
		rationale += ": " + strings.Join(found, ", ")
	}

	return ScoreContribution{Name: ContribFillers, Points: b.points, MaxPoints: maxFillers, Rationale: rationale}
}

// ScoreVocabulary grades lexical diversity as a type-token ratio
func ScoreVocabulary(text string) ScoreContribution {
	tokens := strings.Fields(strings.ToLower(text))
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}

	ttr := safeDiv(float64(len(unique)), float64(len(tokens)))
	b := floorBand(ttr, ratioBands)

	return ScoreContribution{
		Name:      ContribVocabulary,
		Points:    b.points,
		MaxPoints: maxVocabulary,
		Rationale: fmt.Sprintf("TTR: %.2f", ttr),
	}
}

// ScoreSpeechRate grades words per minute. Both extremes are penalized.
// durationSeconds must be positive; Scorer.Score enforces this.
func ScoreSpeechRate(words int, durationSeconds float64) ScoreContribution {
	wpm := safeDiv(float64(words), durationSeconds) * 60

	var points int
	var label string
	switch {
	case wpm > 161:
		points, label = 2, "Too Fast"
	case wpm >= 141:
		points, label = 6, "Fast"
	case wpm >= 111:
		points, label = 10, "Ideal"
	case wpm >= 81:
		points, label = 6, "Slow"
	default:
		points, label = 2, "Too Slow"
	}

	return ScoreContribution{
		Name:      ContribSpeechRate,
		Points:    points,
		MaxPoints: maxSpeechRate,
		Rationale: fmt.Sprintf("%s (%.1f WPM)", label, wpm),
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
