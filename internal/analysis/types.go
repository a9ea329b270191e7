package analysis

// ScoreContribution is one explained line of the score
type ScoreContribution struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"max_points"`
	Rationale string `json:"rationale"`
}

// CriterionResult groups the contributions of one rubric category
type CriterionResult struct {
	Name          string              `json:"name"`
	Weight        int                 `json:"weight"`
	TotalScore    int                 `json:"total_score"`
	MaxScore      int                 `json:"max_score"`
	Contributions []ScoreContribution `json:"contributions"`
}

// SemanticAnalysis summarizes transcript-to-template similarity
type SemanticAnalysis struct {
	AvgSimilarity float64 `json:"avg_similarity"`
	MaxSimilarity float64 `json:"max_similarity"`
}

// ScoreReport is the result of one scoring run
type ScoreReport struct {
	OverallScore     float64           `json:"overall_score"`
	Words            int               `json:"words"`
	Sentences        int               `json:"sentences"`
	DurationSeconds  float64           `json:"duration_seconds"`
	Criteria         []CriterionResult `json:"criteria_scores"`
	SemanticAnalysis SemanticAnalysis  `json:"semantic_analysis"`
	AIFeedback       string            `json:"ai_feedback"`

	// provenance for logs and the text report; not part of the wire format
	GrammarSource  string `json:"-"`
	FeedbackSource string `json:"-"`
}

// Criterion returns the named criterion, if present
func (r *ScoreReport) Criterion(name string) (CriterionResult, bool) {
	for _, c := range r.Criteria {
		if c.Name == name {
			return c, true
		}
	}
	return CriterionResult{}, false
}

// Rubric category and contribution names, in presentation order
const (
	CriterionContent  = "Content & Structure"
	CriterionSpeech   = "Speech Rate"
	CriterionLanguage = "Language & Grammar"
	CriterionClarity  = "Clarity"
	CriterionEngage   = "Engagement"

	ContribSalutation = "Salutation"
	ContribKeywords   = "Keyword Presence"
	ContribFlow       = "Flow"
	ContribSemantic   = "Semantic Similarity (NLP)"
	ContribSpeechRate = "Speech Rate"
	ContribGrammar    = "Grammar"
	ContribVocabulary = "Vocabulary Richness"
	ContribFillers    = "Filler Words"
	ContribSentiment  = "Sentiment"
)

// Point ceilings per contribution
const (
	maxSalutation = 5
	maxKeywords   = 30
	maxFlow       = 5
	maxSemantic   = 10
	maxSpeechRate = 10
	maxGrammar    = 10
	maxVocabulary = 10
	maxFillers    = 15
	maxSentiment  = 15

	mustHavePoints       = 4
	goodToHavePoints     = 2
	mustHaveCategories   = 5
	goodToHaveCategories = 5

	// PossiblePoints is the sum of every criterion's max score
	PossiblePoints = 110

	// assumed speaking rate when no duration is supplied
	baselineWPM = 150.0
)

// CriterionSpec describes one rubric category for rendering
type CriterionSpec struct {
	Name          string             `json:"name"`
	Weight        int                `json:"weight"`
	MaxScore      int                `json:"max_score"`
	Contributions []ContributionSpec `json:"subcriteria"`
}

// ContributionSpec names one scored line and its ceiling
type ContributionSpec struct {
	Name      string `json:"name"`
	MaxPoints int    `json:"max_points"`
}

var criteria = []CriterionSpec{
	{Name: CriterionContent, Weight: 40, Contributions: []ContributionSpec{
		{ContribSalutation, maxSalutation},
		{ContribKeywords, maxKeywords},
		{ContribFlow, maxFlow},
		{ContribSemantic, maxSemantic},
	}},
	{Name: CriterionSpeech, Weight: 10, Contributions: []ContributionSpec{
		{ContribSpeechRate, maxSpeechRate},
	}},
	{Name: CriterionLanguage, Weight: 20, Contributions: []ContributionSpec{
		{ContribGrammar, maxGrammar},
		{ContribVocabulary, maxVocabulary},
	}},
	{Name: CriterionClarity, Weight: 15, Contributions: []ContributionSpec{
		{ContribFillers, maxFillers},
	}},
	{Name: CriterionEngage, Weight: 15, Contributions: []ContributionSpec{
		{ContribSentiment, maxSentiment},
	}},
}

// Criteria returns the rubric layout in presentation order
func Criteria() []CriterionSpec {
	out := make([]CriterionSpec, len(criteria))
	for i, c := range criteria {
		c.MaxScore = 0
		for _, s := range c.Contributions {
			c.MaxScore += s.MaxPoints
		}
		c.Contributions = append([]ContributionSpec(nil), c.Contributions...)
		out[i] = c
	}
	return out
}
