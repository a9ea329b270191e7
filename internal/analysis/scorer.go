package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/errors"
)

// Summarizer produces the prose feedback for a report
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Observer receives per-run measurements. monitoring.Metrics satisfies it.
type Observer interface {
	RecordCriterion(criterion string, points float64)
	RecordExternalCall(service, outcome string, duration time.Duration)
}

// Feedback sources reported in FeedbackOutcome
const (
	FeedbackSourceProvider = "provider"
	FeedbackSourceFallback = "fallback"
)

// FeedbackOutcome is the result of the summary request. Err records why the
// fallback text was used and is never surfaced as a scoring error.
type FeedbackOutcome struct {
	Text   string
	Source string
	Err    error
}

// Toolkit bundles the process-wide providers a Scorer needs. Grammar and
// Summarizer may be nil.
type Toolkit struct {
	Embedder   embedding.Embedder
	Sentiment  PolarityAnalyzer
	Grammar    GrammarChecker
	Summarizer Summarizer
}

// Scorer runs the full rubric over one transcript. It holds no per-call
// state and is safe for concurrent use.
type Scorer struct {
	rubric         *Rubric
	semantic       *SemanticScorer
	sentiment      PolarityAnalyzer
	grammar        GrammarAnalyzer
	summarizer     Summarizer
	summaryTimeout time.Duration
	observer       Observer
	logger         *zap.Logger
}

// Option configures a Scorer
type Option func(*Scorer)

// WithRubric replaces the built-in rubric
func WithRubric(r *Rubric) Option {
	return func(s *Scorer) { s.rubric = r }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Scorer) { s.logger = l }
}

// WithSummaryTimeout bounds the summary request
func WithSummaryTimeout(d time.Duration) Option {
	return func(s *Scorer) { s.summaryTimeout = d }
}

// WithObserver sets the metrics sink
func WithObserver(o Observer) Option {
	return func(s *Scorer) { s.observer = o }
}

const defaultSummaryTimeout = 8 * time.Second

// NewScorer validates the toolkit and embeds the rubric templates. A missing
// embedder or sentiment analyzer, or a failure embedding the templates, is a
// configuration error.
func NewScorer(ctx context.Context, tk Toolkit, opts ...Option) (*Scorer, error) {
	s := &Scorer{
		rubric:         DefaultRubric(),
		summaryTimeout: defaultSummaryTimeout,
		observer:       nopObserver{},
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.rubric.Validate(); err != nil {
		return nil, errors.NewConfigurationError("invalid rubric", err)
	}
	if tk.Sentiment == nil {
		return nil, errors.NewConfigurationError("sentiment analyzer is required", nil)
	}

	sem, err := NewSemanticScorer(ctx, tk.Embedder, s.rubric.Templates)
	if err != nil {
		return nil, errors.NewConfigurationError("semantic model unavailable", err)
	}

	s.semantic = sem
	s.sentiment = tk.Sentiment
	s.grammar = NewGrammarAnalyzer(tk.Grammar, s.logger)
	s.summarizer = tk.Summarizer

	s.logger.Info("Scorer initialized",
		zap.Int("templates", len(s.rubric.Templates)),
		zap.String("grammar_source", s.grammar.Source()),
		zap.Bool("summary_enabled", s.summarizer != nil),
	)

	return s, nil
}

// Rubric returns the rubric in use
func (s *Scorer) Rubric() *Rubric {
	return s.rubric
}

// GrammarSource reports which grammar variant was selected at construction
func (s *Scorer) GrammarSource() string {
	return s.grammar.Source()
}

// Score evaluates transcript. A nil duration is estimated from the word count
// at 150 WPM. Only invalid input and embedding failures are returned as errors;
// grammar and summary failures degrade to their fallbacks.
func (s *Scorer) Score(ctx context.Context, transcript string, duration *float64) (*ScoreReport, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.NewValidationErrorWithMap(map[string]string{"transcript": "must not be empty"})
	}
	if duration != nil {
		d := *duration
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			return nil, errors.NewValidationErrorWithMap(map[string]string{"duration_seconds": "must be a positive finite number"})
		}
	}

	words := WordCount(transcript)
	durationSeconds := float64(words) / baselineWPM * 60
	if duration != nil {
		durationSeconds = *duration
	}

	var (
		semantic    ScoreContribution
		semAnalysis SemanticAnalysis
		grammar     GrammarOutcome
		sentiment   ScoreContribution
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		var err error
		semantic, semAnalysis, err = s.semantic.Score(gctx, transcript)
		s.observer.RecordExternalCall("embedding", outcomeLabel(err), time.Since(start))
		if err != nil {
			return errors.NewExternalAPIError("embedding", err)
		}
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		grammar = s.grammar.Analyze(gctx, transcript)
		if s.grammar.Source() == GrammarSourceExternal {
			outcome := "ok"
			if grammar.Err != nil {
				outcome = "fallback"
			}
			s.observer.RecordExternalCall("grammar", outcome, time.Since(start))
		}
		return nil
	})
	g.Go(func() error {
		sentiment = ScoreSentiment(s.sentiment, transcript)
		return nil
	})

	salutation := s.rubric.ScoreSalutation(transcript)
	keywords := s.rubric.ScoreKeywords(transcript)
	flow := s.rubric.ScoreFlow(transcript)
	fillers := s.rubric.ScoreFillers(transcript)
	vocabulary := ScoreVocabulary(transcript)
	speech := ScoreSpeechRate(words, durationSeconds)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &ScoreReport{
		Words:           words,
		Sentences:       SentenceCount(transcript),
		DurationSeconds: durationSeconds,
		Criteria: []CriterionResult{
			newCriterion(criteria[0], salutation, keywords, flow, semantic),
			newCriterion(criteria[1], speech),
			newCriterion(criteria[2], grammar.Contribution, vocabulary),
			newCriterion(criteria[3], fillers),
			newCriterion(criteria[4], sentiment),
		},
		SemanticAnalysis: semAnalysis,
		GrammarSource:    grammar.Source,
	}

	total := 0
	for _, c := range report.Criteria {
		total += c.TotalScore
		s.observer.RecordCriterion(c.Name, float64(c.TotalScore))
	}
	report.OverallScore = roundTo(float64(total)/PossiblePoints*100, 2)

	fb := s.feedback(ctx, transcript, report)
	report.AIFeedback = fb.Text
	report.FeedbackSource = fb.Source

	return report, nil
}

func newCriterion(spec CriterionSpec, contribs ...ScoreContribution) CriterionResult {
	c := CriterionResult{
		Name:          spec.Name,
		Weight:        spec.Weight,
		Contributions: contribs,
	}
	for _, sc := range contribs {
		c.TotalScore += sc.Points
		c.MaxScore += sc.MaxPoints
	}
	return c
}

// feedback requests the summary and substitutes the fallback on any failure
func (s *Scorer) feedback(ctx context.Context, transcript string, report *ScoreReport) FeedbackOutcome {
	if s.summarizer == nil {
		return FeedbackOutcome{Text: FallbackFeedback(report.OverallScore), Source: FeedbackSourceFallback}
	}

	ctx, cancel := context.WithTimeout(ctx, s.summaryTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.summarizer.Summarize(ctx, BuildPrompt(transcript, report))
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("empty summary")
	}
	s.observer.RecordExternalCall("summary", outcomeLabel(err), time.Since(start))

	if err != nil {
		s.logger.Warn("Summary unavailable, using fallback feedback", zap.Error(err))
		return FeedbackOutcome{Text: FallbackFeedback(report.OverallScore), Source: FeedbackSourceFallback, Err: err}
	}
	return FeedbackOutcome{Text: strings.TrimSpace(text), Source: FeedbackSourceProvider}
}

// FallbackFeedback is the deterministic text used when no summary is available
func FallbackFeedback(overall float64) string {
	return fmt.Sprintf("Great effort on your self-introduction! Your score of %v/100 shows promise. "+
		"Focus on the areas highlighted in the detailed breakdown to improve further.", overall)
}

// BuildPrompt renders the summary request from the transcript and the
// headline of each criterion
func BuildPrompt(transcript string, report *ScoreReport) string {
	headline := func(criterion, contribution string) string {
		c, ok := report.Criterion(criterion)
		if !ok {
			return "N/A"
		}
		if contribution == "" {
			return fmt.Sprintf("%d/%d", c.TotalScore, c.MaxScore)
		}
		for _, sc := range c.Contributions {
			if sc.Name == contribution {
				return sc.Rationale
			}
		}
		return "N/A"
	}

	var b strings.Builder
	b.WriteString("You are evaluating a student's self-introduction transcript. Provide brief, constructive feedback (3-4 sentences).\n\n")
	fmt.Fprintf(&b, "Transcript: \"%s\"\n\n", transcript)
	fmt.Fprintf(&b, "Overall Score: %v/100\n\n", report.OverallScore)
	b.WriteString("Key areas evaluated:\n")
	fmt.Fprintf(&b, "- Content & Structure: %s\n", headline(CriterionContent, ""))
	fmt.Fprintf(&b, "- Speech Rate: %s\n", headline(CriterionSpeech, ContribSpeechRate))
	fmt.Fprintf(&b, "- Grammar: %s\n", headline(CriterionLanguage, ContribGrammar))
	fmt.Fprintf(&b, "- Clarity: %s\n", headline(CriterionClarity, ContribFillers))
	fmt.Fprintf(&b, "- Engagement: %s\n\n", headline(CriterionEngage, ContribSentiment))
	b.WriteString("Provide encouraging, specific, and actionable feedback.")
	return b.String()
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type nopObserver struct{}

func (nopObserver) RecordCriterion(string, float64)                  {}
func (nopObserver) RecordExternalCall(string, string, time.Duration) {}
