package analysis

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// GrammarIssue is one problem flagged by a grammar checker
type GrammarIssue struct {
	RuleID   string `json:"rule_id"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
}

// GrammarChecker is an external grammar-checking engine
type GrammarChecker interface {
	Check(ctx context.Context, text string) ([]GrammarIssue, error)
}

// Grammar sources reported in GrammarOutcome
const (
	GrammarSourceExternal  = "external"
	GrammarSourceHeuristic = "heuristic"
)

// GrammarOutcome is the result of one grammar analysis. Err is set when the
// external engine failed and the heuristic answered instead; it is never fatal.
type GrammarOutcome struct {
	Contribution ScoreContribution
	Issues       []GrammarIssue
	Source       string
	Err          error
}

// GrammarAnalyzer scores grammar. The variant is fixed at construction.
type GrammarAnalyzer interface {
	Analyze(ctx context.Context, text string) GrammarOutcome
	Source() string
}

// NewGrammarAnalyzer returns the external-engine variant when checker is
// non-nil and the heuristic variant otherwise
func NewGrammarAnalyzer(checker GrammarChecker, logger *zap.Logger) GrammarAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checker == nil {
		logger.Info("Grammar checker unavailable, using heuristic checks")
		return heuristicGrammar{}
	}
	return &externalGrammar{checker: checker, logger: logger}
}

type externalGrammar struct {
	checker GrammarChecker
	logger  *zap.Logger
}

func (g *externalGrammar) Source() string { return GrammarSourceExternal }

func (g *externalGrammar) Analyze(ctx context.Context, text string) GrammarOutcome {
	issues, err := g.checker.Check(ctx, text)
	if err != nil {
		g.logger.Warn("Grammar checker failed, falling back to basic checks", zap.Error(err))
		out := heuristicGrammar{}.Analyze(ctx, text)
		out.Err = err
		return out
	}

	words := WordCount(text)
	epw := safeDiv(float64(len(issues)), float64(words)) * 100
	ratio := 1 - min(epw/10, 1)
	b := floorBand(ratio, ratioBands)

	return GrammarOutcome{
		Contribution: ScoreContribution{
			Name:      ContribGrammar,
			Points:    b.points,
			MaxPoints: maxGrammar,
			Rationale: fmt.Sprintf("%d errors (%.1f per 100 words)", len(issues), epw),
		},
		Issues: issues,
		Source: GrammarSourceExternal,
	}
}

type heuristicGrammar struct{}

func (heuristicGrammar) Source() string { return GrammarSourceHeuristic }

// Analyze counts sentences that start lowercase or contain a double space
func (heuristicGrammar) Analyze(_ context.Context, text string) GrammarOutcome {
	issues := 0
	for _, s := range SplitSentences(text) {
		if r, _ := utf8.DecodeRuneInString(s); !unicode.IsUpper(r) {
			issues++
		}
		if strings.Contains(s, "  ") {
			issues++
		}
	}

	epw := safeDiv(float64(issues), float64(WordCount(text))) * 100
	ratio := max(0, 1-epw/10)
	b := floorBand(ratio, ratioBands)

	return GrammarOutcome{
		Contribution: ScoreContribution{
			Name:      ContribGrammar,
			Points:    b.points,
			MaxPoints: maxGrammar,
			Rationale: fmt.Sprintf("Basic check: %d issues found", issues),
		},
		Source: GrammarSourceHeuristic,
	}
}
