package analysis

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rubric.yaml
var defaultRubricYAML []byte

// KeywordCategory is one rubric topic and the phrases that evidence it
type KeywordCategory struct {
	Name  string   `yaml:"name" json:"name"`
	Terms []string `yaml:"terms" json:"terms"`
}

// Rubric holds the phrase dictionaries the lexical scorers match against
type Rubric struct {
	Salutation struct {
		Excellent []string `yaml:"excellent" json:"excellent"`
		Good      []string `yaml:"good" json:"good"`
		Normal    []string `yaml:"normal" json:"normal"`
	} `yaml:"salutation" json:"salutation"`

	Keywords struct {
		MustHave   []KeywordCategory `yaml:"must_have" json:"must_have"`
		GoodToHave []KeywordCategory `yaml:"good_to_have" json:"good_to_have"`
	} `yaml:"keywords" json:"keywords"`

	Flow struct {
		Greetings []string `yaml:"greetings" json:"greetings"`
		Identity  []string `yaml:"identity" json:"identity"`
		Closings  []string `yaml:"closings" json:"closings"`
	} `yaml:"flow" json:"flow"`

	Fillers   []string `yaml:"fillers" json:"fillers"`
	Templates []string `yaml:"templates" json:"templates"`
}

var defaultRubric = mustParseRubric(defaultRubricYAML)

// DefaultRubric returns the built-in rubric. Callers must not mutate it.
func DefaultRubric() *Rubric {
	return defaultRubric
}

// LoadRubric reads a rubric file. An empty path yields the built-in rubric.
func LoadRubric(path string) (*Rubric, error) {
	if path == "" {
		return DefaultRubric(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric file: %w", err)
	}

	return ParseRubric(data)
}

// ParseRubric decodes and validates rubric YAML
func ParseRubric(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode rubric: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks the rubric has the shape the point tables assume
func (r *Rubric) Validate() error {
	if n := len(r.Keywords.MustHave); n != mustHaveCategories {
		return fmt.Errorf("rubric needs %d must-have keyword categories, got %d", mustHaveCategories, n)
	}
	if n := len(r.Keywords.GoodToHave); n != goodToHaveCategories {
		return fmt.Errorf("rubric needs %d good-to-have keyword categories, got %d", goodToHaveCategories, n)
	}
	for _, c := range append(append([]KeywordCategory{}, r.Keywords.MustHave...), r.Keywords.GoodToHave...) {
		if c.Name == "" || len(c.Terms) == 0 {
			return fmt.Errorf("keyword category %q has no terms", c.Name)
		}
	}
	if len(r.Salutation.Excellent) == 0 || len(r.Salutation.Good) == 0 || len(r.Salutation.Normal) == 0 {
		return fmt.Errorf("rubric salutation tiers must all be non-empty")
	}
	if len(r.Flow.Greetings) == 0 || len(r.Flow.Identity) == 0 || len(r.Flow.Closings) == 0 {
		return fmt.Errorf("rubric flow token lists must all be non-empty")
	}
	if len(r.Fillers) == 0 {
		return fmt.Errorf("rubric filler list is empty")
	}
	if len(r.Templates) == 0 {
		return fmt.Errorf("rubric has no semantic templates")
	}
	return nil
}

func mustParseRubric(data []byte) *Rubric {
	r, err := ParseRubric(data)
	if err != nil {
		panic(fmt.Sprintf("embedded rubric is invalid: %v", err))
	}
	return r
}
