// Package validation checks request bodies against their JSON schema before
// they are decoded.
package validation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/types"
)

//go:embed schema.json
var scoreRequestSchema []byte

// RequestValidator validates and decodes score requests. It is safe for
// concurrent use.
type RequestValidator struct {
	schema *gojsonschema.Schema
}

// NewRequestValidator compiles the embedded score request schema
func NewRequestValidator() (*RequestValidator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(scoreRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile request schema: %w", err)
	}
	return &RequestValidator{schema: s}, nil
}

// DecodeScoreRequest validates body and decodes it. Schema violations come
// back as a validation AppError with one detail per field.
func (v *RequestValidator) DecodeScoreRequest(body []byte) (*types.ScoreRequest, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, errors.NewValidationErrorWithMap(map[string]string{"body": "must be a valid JSON object"})
	}

	if !result.Valid() {
		return nil, errors.NewValidationErrorWithMap(fieldErrors(result.Errors()))
	}

	var req types.ScoreRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.NewValidationErrorWithMap(map[string]string{"body": err.Error()})
	}
	return &req, nil
}

// fieldErrors groups schema errors by field. The root object is reported as "body".
func fieldErrors(errs []gojsonschema.ResultError) map[string]string {
	grouped := make(map[string][]string)
	for _, e := range errs {
		field := e.Field()
		if field == "(root)" || field == "" {
			field = "body"
			if prop, ok := e.Details()["property"].(string); ok && prop != "" {
				field = prop
			}
		}
		grouped[field] = append(grouped[field], e.Description())
	}

	out := make(map[string]string, len(grouped))
	for field, msgs := range grouped {
		sort.Strings(msgs)
		out[field] = strings.Join(msgs, "; ")
	}
	return out
}
