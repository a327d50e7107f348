// Package modeljson pulls a JSON value out of free-form model output.
//
// Models asked for "JSON only" still wrap replies in code fences or add a
// sentence before the payload. Decoding runs in two stages: the cleaned text
// is parsed as a whole, then the outermost bracketed span is tried.
package modeljson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Stage names the step at which decoding gave up.
type Stage string

const (
	StageEmpty   Stage = "empty"
	StageStrict  Stage = "strict"
	StageExtract Stage = "extract"
)

// ErrNoJSON is reported when the text contains no bracketed span.
var ErrNoJSON = errors.New("no JSON found in model output")

// ParseError is returned when neither stage yields a value.
type ParseError struct {
	Stage Stage
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model output %s parse: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Clean removes markdown code fences and surrounding whitespace.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// Object decodes the JSON object found in text into v.
func Object(text string, v any) error {
	return decode(text, '{', '}', v)
}

// Array decodes the JSON array found in text into v.
func Array(text string, v any) error {
	return decode(text, '[', ']', v)
}

func decode(text string, left, right byte, v any) error {
	cleaned := Clean(text)
	if cleaned == "" {
		return &ParseError{Stage: StageEmpty, Err: ErrNoJSON}
	}

	strictErr := json.Unmarshal([]byte(cleaned), v)
	if strictErr == nil {
		return nil
	}

	start := strings.IndexByte(cleaned, left)
	end := strings.LastIndexByte(cleaned, right)
	if start < 0 || end <= start {
		return &ParseError{Stage: StageStrict, Err: strictErr}
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err != nil {
		return &ParseError{Stage: StageExtract, Err: err}
	}
	return nil
}
