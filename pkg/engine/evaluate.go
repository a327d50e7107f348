package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/zen-systems/acemock/pkg/modeljson"
	"github.com/zen-systems/acemock/pkg/scoring"
)

// EvaluationRequest is one answer to rate.
type EvaluationRequest struct {
	Question        string
	ReferenceAnswer string
	CandidateAnswer string
}

type modelEvaluation struct {
	Rating   json.RawMessage `json:"rating"`
	Feedback any             `json:"feedback"`
}

// EvaluateAnswer rates the candidate answer. It always returns a result
// with a rating in [1,5]; when the model is unconfigured, fails, times out
// or answers with an unusable shape, the heuristic evaluator decides.
func (e *Engine) EvaluateAnswer(ctx context.Context, req EvaluationRequest) scoring.Result {
	fallback := func() scoring.Result {
		r := scoring.Evaluate(req.CandidateAnswer, req.ReferenceAnswer)
		r.Source = scoring.SourceHeuristic
		return r
	}

	if !e.Configured() {
		e.log(ctx).Debug("no model credentials, using heuristic evaluator")
		return fallback()
	}

	text, err := e.generate(ctx, "evaluate", evaluationPrompt(req))
	if err != nil {
		e.logFallback(ctx, "evaluate", "provider call failed", err)
		return fallback()
	}

	result, err := parseEvaluation(text)
	if err != nil {
		e.logFallback(ctx, "evaluate", "unusable model output", err)
		e.log(ctx).Debug("raw model output", zap.String("text", text))
		return fallback()
	}
	return result
}

func parseEvaluation(text string) (scoring.Result, error) {
	var out modelEvaluation
	if err := modeljson.Object(text, &out); err != nil {
		return scoring.Result{}, err
	}

	rating, err := coerceRating(out.Rating)
	if err != nil {
		return scoring.Result{}, err
	}

	feedback, ok := feedbackText(out.Feedback)
	if !ok {
		return scoring.Result{}, errors.New("feedback missing or empty")
	}

	return scoring.Result{
		Rating:   rating,
		Feedback: feedback,
		Source:   scoring.SourceModel,
	}, nil
}

// feedbackText renders scalar feedback as text. Empty strings, zero, false,
// null, objects and arrays are rejected.
func feedbackText(v any) (string, bool) {
	switch f := v.(type) {
	case string:
		return f, strings.TrimSpace(f) != ""
	case float64:
		return strconv.FormatFloat(f, 'f', -1, 64), f != 0
	case bool:
		return "true", f
	}
	return "", false
}

// coerceRating accepts a JSON number or a numeric string and returns it
// rounded and clamped to the rating scale.
func coerceRating(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("rating missing")
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("rating %s is not numeric", raw)
		}
		n, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("rating %q is not numeric", s)
		}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("rating %v is not finite", n)
	}
	n = math.Max(scoring.MinRating, math.Min(scoring.MaxRating, math.Round(n)))
	return int(n), nil
}
