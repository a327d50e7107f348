package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zen-systems/acemock/pkg/modeljson"
)

// InterviewSpec describes the role an interview is generated for.
type InterviewSpec struct {
	JobPosition   string
	JobDesc       string
	JobExperience string
	Count         int
}

// QA is one generated interview question with its reference answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GenerateQuestions asks the model for interview questions. There is no
// local fallback: without credentials it returns ErrModelUnavailable.
func (e *Engine) GenerateQuestions(ctx context.Context, spec InterviewSpec) ([]QA, error) {
	if !e.Configured() {
		return nil, ErrModelUnavailable
	}
	if spec.Count <= 0 {
		spec.Count = e.questionCount
	}

	text, err := e.generate(ctx, "generate", questionsPrompt(spec))
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	var items []QA
	if err := modeljson.Array(text, &items); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}

	questions := make([]QA, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Question) == "" {
			continue
		}
		questions = append(questions, item)
	}
	if len(questions) == 0 {
		return nil, errors.New("parse questions: model returned no questions")
	}
	return questions, nil
}
