// Package scoring rates a candidate's free-text answer against a reference
// answer without calling a model.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	MinRating = 1
	MaxRating = 5

	wordsPerLengthPoint = 20
	maxLengthScore      = 5
	maxOverlapScore     = 3
	minKeyTermRunes     = 4
	combinedDivisor     = 1.6
)

// Source names where a Result came from.
type Source string

const (
	SourceModel     Source = "model"
	SourceHeuristic Source = "heuristic"
)

// Result is a bounded rating with a short feedback text.
type Result struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
	Source   Source `json:"-"`
}

// Evaluate scores candidate against reference by answer length and by how
// many reference key terms (more than three characters) appear in the
// candidate text. The result is deterministic and always within
// [MinRating, MaxRating].
func Evaluate(candidate, reference string) Result {
	text := strings.ToLower(candidate)
	ref := strings.ToLower(reference)

	words := strings.Fields(text)
	refWords := strings.Fields(ref)

	lengthScore := min(maxLengthScore, len(words)/wordsPerLengthPoint+1)

	overlap := 0
	for _, w := range refWords {
		if utf8.RuneCountInString(w) >= minKeyTermRunes && strings.Contains(text, w) {
			overlap++
		}
	}
	overlapScore := min(maxOverlapScore, overlap)

	rating := Clamp(int(math.Round(float64(lengthScore+overlapScore) / combinedDivisor)))

	var hint string
	if overlap > 0 {
		hint = fmt.Sprintf("%d key term(s) matched from the expected answer.", overlap)
	} else {
		hint = "Try including more of the expected terminology."
	}

	return Result{
		Rating:   rating,
		Feedback: fmt.Sprintf("Auto-eval: your answer has %d words. %s", len(words), hint),
		Source:   SourceHeuristic,
	}
}

// Clamp bounds a rating to [MinRating, MaxRating].
func Clamp(rating int) int {
	return max(MinRating, min(MaxRating, rating))
}
