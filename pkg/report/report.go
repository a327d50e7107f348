// Package report aggregates the answers of one interview into the
// feedback summary shown after a session.
package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/zen-systems/acemock/pkg/scoring"
	"github.com/zen-systems/acemock/pkg/store"
)

// Scale is the top of the rating range.
const Scale = scoring.MaxRating

// Report is the feedback overview of one interview.
type Report struct {
	MockID        string             `json:"mockId"`
	Answers       []store.UserAnswer `json:"answers"`
	Rated         int                `json:"rated"`
	AverageRating float64            `json:"averageRating"`
	Scale         int                `json:"scale"`
}

// Build averages the ratings of answers that parse to a value within the
// rating scale. Other stored ratings are shown but not counted.
func Build(mockID string, answers []store.UserAnswer) Report {
	if answers == nil {
		answers = []store.UserAnswer{}
	}
	r := Report{MockID: mockID, Answers: answers, Scale: Scale}

	var sum float64
	for _, a := range answers {
		rating, ok := ParseRating(a.Rating)
		if !ok {
			continue
		}
		sum += rating
		r.Rated++
	}
	if r.Rated > 0 {
		r.AverageRating = math.Round(sum/float64(r.Rated)*10) / 10
	}
	return r
}

// ParseRating reads a stored rating. It reports false for values that are
// not numbers within [MinRating, MaxRating].
func ParseRating(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || v < scoring.MinRating || v > scoring.MaxRating {
		return 0, false
	}
	return v, true
}

// Summary renders the average as "X/5". Whole numbers have no decimals.
func (r Report) Summary() string {
	return strconv.FormatFloat(r.AverageRating, 'f', -1, 64) + "/" + strconv.Itoa(r.Scale)
}
