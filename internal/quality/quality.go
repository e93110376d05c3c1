// Package quality scores a mapped record so low-confidence documents get
// routed to a human reviewer instead of silently forwarded downstream.
package quality

import (
	"fmt"
	"sort"
)

// DefaultReviewScore is the score below which a record is flagged for review.
const DefaultReviewScore = 60

// Required target fields. A record missing any of these carries an error,
// not just a lower score.
var requiredFields = []string{"client_email", "origin_port", "destination_port"}

// Issue is one finding against a record.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Report summarizes how trustworthy one mapped record is.
type Report struct {
	Score       int     `json:"score"` // 0-100
	Confidence  float64 `json:"confidence"`
	Errors      []Issue `json:"errors,omitempty"`
	Warnings    []Issue `json:"warnings,omitempty"`
	NeedsReview bool    `json:"needs_review"`
}

// Thresholds tune review routing.
type Thresholds struct {
	// ReviewScore flags records scoring below it; zero means the default.
	ReviewScore int
}

// Assess scores a mapped record from the extraction confidence, required-field
// coverage, and the mapping warnings accumulated while building it.
func Assess(confidence float64, fields map[string]any, warnings []string, th Thresholds) Report {
	reviewScore := th.ReviewScore
	if reviewScore <= 0 {
		reviewScore = DefaultReviewScore
	}

	rep := Report{Confidence: confidence}

	filled := 0
	for _, name := range requiredFields {
		if v, ok := fields[name]; ok && v != nil && v != "" {
			filled++
			continue
		}
		rep.Errors = append(rep.Errors, Issue{
			Field:   name,
			Message: fmt.Sprintf("required field %q is missing", name),
		})
	}
	completeness := float64(filled) / float64(len(requiredFields))

	for _, w := range warnings {
		rep.Warnings = append(rep.Warnings, Issue{Message: w})
	}

	score := int(confidence*60 + completeness*40)
	score -= 2 * len(warnings)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	rep.Score = score
	rep.NeedsReview = score < reviewScore || len(rep.Errors) > 0

	sort.Slice(rep.Errors, func(i, j int) bool { return rep.Errors[i].Field < rep.Errors[j].Field })
	return rep
}
