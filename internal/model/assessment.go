package model

import (
	"errors"
	"fmt"
)

// NotAssessed marks a confidence or coverage value that was never computed
const NotAssessed = -1.0

// ErrInvalidAssessment is returned for confidence or coverage values
// outside [0,1] that are not the NotAssessed sentinel.
var ErrInvalidAssessment = errors.New("invalid assessment value")

// AssessmentResult is the outcome of the last automatic assessment of a
// submission. It is written by the assessor, never by the engine.
type AssessmentResult struct {
	Confidence float64 `json:"confidence" yaml:"confidence"` // [0,1] or NotAssessed
	Coverage   float64 `json:"coverage" yaml:"coverage"`     // [0,1] or NotAssessed
}

// NewAssessmentResult validates and creates an assessment result
func NewAssessmentResult(confidence, coverage float64) (*AssessmentResult, error) {
	if !validScore(confidence) {
		return nil, fmt.Errorf("%w: confidence %v", ErrInvalidAssessment, confidence)
	}
	if !validScore(coverage) {
		return nil, fmt.Errorf("%w: coverage %v", ErrInvalidAssessment, coverage)
	}
	return &AssessmentResult{Confidence: confidence, Coverage: coverage}, nil
}

// Unassessed returns a result with both values set to NotAssessed
func Unassessed() *AssessmentResult {
	return &AssessmentResult{Confidence: NotAssessed, Coverage: NotAssessed}
}

// IsAssessed reports whether both values were computed
func (r *AssessmentResult) IsAssessed() bool {
	return r != nil && r.Confidence != NotAssessed && r.Coverage != NotAssessed
}

func validScore(v float64) bool {
	return v == NotAssessed || (v >= 0 && v <= 1)
}
