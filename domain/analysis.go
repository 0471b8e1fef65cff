package domain

import "time"

// AnalysisResult is the envelope every engine call returns. No engine
// result leaves the pipeline without an explanation, a confidence and
// the factors that produced it.
type AnalysisResult[T any] struct {
	Data        T         `json:"data"`
	Explanation string    `json:"explanation"`
	Confidence  float64   `json:"confidence"`
	Factors     []string  `json:"factors"`
	ComputedAt  time.Time `json:"computed_at"`
}

func NewAnalysisResult[T any](data T, explanation string, confidence float64, factors []string) AnalysisResult[T] {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	if factors == nil {
		factors = []string{}
	}
	return AnalysisResult[T]{
		Data:        data,
		Explanation: explanation,
		Confidence:  confidence,
		Factors:     factors,
		ComputedAt:  time.Now().UTC(),
	}
}
