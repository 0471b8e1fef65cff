package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAnalysisResult_ClampsConfidence(t *testing.T) {
	assert.Equal(t, 100.0, NewAnalysisResult("x", "e", 150, nil).Confidence)
	assert.Equal(t, 0.0, NewAnalysisResult("x", "e", -5, nil).Confidence)
	assert.Equal(t, 42.0, NewAnalysisResult("x", "e", 42, nil).Confidence)
}

func TestNewAnalysisResult_NilFactorsBecomeEmpty(t *testing.T) {
	res := NewAnalysisResult(1, "e", 50, nil)

	assert.NotNil(t, res.Factors)
	assert.Empty(t, res.Factors)
}
