package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConfidenceBand tests the qualitative confidence thresholds
func TestConfidenceBand(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       string
	}{
		{"high at boundary", 0.8, "high"},
		{"high above boundary", 0.95, "high"},
		{"moderate at boundary", 0.6, "moderate"},
		{"moderate below high", 0.79, "moderate"},
		{"low below moderate", 0.59, "low"},
		{"low at zero", 0.0, "low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfidenceBand(tt.confidence))
		})
	}
}

// TestRankingMode_IsValid tests mode validation
func TestRankingMode_IsValid(t *testing.T) {
	assert.True(t, ModeBaseline.IsValid())
	assert.True(t, ModeVOLaM.IsValid())
	assert.False(t, RankingMode("hybrid").IsValid())
	assert.False(t, RankingMode("").IsValid())
}

// TestDefaultParams tests the standard weighting
func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	assert.Equal(t, 0.6, p.Alpha)
	assert.Equal(t, 0.3, p.Beta)
	assert.Equal(t, 0.1, p.Gamma)
}
