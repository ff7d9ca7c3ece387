package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewAssessmentResult(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		coverage   float64
		wantErr    bool
	}{
		{"valid", 0.8, 0.9, false},
		{"bounds", 0, 1, false},
		{"not assessed", NotAssessed, NotAssessed, false},
		{"confidence above one", 1.1, 0.5, true},
		{"negative coverage", 0.5, -0.2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewAssessmentResult(tt.confidence, tt.coverage)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAssessment)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.confidence, r.Confidence)
			assert.Equal(t, tt.coverage, r.Coverage)
		})
	}
}

func TestAssessmentResult_IsAssessed(t *testing.T) {
	var missing *AssessmentResult
	assert.False(t, missing.IsAssessed())
	assert.False(t, Unassessed().IsAssessed())

	r, err := NewAssessmentResult(0.75, 0.8)
	require.NoError(t, err)
	assert.True(t, r.IsAssessed())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Clustering.MinCorroboratingSubmissions)
	assert.Positive(t, cfg.Concurrency.Workers)
	assert.True(t, cfg.Cache.Enabled)
	assert.NotEmpty(t, cfg.Cache.Dir)

	// the defaults survive a round trip through the config file format
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, *cfg, decoded)
}
