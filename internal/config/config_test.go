package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlens/reviewsignal/pkg/errors"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_Defaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_ServerPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestPipelineConfig_Validate_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		wantErr   bool
	}{
		{"zero_allowed", 0, false},
		{"hundred_allowed", 100, false},
		{"typical", 80, false},
		{"negative", -1, true},
		{"above_hundred", 101, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PipelineConfig{FuzzyThreshold: tt.threshold, KeywordMaxWords: 2}
			err := p.Validate()
			if tt.wantErr {
				assert.True(t, errors.IsCode(err, errors.CodeThresholdOutOfRange))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPipelineConfig_Validate_TopicDiseaseBinding(t *testing.T) {
	p := &PipelineConfig{
		FuzzyThreshold:  80,
		KeywordMaxWords: 2,
		Topics: []TopicConfig{
			{Name: "side effects", Markers: map[string][]string{"nausea": {"nausea"}}},
		},
	}
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeTopicUnbound))

	p.Topics[0].Disease = "Crohn's Disease"
	assert.NoError(t, p.Validate())
}

func TestPipelineConfig_Validate_Markers(t *testing.T) {
	base := TopicConfig{Name: "side effects", Disease: "Crohn's Disease"}

	noMarkers := base
	noMarkers.Markers = map[string][]string{}
	p := &PipelineConfig{FuzzyThreshold: 80, KeywordMaxWords: 2, Topics: []TopicConfig{noMarkers}}
	assert.Error(t, p.Validate())

	emptyPhrases := base
	emptyPhrases.Markers = map[string][]string{"weight gain": {}}
	p.Topics = []TopicConfig{emptyPhrases}
	assert.Error(t, p.Validate())

	blankPhrase := base
	blankPhrase.Markers = map[string][]string{"weight gain": {"weight gain", ""}}
	p.Topics = []TopicConfig{blankPhrase}
	assert.Error(t, p.Validate())
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultFuzzyThreshold, cfg.Pipeline.FuzzyThreshold)
	assert.Equal(t, DefaultKeywordMaxWords, cfg.Pipeline.KeywordMaxWords)
	assert.Equal(t, []string{"uc"}, cfg.Pipeline.ExclusionTerms)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestApplyDefaults_DoesNotOverride(t *testing.T) {
	cfg := &Config{}
	cfg.Pipeline.FuzzyThreshold = 65
	cfg.Pipeline.ExclusionTerms = []string{}
	ApplyDefaults(cfg)

	assert.Equal(t, 65, cfg.Pipeline.FuzzyThreshold)
	// An explicitly empty exclusion list stays empty.
	assert.Empty(t, cfg.Pipeline.ExclusionTerms)
}

func TestApplyDefaults_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
