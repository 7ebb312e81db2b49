package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.EqualValues(t, 4, cfg.Generator.LabBlock)
	assert.Equal(t, 15, cfg.Generator.MultiStartAttempts)
	assert.Equal(t, 11, cfg.Generator.RelaxedModeAttempt)
	assert.InDelta(t, 0.80, cfg.Generator.GreedyFallbackCutoff, 1e-9)
	assert.Equal(t, 50, cfg.GA.Population)
	assert.Equal(t, 100, cfg.GA.Generations)
	assert.InDelta(t, 1.0, cfg.GA.Weights.FacultyGaps+cfg.GA.Weights.StudentGaps+
		cfg.GA.Weights.WorkloadBalance+cfg.GA.Weights.MorningPreference+cfg.GA.Weights.LabCompactness, 1e-9)
}

func TestLoadRejectsInvalidLabBlock(t *testing.T) {
	v := viper.New()
	v.Set("generator.lab_block", 5)
	_, err := Load(v)
	assert.Error(t, err)
}
