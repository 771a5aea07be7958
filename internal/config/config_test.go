package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.5, cfg.PreferencePenalty)
	assert.Equal(t, 1.0, cfg.RiskWeight)
	assert.Equal(t, 1000.0, cfg.IsolationWeight)
	assert.Equal(t, 1.0, cfg.ConsistencyWeight)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.True(t, cfg.DynamicThreshold)
	assert.Equal(t, 10.0, cfg.FixedThreshold)
	assert.Equal(t, 4.0, cfg.DayThreshold)
	assert.Equal(t, 8, cfg.MaxWorkers)
	assert.Equal(t, 30*time.Second, cfg.TimeLimit())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DESKPLAN_MAX_ITERATIONS", "3")
	t.Setenv("DESKPLAN_DYNAMIC_THRESHOLD", "false")
	t.Setenv("DESKPLAN_SOLVE_TIME_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxIterations)
	assert.False(t, cfg.DynamicThreshold)
	assert.Equal(t, 5*time.Second, cfg.TimeLimit())
	// Untouched fields keep their defaults.
	assert.Equal(t, 1000.0, cfg.IsolationWeight)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("DESKPLAN_MAX_ITERATIONS", "many")

	_, err := Load()
	assert.Error(t, err)
}
