package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluo-state/fluo/pkg/config"
)

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("LEPTOS_STATE_DEBUG", "true")
	t.Setenv("LEPTOS_STATE_MAX_CONCURRENT", "16")
	t.Setenv("LEPTOS_STATE_DEFAULT_TIMEOUT", "250ms")
	t.Setenv("LEPTOS_STATE_CUSTOM_RETRY_BUDGET", "3")

	c := config.Load()
	assert.True(t, c.Debug)
	assert.Equal(t, 16, c.MaxConcurrent)
	assert.Equal(t, 250*time.Millisecond, c.DefaultTimeout)
	require.Contains(t, c.Custom, "retry_budget")
	assert.Equal(t, "3", c.Custom["retry_budget"])
}

func TestDefaultUnaffectedByUnsetVars(t *testing.T) {
	d := config.Default()
	assert.False(t, d.Debug)
	assert.Equal(t, "info", d.LogLevel)
}
