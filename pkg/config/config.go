// Package config loads runtime configuration from LEPTOS_STATE_-prefixed
// environment variables — a deliberate artifact of this library's origin
// as a port of the leptos-state crate (see original_source/), kept as-is
// per SPEC_FULL.md §4.9 rather than renamed to something fluo-specific.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const prefix = "LEPTOS_STATE_"

// Config holds the process-wide tunables read once at startup via Load.
type Config struct {
	Debug                 bool
	Strict                bool
	MaxConcurrent         int
	DefaultTimeout        time.Duration
	PerformanceMonitoring bool
	ErrorReporting        bool
	LogLevel              string
	Custom                map[string]string
}

// Default returns the configuration that would result from no environment
// variables being set.
func Default() Config {
	return Config{
		Debug:                 false,
		Strict:                false,
		MaxConcurrent:         4,
		DefaultTimeout:        5 * time.Second,
		PerformanceMonitoring: false,
		ErrorReporting:        true,
		LogLevel:              "info",
		Custom:                map[string]string{},
	}
}

// Load reads Config from the environment, starting from Default() and
// overriding any field whose LEPTOS_STATE_<NAME> variable is set.
// LEPTOS_STATE_CUSTOM_<NAME> entries are collected into Custom, keyed by
// <NAME> lowercased.
func Load() Config {
	c := Default()
	if v, ok := os.LookupEnv(prefix + "DEBUG"); ok {
		c.Debug = parseBool(v, c.Debug)
	}
	if v, ok := os.LookupEnv(prefix + "STRICT"); ok {
		c.Strict = parseBool(v, c.Strict)
	}
	if v, ok := os.LookupEnv(prefix + "MAX_CONCURRENT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v, ok := os.LookupEnv(prefix + "DEFAULT_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.DefaultTimeout = d
		}
	}
	if v, ok := os.LookupEnv(prefix + "PERFORMANCE_MONITORING"); ok {
		c.PerformanceMonitoring = parseBool(v, c.PerformanceMonitoring)
	}
	if v, ok := os.LookupEnv(prefix + "ERROR_REPORTING"); ok {
		c.ErrorReporting = parseBool(v, c.ErrorReporting)
	}
	if v, ok := os.LookupEnv(prefix + "LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}

	customPrefix := prefix + "CUSTOM_"
	for _, kv := range os.Environ() {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, customPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, customPrefix))
		c.Custom[key] = val
	}
	return c
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
