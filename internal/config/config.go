// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers file and environment values on top of New.
// - Errors returned from this package wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DefaultStrategy is used when a request names none.
	DefaultStrategy string `koanf:"default_strategy" validate:"required"`

	// SuggestTopN is the shortlist size when a suggest request has no top_n.
	SuggestTopN int `koanf:"suggest_top_n" validate:"gte=1"`

	// MaxTasks caps the number of tasks in one request.
	MaxTasks int `koanf:"max_tasks" validate:"gte=1"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"gte=1024"`

	// WorkerCount bounds the goroutines scoring one large list.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// ParallelThreshold is the list size from which scoring fans out.
	ParallelThreshold int `koanf:"parallel_threshold" validate:"gte=1"`

	// RequestTimeoutMS bounds each HTTP request.
	RequestTimeoutMS int `koanf:"request_timeout_ms" validate:"gte=1"`

	// StoreEnabled turns on the task archive.
	StoreEnabled bool `koanf:"store_enabled"`

	// StorePath is the SQLite file for the archive. Empty keeps the archive in
	// memory.
	StorePath string `koanf:"store_path"`

	// Timezone names the zone in which "today" is computed for due dates.
	Timezone string `koanf:"timezone" validate:"tzname"`

	// MetricsEnabled turns metric recording on. Collectors stay registered
	// either way.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace" validate:"metricname"`
	MetricsSubsystem string `koanf:"metrics_subsystem" validate:"metricname"`

	// MetricsLabels are constant labels attached to every metric. File only.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config with defaults. Context is accepted first to satisfy the
// project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DefaultStrategy:   "smart",
		SuggestTopN:       3,
		MaxTasks:          10_000,
		MaxBodyBytes:      8 << 20,
		WorkerCount:       runtime.NumCPU(),
		ParallelThreshold: 256,
		RequestTimeoutMS:  10_000,
		Timezone:          "Local",
		MetricsEnabled:    true,
		MetricsNamespace:  "taskrank",
		MetricsSubsystem:  "api",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
