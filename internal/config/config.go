// Package config defines the service configuration and how it is loaded.
package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Defaults.
const (
	DefaultAddr           = ":9080"
	DefaultPopulationSize = 80
	DefaultActivityWindow = 100_000_000 * time.Millisecond
	DefaultPipelineLimit  = 50
	DefaultAIModel        = "gemini-3-flash-preview"
	DefaultSSEThrottle    = 250 * time.Millisecond
	DefaultStatsInterval  = 10 * time.Second

	MaxPopulationSize = 5000
	MaxPipelineLimit  = 500
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" json:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format" json:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" json:"addr"`

	// PopulationSize is the attendee count of generated datasets.
	PopulationSize int `koanf:"population_size" json:"population_size"`

	// Seed makes generation reproducible. Zero draws a random seed per run.
	Seed uint64 `koanf:"seed" json:"seed"`

	// ActivityWindow bounds how far back a match's last activity may lie.
	ActivityWindow time.Duration `koanf:"activity_window" json:"activity_window"`

	// PipelineLimit is the default row count of GET /api/pipeline.
	PipelineLimit int `koanf:"pipeline_limit" json:"pipeline_limit"`

	// AIAPIKey enables the external advisory service. Empty means demo mode.
	AIAPIKey string `koanf:"ai_api_key" json:"-"`

	// AIModel names the generation model.
	AIModel string `koanf:"ai_model" json:"ai_model"`

	// SSEThrottle is the minimum gap between funnel.updated events.
	SSEThrottle time.Duration `koanf:"sse_throttle" json:"sse_throttle"`

	// StatsInterval is how often gauges are refreshed from the dataset.
	StatsInterval time.Duration `koanf:"stats_interval" json:"stats_interval"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           DefaultAddr,
		PopulationSize: DefaultPopulationSize,
		ActivityWindow: DefaultActivityWindow,
		PipelineLimit:  DefaultPipelineLimit,
		AIModel:        DefaultAIModel,
		SSEThrottle:    DefaultSSEThrottle,
		StatsInterval:  DefaultStatsInterval,
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.PopulationSize, validation.Required, validation.Min(1), validation.Max(MaxPopulationSize)),
		validation.Field(&c.ActivityWindow, validation.Min(time.Duration(0))),
		validation.Field(&c.PipelineLimit, validation.Required, validation.Min(1), validation.Max(MaxPipelineLimit)),
		validation.Field(&c.AIModel, validation.Required),
		validation.Field(&c.SSEThrottle, validation.Min(time.Duration(0))),
		validation.Field(&c.StatsInterval, validation.Required, validation.Min(time.Second)),
	)
}

// AIEnabled reports whether a credential is configured.
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}
