// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of the defaults.
// - Errors wrap this package's sentinels.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// APIURL is the base URL of the risk scoring service.
	APIURL string `koanf:"api_url"`

	// APITimeoutMS bounds each risk service call. Zero means no timeout.
	APITimeoutMS int `koanf:"api_timeout_ms"`

	// APIMaxMarkupBytes caps a visualization body. Larger bodies are rejected.
	APIMaxMarkupBytes int64 `koanf:"api_max_markup_bytes"`

	// MongoDBURI is the personal data store connection string. Falls back to MONGODB_URI.
	MongoDBURI string `koanf:"mongodb_uri"`

	// MongoDBDatabase and MongoDBCollection locate the personal records.
	MongoDBDatabase   string `koanf:"mongodb_database"`
	MongoDBCollection string `koanf:"mongodb_collection"`

	// MongoDBTimeoutMS bounds server selection and the lookup itself.
	MongoDBTimeoutMS int `koanf:"mongodb_timeout_ms"`

	// DefaultClientID and DefaultJobID prefill the dashboard inputs.
	DefaultClientID string `koanf:"default_client_id"`
	DefaultJobID    string `koanf:"default_job_id"`

	// ExplorationFrameHeight and VisualizationFrameHeight size the embedded charts, in pixels.
	ExplorationFrameHeight   int `koanf:"exploration_frame_height"`
	VisualizationFrameHeight int `koanf:"visualization_frame_height"`

	// MetricsEnabled turns recording on or off; /metrics is served either way.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsEnvironment, when set, is attached to every metric as the env label.
	MetricsEnvironment string `koanf:"metrics_environment"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":8501",
		APIURL:                   "http://localhost:5000",
		APITimeoutMS:             0,
		APIMaxMarkupBytes:        32 << 20,
		MongoDBDatabase:          "default_risk",
		MongoDBCollection:        "users_data",
		MongoDBTimeoutMS:         5000,
		DefaultClientID:          "120194",
		DefaultJobID:             "dummy_job",
		ExplorationFrameHeight:   750,
		VisualizationFrameHeight: 700,
		MetricsEnabled:           true,
		MetricsNamespace:         "riskboard",
		MetricsSubsystem:         "dashboard",
	}
}

// APITimeout returns APITimeoutMS as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutMS) * time.Millisecond
}

// MongoDBTimeout returns MongoDBTimeoutMS as a duration.
func (c *Config) MongoDBTimeout() time.Duration {
	return time.Duration(c.MongoDBTimeoutMS) * time.Millisecond
}
