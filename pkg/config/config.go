// Package config loads benchsweep settings from defaults, an optional
// .benchsweep.yaml file and BENCHSWEEP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel validation errors.
var (
	ErrInvalidJobs       = errors.New("build jobs must be positive")
	ErrInvalidMaxCommits = errors.New("max commits must not be negative")
	ErrEmptyCommand      = errors.New("command must not be empty")
	ErrInvalidLogLevel   = errors.New("unknown log level")
	ErrInvalidSampling   = errors.New("sample ratio must be within [0, 1]")
)

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Config is the top-level configuration struct for benchsweep.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Build     BuildConfig     `mapstructure:"build"`
	Benchmark BenchmarkConfig `mapstructure:"benchmark"`
	Git       GitConfig       `mapstructure:"git"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// BuildConfig describes how the benchmark binary is configured and built.
type BuildConfig struct {
	Directory        string   `mapstructure:"directory"`
	ConfigureCommand string   `mapstructure:"configure_command"`
	ConfigureArgs    []string `mapstructure:"configure_args"`
	BuildCommand     string   `mapstructure:"build_command"`
	Target           string   `mapstructure:"target"`
	CleanTarget      string   `mapstructure:"clean_target"`
	Jobs             int      `mapstructure:"jobs"`
}

// BenchmarkConfig describes how the benchmark binary is invoked.
type BenchmarkConfig struct {
	Binary     string `mapstructure:"binary"`
	FormatFlag string `mapstructure:"format_flag"`
	Filter     string `mapstructure:"filter"`
}

// GitConfig selects the commits that are swept.
type GitConfig struct {
	WatchPaths []string `mapstructure:"watch_paths"`
	Range      string   `mapstructure:"range"`
	Merges     bool     `mapstructure:"merges"`
	NoMerges   bool     `mapstructure:"no_merges"`
	MaxCommits int      `mapstructure:"max_commits"`
	Restore    bool     `mapstructure:"restore"`
}

// OutputConfig selects the report format.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry and Prometheus settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	MetricsFile  string  `mapstructure:"metrics_file"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Build.Jobs < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidJobs, c.Build.Jobs)
	}

	if c.Git.MaxCommits < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxCommits, c.Git.MaxCommits)
	}

	commands := []struct {
		key   string
		value string
	}{
		{"build.configure_command", c.Build.ConfigureCommand},
		{"build.build_command", c.Build.BuildCommand},
		{"benchmark.binary", c.Benchmark.Binary},
	}

	for _, cmd := range commands {
		if strings.TrimSpace(cmd.value) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyCommand, cmd.key)
		}
	}

	if !logLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidSampling, c.Telemetry.SampleRatio)
	}

	return nil
}
