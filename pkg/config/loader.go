package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".benchsweep"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for benchsweep settings.
const envPrefix = "BENCHSWEEP"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	viperCfg := viper.New()
	applyDefaults(viperCfg)

	var cfg Config

	// Defaults always decode.
	_ = viperCfg.Unmarshal(&cfg)

	return &cfg
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("build.directory", DefaultBuildDirectory)
	viperCfg.SetDefault("build.configure_command", DefaultBuildConfigureCommand)
	viperCfg.SetDefault("build.configure_args", DefaultBuildConfigureArgs)
	viperCfg.SetDefault("build.build_command", DefaultBuildCommand)
	viperCfg.SetDefault("build.target", DefaultBuildTarget)
	viperCfg.SetDefault("build.clean_target", DefaultBuildCleanTarget)
	viperCfg.SetDefault("build.jobs", DefaultBuildJobs)

	viperCfg.SetDefault("benchmark.binary", DefaultBenchmarkBinary)
	viperCfg.SetDefault("benchmark.format_flag", DefaultBenchmarkFormatFlag)
	viperCfg.SetDefault("benchmark.filter", DefaultBenchmarkFilter)

	viperCfg.SetDefault("git.watch_paths", DefaultGitWatchPaths)
	viperCfg.SetDefault("git.range", DefaultGitRange)
	viperCfg.SetDefault("git.merges", DefaultGitMerges)
	viperCfg.SetDefault("git.no_merges", DefaultGitNoMerges)
	viperCfg.SetDefault("git.max_commits", DefaultGitMaxCommits)
	viperCfg.SetDefault("git.restore", DefaultGitRestore)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.path", DefaultOutputPath)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.json", DefaultLoggingJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultTelemetryOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_headers", DefaultTelemetryOTLPHeaders)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultTelemetryOTLPInsecure)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultTelemetrySampleRatio)
	viperCfg.SetDefault("telemetry.metrics_file", DefaultTelemetryMetricsFile)
}
