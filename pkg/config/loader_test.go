package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/benchsweep/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".benchsweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, config.DefaultBuildDirectory, cfg.Build.Directory)
	assert.Equal(t, config.DefaultBuildConfigureCommand, cfg.Build.ConfigureCommand)
	assert.Equal(t, config.DefaultBuildConfigureArgs, cfg.Build.ConfigureArgs)
	assert.Equal(t, config.DefaultBuildCommand, cfg.Build.BuildCommand)
	assert.Equal(t, config.DefaultBuildTarget, cfg.Build.Target)
	assert.Equal(t, config.DefaultBuildCleanTarget, cfg.Build.CleanTarget)
	assert.Equal(t, config.DefaultBuildJobs, cfg.Build.Jobs)
	assert.Equal(t, config.DefaultBenchmarkBinary, cfg.Benchmark.Binary)
	assert.Equal(t, config.DefaultBenchmarkFormatFlag, cfg.Benchmark.FormatFlag)
	assert.Equal(t, config.DefaultBenchmarkFilter, cfg.Benchmark.Filter)
	assert.Equal(t, config.DefaultGitWatchPaths, cfg.Git.WatchPaths)
	assert.Empty(t, cfg.Git.Range)
	assert.False(t, cfg.Git.Merges)
	assert.False(t, cfg.Git.NoMerges)
	assert.Zero(t, cfg.Git.MaxCommits)
	assert.True(t, cfg.Git.Restore)
	assert.Equal(t, config.DefaultOutputFormat, cfg.Output.Format)
	assert.Equal(t, config.DefaultLoggingLevel, cfg.Logging.Level)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
	assert.Empty(t, cfg.Telemetry.MetricsFile)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	content := `build:
  directory: /tmp/build
  configure_command: cmake
  configure_args: ["-G", "Ninja"]
  build_command: ninja
  target: bench
  clean_target: ""
  jobs: 8
benchmark:
  binary: ./bench
  filter: "BM_add.*"
git:
  watch_paths: [include]
  range: v1.0..HEAD
  no_merges: true
  max_commits: 20
  restore: false
output:
  format: json
logging:
  level: debug
  json: true
telemetry:
  otlp_endpoint: localhost:4317
  otlp_insecure: true
  sample_ratio: 0.5
  metrics_file: /tmp/benchsweep.prom
`

	cfg, err := config.LoadConfig(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/build", cfg.Build.Directory)
	assert.Equal(t, []string{"-G", "Ninja"}, cfg.Build.ConfigureArgs)
	assert.Equal(t, "ninja", cfg.Build.BuildCommand)
	assert.Equal(t, "bench", cfg.Build.Target)
	assert.Empty(t, cfg.Build.CleanTarget)
	assert.Equal(t, 8, cfg.Build.Jobs)
	assert.Equal(t, "./bench", cfg.Benchmark.Binary)
	assert.Equal(t, "BM_add.*", cfg.Benchmark.Filter)
	assert.Equal(t, config.DefaultBenchmarkFormatFlag, cfg.Benchmark.FormatFlag)
	assert.Equal(t, []string{"include"}, cfg.Git.WatchPaths)
	assert.Equal(t, "v1.0..HEAD", cfg.Git.Range)
	assert.True(t, cfg.Git.NoMerges)
	assert.Equal(t, 20, cfg.Git.MaxCommits)
	assert.False(t, cfg.Git.Restore)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
	assert.InDelta(t, 0.5, cfg.Telemetry.SampleRatio, 0.001)
	assert.Equal(t, "/tmp/benchsweep.prom", cfg.Telemetry.MetricsFile)
}

func TestLoadConfig_PartialConfig_MergesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, "build:\n  jobs: 4\n"))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Build.Jobs)
	assert.Equal(t, config.DefaultBuildCommand, cfg.Build.BuildCommand)
	assert.Equal(t, config.DefaultBenchmarkBinary, cfg.Benchmark.Binary)
}

func TestLoadConfig_EnvOverride_NestedKey(t *testing.T) {
	t.Setenv("BENCHSWEEP_BUILD_JOBS", "16")
	t.Setenv("BENCHSWEEP_BENCHMARK_FILTER", "BM_mul")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Build.Jobs)
	assert.Equal(t, "BM_mul", cfg.Benchmark.Filter)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"zero jobs", "build:\n  jobs: 0\n", config.ErrInvalidJobs},
		{"negative max commits", "git:\n  max_commits: -1\n", config.ErrInvalidMaxCommits},
		{"empty build command", "build:\n  build_command: \"\"\n", config.ErrEmptyCommand},
		{"blank binary", "benchmark:\n  binary: \"  \"\n", config.ErrEmptyCommand},
		{"unknown log level", "logging:\n  level: loud\n", config.ErrInvalidLogLevel},
		{"sample ratio", "telemetry:\n  sample_ratio: 2\n", config.ErrInvalidSampling},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, "build: [unclosed\n"))
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_ExplicitPath_NotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.DefaultBuildJobs, cfg.Build.Jobs)
	assert.True(t, cfg.Git.Restore)
}
