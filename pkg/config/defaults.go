package config

// Build defaults.
const (
	DefaultBuildDirectory        = "."
	DefaultBuildConfigureCommand = "cmake"
	DefaultBuildCommand          = "make"
	DefaultBuildTarget           = "Benchmark"
	DefaultBuildCleanTarget      = "clean"
	DefaultBuildJobs             = 1
)

// DefaultBuildConfigureArgs are passed to the configure command after the
// repository path.
var DefaultBuildConfigureArgs = []string{"-DCMAKE_BUILD_TYPE=Release", "-DCNL_DEV=ON"}

// Benchmark defaults.
const (
	DefaultBenchmarkBinary     = "./Benchmark"
	DefaultBenchmarkFormatFlag = "--benchmark_format=csv"
	DefaultBenchmarkFilter     = ".*"
)

// DefaultGitWatchPaths limits the sweep to commits touching the library
// headers, the benchmark sources, or the build scripts.
var DefaultGitWatchPaths = []string{"include", "src/benchmark", "CMakeLists.txt", "*.cmake"}

// Git defaults.
const (
	DefaultGitRange      = ""
	DefaultGitMerges     = false
	DefaultGitNoMerges   = false
	DefaultGitMaxCommits = 0
	DefaultGitRestore    = true
)

// Output defaults.
const (
	DefaultOutputFormat = "csv"
	DefaultOutputPath   = ""
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)

// Telemetry defaults.
const (
	DefaultTelemetryOTLPEndpoint = ""
	DefaultTelemetryOTLPHeaders  = ""
	DefaultTelemetryOTLPInsecure = false
	DefaultTelemetrySampleRatio  = 0.0
	DefaultTelemetryMetricsFile  = ""
)
