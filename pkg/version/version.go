// Package version reports the build identity of the benchsweep binaries.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set via -ldflags "-X github.com/Sumatoshi-tech/benchsweep/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const shortRevision = 12

// InitBinaryVersion fills Commit and Date from the Go build info when they
// were not injected at link time.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = setting.Value
				if len(Commit) > shortRevision {
					Commit = Commit[:shortRevision]
				}
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}

// String returns "<version> (commit: <commit>, built: <date>)".
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
