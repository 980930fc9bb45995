package gitlib

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/benchsweep/pkg/command"
)

// DefaultWatchPaths are the paths whose modification makes a commit eligible
// for benchmarking: library headers, benchmark sources, build configuration.
var DefaultWatchPaths = []string{"include", "src/benchmark", "CMakeLists.txt", "*.cmake"}

// EnumerateOptions selects the commits of a sweep.
type EnumerateOptions struct {
	RepoPath string
	// Range is a git revision range; empty means the entire history.
	Range string
	// Merges visits only merge commits. The path filter is not applied to them.
	Merges bool
	// NoMerges skips merge commits. Combined with Merges, nothing is selected.
	NoMerges bool
	// Paths is the watch-list. Empty means every commit matches.
	Paths []string
	// MaxCount keeps the N most recent matching commits; zero means no cap.
	MaxCount int
}

// LogArgs returns the git argument list (without the leading "git") that
// lists the selected commit hashes oldest first.
func LogArgs(opts EnumerateOptions) []string {
	args := []string{"log"}

	if opts.Merges {
		args = append(args, "--merges")
	}

	if opts.NoMerges {
		args = append(args, "--no-merges")
	}

	args = append(args, "--date-order", "--reverse", "--format=format:%H")

	if opts.MaxCount > 0 {
		args = append(args, "-"+strconv.Itoa(opts.MaxCount))
	}

	if opts.Range != "" {
		args = append(args, opts.Range)
	} else {
		args = append(args, "--all")
	}

	if !opts.Merges && len(opts.Paths) > 0 {
		args = append(args, "--")
		args = append(args, opts.Paths...)
	}

	return args
}

// Enumerate lists the selected commits in chronological ascending order.
func Enumerate(ctx context.Context, runner command.Commander, opts EnumerateOptions) ([]CommitID, error) {
	argv := append([]string{"git"}, LogArgs(opts)...)

	res, err := runner.Run(ctx, opts.RepoPath, argv)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	if !res.Success() {
		return nil, fmt.Errorf("%w: %s exited with status %d: %s",
			ErrRepository, command.Line(argv), res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	return ParseCommitList(res.Stdout), nil
}

// ParseCommitList splits git log output into commit ids, one per line.
func ParseCommitList(out string) []CommitID {
	var commits []CommitID

	for line := range strings.SplitSeq(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		commits = append(commits, CommitID(line))
	}

	return commits
}

// Checkout forces the working tree of repoPath to ref.
func Checkout(ctx context.Context, runner command.Commander, repoPath, ref string) error {
	argv := []string{"git", "checkout", "--force", ref}

	res, err := runner.Run(ctx, repoPath, argv)
	if err != nil {
		return fmt.Errorf("%w: checkout %s: %w", ErrRepository, ref, err)
	}

	if !res.Success() {
		return fmt.Errorf("%w: checkout %s exited with status %d: %s",
			ErrRepository, ref, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	return nil
}
