package gitlib_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/benchsweep/pkg/command"
	"github.com/Sumatoshi-tech/benchsweep/pkg/gitlib"
)

func TestLogArgs(t *testing.T) {
	t.Parallel()

	watch := []string{"include", "CMakeLists.txt"}

	tests := []struct {
		name string
		opts gitlib.EnumerateOptions
		want []string
	}{
		{
			name: "defaults",
			opts: gitlib.EnumerateOptions{Paths: watch},
			want: []string{
				"log", "--date-order", "--reverse", "--format=format:%H", "--all",
				"--", "include", "CMakeLists.txt",
			},
		},
		{
			name: "range and cap",
			opts: gitlib.EnumerateOptions{Range: "v1.0..main", MaxCount: 25, Paths: watch},
			want: []string{
				"log", "--date-order", "--reverse", "--format=format:%H", "-25", "v1.0..main",
				"--", "include", "CMakeLists.txt",
			},
		},
		{
			name: "merges skip the path filter",
			opts: gitlib.EnumerateOptions{Merges: true, Paths: watch},
			want: []string{"log", "--merges", "--date-order", "--reverse", "--format=format:%H", "--all"},
		},
		{
			name: "no merges",
			opts: gitlib.EnumerateOptions{NoMerges: true, Paths: watch},
			want: []string{
				"log", "--no-merges", "--date-order", "--reverse", "--format=format:%H", "--all",
				"--", "include", "CMakeLists.txt",
			},
		},
		{
			name: "both merge toggles are forwarded",
			opts: gitlib.EnumerateOptions{Merges: true, NoMerges: true, Paths: watch},
			want: []string{
				"log", "--merges", "--no-merges", "--date-order", "--reverse", "--format=format:%H", "--all",
			},
		},
		{
			name: "empty watch-list",
			opts: gitlib.EnumerateOptions{},
			want: []string{"log", "--date-order", "--reverse", "--format=format:%H", "--all"},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, gitlib.LogArgs(tt.opts))
		})
	}
}

func TestEnumerate_ParsesOutput(t *testing.T) {
	t.Parallel()

	runner := command.NewScripted(command.Step{
		Match:  "git log",
		Result: command.Result{Stdout: "aaa\nbbb\n\nccc"},
	})

	commits, err := gitlib.Enumerate(context.Background(), runner, gitlib.EnumerateOptions{RepoPath: "/repo"})
	require.NoError(t, err)

	assert.Equal(t, []gitlib.CommitID{"aaa", "bbb", "ccc"}, commits)
	assert.Equal(t, "/repo", runner.Calls()[0].Dir)
}

func TestEnumerate_Failures(t *testing.T) {
	t.Parallel()

	exited := command.NewScripted(command.Step{
		Match:  "git log",
		Result: command.Result{ExitCode: 128, Stderr: "fatal: not a git repository"},
	})

	_, err := gitlib.Enumerate(context.Background(), exited, gitlib.EnumerateOptions{})
	require.ErrorIs(t, err, gitlib.ErrRepository)
	assert.Contains(t, err.Error(), "not a git repository")

	broken := command.NewScripted(command.Step{Match: "git", Err: errors.New("exec: git not found")})

	_, err = gitlib.Enumerate(context.Background(), broken, gitlib.EnumerateOptions{})
	require.ErrorIs(t, err, gitlib.ErrRepository)
}

func TestCheckout_Scripted(t *testing.T) {
	t.Parallel()

	runner := command.NewScripted(command.Step{
		Match:  "git checkout --force bad",
		Result: command.Result{ExitCode: 1, Stderr: "error: pathspec 'bad' did not match"},
	})

	require.NoError(t, gitlib.Checkout(context.Background(), runner, "/repo", "good"))

	err := gitlib.Checkout(context.Background(), runner, "/repo", "bad")
	require.ErrorIs(t, err, gitlib.ErrRepository)

	assert.Equal(t, []string{"git checkout --force good", "git checkout --force bad"}, runner.Lines())
}

func TestParseCommitList(t *testing.T) {
	t.Parallel()

	assert.Empty(t, gitlib.ParseCommitList(""))
	assert.Equal(t, []gitlib.CommitID{"a", "b"}, gitlib.ParseCommitList(" a \r\nb\n"))
}
