// Package command runs external tools (the version-control tool, the build
// system, the benchmark binary) as opaque request/response collaborators.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrEmptyArgv is returned when a command has no program name.
var ErrEmptyArgv = errors.New("empty command line")

// Result is the captured outcome of one process run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Commander runs argv in dir and captures its output.
//
// A process that starts and exits non-zero is not an error: the exit code is
// reported in the Result. The error is reserved for failures to start or wait
// on the process, and for context cancellation.
type Commander interface {
	Run(ctx context.Context, dir string, argv []string) (Result, error)
}

// ExecCommander runs commands with os/exec.
type ExecCommander struct {
	// Env is appended to the current environment of every command.
	Env []string
}

// NewExecCommander creates a Commander backed by os/exec.
func NewExecCommander(env ...string) *ExecCommander {
	return &ExecCommander{Env: env}
}

// Run implements Commander.
func (c *ExecCommander) Run(ctx context.Context, dir string, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, ErrEmptyArgv
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // argv comes from user configuration.
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	runErr := cmd.Run()

	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()

			return result, nil
		}

		if ctx.Err() != nil {
			return result, fmt.Errorf("run %s: %w", Line(argv), ctx.Err())
		}

		return result, fmt.Errorf("run %s: %w", Line(argv), runErr)
	}

	return result, nil
}

// Line renders argv as a single human-readable command line.
func Line(argv []string) string {
	return strings.Join(argv, " ")
}
