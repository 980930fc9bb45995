package command

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Call records one invocation seen by Scripted.
type Call struct {
	Dir  string
	Argv []string
}

// Line returns the invocation's command line.
func (c Call) Line() string { return Line(c.Argv) }

// Step is a scripted response. Match is tested against the command line with
// strings.HasPrefix; the first matching step wins. Err, when set, is returned
// instead of the Result.
type Step struct {
	Match  string
	Result Result
	Err    error
	// Times limits how often the step may match; zero means unlimited.
	Times int

	used int
}

// Scripted is a Commander test double that answers from a list of steps and
// records every call. Unmatched commands succeed with empty output.
type Scripted struct {
	mu    sync.Mutex
	steps []*Step
	calls []Call
}

// NewScripted creates a Scripted commander with the given steps.
func NewScripted(steps ...Step) *Scripted {
	s := &Scripted{}
	for _, st := range steps {
		s.On(st)
	}

	return s
}

// On appends a step.
func (s *Scripted) On(step Step) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := step
	s.steps = append(s.steps, &st)

	return s
}

// Run implements Commander.
func (s *Scripted) Run(_ context.Context, dir string, argv []string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Dir: dir, Argv: slices.Clone(argv)})
	line := Line(argv)

	for _, st := range s.steps {
		if !strings.HasPrefix(line, st.Match) {
			continue
		}

		if st.Times > 0 && st.used >= st.Times {
			continue
		}

		st.used++

		if st.Err != nil {
			return Result{}, fmt.Errorf("scripted %s: %w", line, st.Err)
		}

		return st.Result, nil
	}

	return Result{}, nil
}

// Calls returns a copy of the recorded invocations.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.calls)
}

// Lines returns the recorded command lines.
func (s *Scripted) Lines() []string {
	calls := s.Calls()

	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}

	return lines
}
