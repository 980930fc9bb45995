package bench

// Stage is a state of the per-commit state machine
// CHECKOUT -> CONFIGURE -> BUILD -> RUN -> CLEAN -> DONE, with ABORTED as the
// fatal terminal state.
type Stage int

// Per-commit stages.
const (
	StageCheckout Stage = iota
	StageConfigure
	StageBuild
	StageRun
	StageClean
	StageDone
	StageAborted
)

var stageNames = [...]string{
	StageCheckout:  "checkout",
	StageConfigure: "configure",
	StageBuild:     "build",
	StageRun:       "run",
	StageClean:     "clean",
	StageDone:      "done",
	StageAborted:   "aborted",
}

// String returns the lower-case stage name.
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}

	return stageNames[s]
}

// Status tags the outcome of one commit.
type Status int

// Commit outcome statuses.
const (
	// StatusOK means the benchmark ran; its results may still be empty.
	StatusOK Status = iota
	// StatusFailed means configure, build or run failed; the commit likely
	// predates the benchmark suite.
	StatusFailed
)

// String returns "ok" or "failed".
func (s Status) String() string {
	if s == StatusFailed {
		return "failed"
	}

	return "ok"
}
