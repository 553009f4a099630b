package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultSkipped  ResultLabel = "skipped"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final status of one document build.
type BuildOutcomeLabel string

const (
	OutcomeSuccess      BuildOutcomeLabel = "success"
	OutcomeLatexFailed  BuildOutcomeLabel = "latex_failed"
	OutcomeBibtexFailed BuildOutcomeLabel = "bibtex_failed"
	OutcomeNotConverged BuildOutcomeLabel = "not_converged"
	OutcomeFailed       BuildOutcomeLabel = "failed"
	OutcomeCanceled     BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for builds, stages and tool passes.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	// ObservePass records one run of program (compiler or bibliography tool).
	ObservePass(program string, d time.Duration, success bool)
	// SetConvergencePasses records how many compiler passes the last build needed.
	SetConvergencePasses(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel) {}
func (NoopRecorder) ObservePass(string, time.Duration, bool) {}
func (NoopRecorder) SetConvergencePasses(int) {}
