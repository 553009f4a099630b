package compile

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/texbuild/internal/logfields"
	"git.home.luguber.info/inful/texbuild/internal/metrics"
)

// StageName identifies a step of a document build.
type StageName string

// Canonical stage names, in execution order.
const (
	StageCleanup       StageName = "cleanup"
	StageScan          StageName = "scan"
	StageDraftBibtex   StageName = "draft_bibtex"
	StageConverge      StageName = "converge"
	StageRecorderSweep StageName = "fls_sweep"
	StageInventory     StageName = "inventory"
)

// Stage is a discrete unit of work in a build.
type Stage func(ctx context.Context, bs *buildState) error

// StageDef pairs a stage name with its function. Enabled, when set, decides
// per build whether the stage runs at all.
type StageDef struct {
	Name    StageName
	Fn      Stage
	Enabled func(bs *buildState) bool
}

// StageError records the stage a build failed in.
type StageError struct {
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// runStages executes stages in order, recording timing and stopping on the
// first error.
func runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			bs.recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return &StageError{Stage: st.Name, Err: err}
		}
		if st.Enabled != nil && !st.Enabled(bs) {
			bs.recorder.IncStageResult(string(st.Name), metrics.ResultSkipped)
			bs.logger.Debug("Stage skipped", logfields.Stage(string(st.Name)))
			continue
		}
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.recorder.ObserveStageDuration(string(st.Name), dur)
		if err != nil {
			bs.recorder.IncStageResult(string(st.Name), metrics.ResultFatal)
			bs.logger.Debug("Stage failed", logfields.Stage(string(st.Name)), logfields.Error(err))
			return &StageError{Stage: st.Name, Err: err}
		}
		bs.recorder.IncStageResult(string(st.Name), metrics.ResultSuccess)
		bs.logger.Debug("Stage complete",
			logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur.Microseconds())/1000))
	}
	return nil
}

// defaultStages is the fixed build pipeline.
func defaultStages() []StageDef {
	return []StageDef{
		{Name: StageCleanup, Fn: stageCleanup},
		{Name: StageScan, Fn: stageScan},
		{Name: StageDraftBibtex, Fn: stageDraftBibtex, Enabled: (*buildState).needsBibtex},
		{Name: StageConverge, Fn: stageConverge},
		{Name: StageRecorderSweep, Fn: stageRecorderSweep},
		{Name: StageInventory, Fn: stageInventory, Enabled: func(bs *buildState) bool { return bs.cfg.InventoryPath != "" }},
	}
}
