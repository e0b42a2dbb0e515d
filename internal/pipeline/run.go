package pipeline

// run.go - command orchestration and run history bookkeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/vendorperf/internal/loader"
	"github.com/leapstack-labs/vendorperf/internal/summary"
	"github.com/leapstack-labs/vendorperf/pkg/adapter"
	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// Outcome is what a pipeline command produced. Fields for stages that did
// not run are nil.
type Outcome struct {
	Run     *core.Run
	Load    *loader.Report
	Summary *summary.Result
}

// Ingest loads every CSV file of the input directory into the store.
func (p *Pipeline) Ingest(ctx context.Context) (*Outcome, error) {
	return p.execute(ctx, CommandIngest, func(db adapter.Adapter, runID string, out *Outcome) error {
		return p.ingest(ctx, db, runID, out)
	})
}

// Summarize builds the vendor summary from the tables already in the store.
func (p *Pipeline) Summarize(ctx context.Context) (*Outcome, error) {
	return p.execute(ctx, CommandSummarize, func(db adapter.Adapter, runID string, out *Outcome) error {
		return p.summarize(ctx, db, runID, out)
	})
}

// Run ingests and then summarizes. The summary is not built when any file
// failed to load.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	return p.execute(ctx, CommandRun, func(db adapter.Adapter, runID string, out *Outcome) error {
		if err := p.ingest(ctx, db, runID, out); err != nil {
			return err
		}
		return p.summarize(ctx, db, runID, out)
	})
}

func (p *Pipeline) ingest(ctx context.Context, db adapter.Adapter, runID string, out *Outcome) error {
	l := loader.New(db, p.logger)
	l.OnFile = func(r loader.FileResult) {
		p.recordStep(runID, "load "+r.File, int64(r.Rows), r.Duration, r.Err)
	}

	report, err := l.Load(ctx, p.inputDir)
	out.Load = report
	return err
}

func (p *Pipeline) summarize(ctx context.Context, db adapter.Adapter, runID string, out *Outcome) error {
	b := summary.NewBuilder(db, p.logger)
	b.OnStage = func(s summary.StageResult) {
		p.recordStep(runID, s.Name, int64(s.Rows), s.Duration, s.Err)
	}

	res, err := b.Build(ctx)
	out.Summary = res
	return err
}

// execute wraps fn in a run: the run is created before fn and completed
// with fn's outcome afterwards.
func (p *Pipeline) execute(ctx context.Context, command string, fn func(adapter.Adapter, string, *Outcome) error) (*Outcome, error) {
	p.logger.Info("starting run", "command", command)

	run, err := p.history.CreateRun(command)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	p.logger.Debug("created run", "run_id", run.ID)

	out := &Outcome{Run: run}

	db, err := p.DB(ctx)
	if err == nil {
		err = fn(db, run.ID, out)
	}

	if err != nil {
		p.logger.Error("run failed", "run_id", run.ID, "command", command, "error", err.Error())
		_ = p.history.CompleteRun(run.ID, core.RunStatusFailed, err.Error())
	} else {
		p.logger.Info("run completed", "run_id", run.ID, "command", command)
		_ = p.history.CompleteRun(run.ID, core.RunStatusCompleted, "")
	}

	if refreshed, getErr := p.history.GetRun(run.ID); getErr == nil {
		out.Run = refreshed
	}
	return out, err
}

func (p *Pipeline) recordStep(runID, name string, rows int64, d time.Duration, stepErr error) {
	step := &core.RunStep{
		RunID:      runID,
		Name:       name,
		Status:     core.StepStatusSuccess,
		Rows:       rows,
		DurationMS: d.Milliseconds(),
	}
	if stepErr != nil {
		step.Status = core.StepStatusFailed
		step.Error = stepErr.Error()
	}
	if err := p.history.RecordStep(step); err != nil {
		p.logger.Warn("failed to record step", "run_id", runID, "step", name, "error", err.Error())
	}
}
