package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/vendorperf/internal/cli/output"
	"github.com/leapstack-labs/vendorperf/internal/pipeline"
	"github.com/leapstack-labs/vendorperf/pkg/core"
	"github.com/spf13/cobra"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Load every CSV file of the input directory into the store",
		Long: `Load every .csv file of the input directory into the store.

Each file becomes a table named after the file (sales.csv -> sales). An
existing table of that name is replaced. A file that fails to load is
reported and the remaining files are still loaded.`,
		Example: `  # Load ./data into inventory.duckdb
  vendorperf ingest

  # Load another directory into SQLite
  vendorperf ingest --input-dir extracts --database inventory.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipelineCommand(cmd, true, (*pipeline.Pipeline).Ingest)
		},
	}
}

// NewSummarizeCommand creates the summarize command.
func NewSummarizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Build the vendor_sales_summary table",
		Long: `Join purchases, purchase prices, sales and vendor invoices into one row per
vendor, brand and price, derive gross profit, profit margin, stock turnover
and sales-to-purchase ratio, and replace the vendor_sales_summary table.`,
		Aliases: []string{"summary"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipelineCommand(cmd, false, (*pipeline.Pipeline).Summarize)
		},
	}
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Ingest the input directory and build the summary",
		Long: `Run ingest followed by summarize as a single recorded run.

The summary is not built when a file fails to load.`,
		Example: `  # Full refresh with JSON output for CI
  vendorperf run -o json`,
		Aliases: []string{"build"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipelineCommand(cmd, true, (*pipeline.Pipeline).Run)
		},
	}
}

type pipelineFunc func(*pipeline.Pipeline, context.Context) (*pipeline.Outcome, error)

func runPipelineCommand(cmd *cobra.Command, needsInput bool, fn pipelineFunc) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if needsInput {
		if err := cc.Cfg.ValidateInputDir(); err != nil {
			return err
		}
	}

	start := time.Now()
	out, runErr := fn(cc.Pipeline, cmd.Context())
	if out != nil {
		if err := renderOutcome(cc.Renderer, out, time.Since(start)); err != nil {
			return err
		}
	}
	return runErr
}

// outcomeJSON is the JSON shape of a pipeline outcome.
type outcomeJSON struct {
	RunID    string     `json:"run_id"`
	Command  string     `json:"command"`
	Status   string     `json:"status"`
	Error    string     `json:"error,omitempty"`
	Files    []stepJSON `json:"files,omitempty"`
	Stages   []stepJSON `json:"stages,omitempty"`
	Rows     int        `json:"summary_rows,omitempty"`
	Duration string     `json:"duration"`
}

type stepJSON struct {
	Name     string `json:"name"`
	Rows     int64  `json:"rows"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func renderOutcome(r *output.Renderer, out *pipeline.Outcome, elapsed time.Duration) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(outcomeToJSON(out, elapsed))
	}

	if out.Load != nil {
		r.Header(2, "Ingest")
		for _, f := range out.Load.Files {
			if f.Err != nil {
				r.StatusLine(f.File, "failed", rootCause(f.Err))
				continue
			}
			r.StatusLine(f.File, "success", fmt.Sprintf("-> %s (%d rows, %s)", f.Table, f.Rows, f.Duration.Round(time.Millisecond)))
		}
		if len(out.Load.Files) == 0 {
			r.Muted("no CSV files found in " + out.Load.Dir)
		}
	}

	if out.Summary != nil {
		r.Header(2, "Summary")
		for _, s := range out.Summary.Stages {
			status := "success"
			detail := fmt.Sprintf("(%d rows, %s)", s.Rows, s.Duration.Round(time.Millisecond))
			if s.Err != nil {
				status = "failed"
				detail = rootCause(s.Err)
			}
			r.StatusLine(s.Name, status, detail)
		}
		if len(out.Summary.Rows) > 0 {
			r.Println()
			if err := r.Table(summaryPreview(out.Summary.Rows, previewLimit)); err != nil {
				return err
			}
		}
	}

	if out.Run != nil {
		r.Println()
		r.Printf("Run %s: %s\n", r.ID(out.Run.ID), out.Run.Status)
	}
	r.Printf("Completed in %s\n", elapsed.Round(time.Millisecond))
	return nil
}

func outcomeToJSON(out *pipeline.Outcome, elapsed time.Duration) outcomeJSON {
	res := outcomeJSON{Duration: elapsed.Round(time.Millisecond).String()}
	if out.Run != nil {
		res.RunID = out.Run.ID
		res.Command = out.Run.Command
		res.Status = string(out.Run.Status)
		res.Error = out.Run.Error
	}
	if out.Load != nil {
		for _, f := range out.Load.Files {
			res.Files = append(res.Files, stepJSON{
				Name:     f.File,
				Rows:     f.Rows,
				Duration: f.Duration.Round(time.Millisecond).String(),
				Error:    errString(f.Err),
			})
		}
	}
	if out.Summary != nil {
		for _, s := range out.Summary.Stages {
			res.Stages = append(res.Stages, stepJSON{
				Name:     s.Name,
				Rows:     int64(s.Rows),
				Duration: s.Duration.Round(time.Millisecond).String(),
				Error:    errString(s.Err),
			})
		}
		res.Rows = len(out.Summary.Rows)
	}
	return res
}

// rootCause returns the message of the innermost error of a typed wrapper.
func rootCause(err error) string {
	var ds *core.DataSourceError
	if errors.As(err, &ds) && ds.Err != nil {
		return ds.Err.Error()
	}
	return err.Error()
}
