package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/vendorperf/internal/cli/output"
	"github.com/leapstack-labs/vendorperf/pkg/core"
	"github.com/spf13/cobra"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recent runs, or the steps of one run",
		Long: `List the most recent ingest, summarize and run invocations from the run
history. Pass a run id to list the files and stages recorded for that run.`,
		Example: `  # Last 5 runs
  vendorperf runs --limit 5

  # Steps of a run
  vendorperf runs 3f2b8c1e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 1 {
				return showRunSteps(cc, args[0])
			}
			return listRuns(cc, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum runs to list (0 for all)")

	return cmd
}

func listRuns(cc *CommandContext, limit int) error {
	runs, err := cc.Pipeline.History().ListRuns(limit)
	if err != nil {
		return err
	}

	r := cc.Renderer
	cols := []string{"ID", "Command", "Status", "Started", "Duration", "Error"}
	data := make([][]any, 0, len(runs))
	for _, run := range runs {
		data = append(data, []any{
			run.ID,
			run.Command,
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			runDuration(run),
			run.Error,
		})
	}

	if mode := r.EffectiveMode(); mode == output.ModeText || mode == output.ModeMarkdown {
		r.Header(2, "Runs")
	}
	return r.Table(cols, data)
}

func showRunSteps(cc *CommandContext, id string) error {
	history := cc.Pipeline.History()

	run, err := history.GetRun(id)
	if err != nil {
		return err
	}
	steps, err := history.GetStepsForRun(id)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{"run": run, "steps": steps})
	}

	r.Header(2, fmt.Sprintf("Run %s", run.ID))
	r.Println(output.FormatKeyValue("Command", run.Command))
	r.Println(output.FormatKeyValue("Status", string(run.Status)))
	r.Println(output.FormatKeyValue("Started", run.StartedAt.Local().Format(time.DateTime)))
	r.Println(output.FormatKeyValue("Duration", runDuration(run)))
	if run.Error != "" {
		r.Println(output.FormatKeyValue("Error", run.Error))
	}
	r.Println()

	for _, s := range steps {
		detail := fmt.Sprintf("(%d rows, %dms)", s.Rows, s.DurationMS)
		if s.Error != "" {
			detail = s.Error
		}
		r.StatusLine(s.Name, string(s.Status), detail)
	}
	return nil
}

func runDuration(run *core.Run) string {
	if run.CompletedAt == nil {
		return "-"
	}
	return run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}
