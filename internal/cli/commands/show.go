package commands

import (
	"fmt"

	"github.com/leapstack-labs/vendorperf/internal/cli/output"
	"github.com/leapstack-labs/vendorperf/pkg/adapter"
	"github.com/leapstack-labs/vendorperf/pkg/core"
	"github.com/spf13/cobra"
)

// previewLimit is how many summary rows the pipeline commands print.
const previewLimit = 10

// ShowOptions holds options for the show command.
type ShowOptions struct {
	Limit  int
	Format string
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show [table]",
		Short: "Preview the rows of a table",
		Long: `Print the first rows of a table in the store.

The table defaults to vendor_sales_summary.`,
		Example: `  # Top vendors by purchase dollars
  vendorperf show --limit 5

  # Export a source table as CSV
  vendorperf show sales --limit 0 --format csv > sales.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := core.SummaryTable
			if len(args) > 0 {
				table = args[0]
			}
			return runShow(cmd, table, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum rows to print (0 for all)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format (text|markdown|json|csv), overrides --output")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "markdown", "json", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runShow(cmd *cobra.Command, table string, opts *ShowOptions) error {
	if opts.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	ctx := cmd.Context()
	db, err := cc.Pipeline.DB(ctx)
	if err != nil {
		return err
	}

	if _, err := db.GetTableMetadata(ctx, table); err != nil {
		return &core.DataSourceError{Source: table, Err: err}
	}

	query := "SELECT * FROM " + adapter.SanitizeIdentifier(table)
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := db.Query(ctx, query)
	if err != nil {
		return &core.DataSourceError{Source: table, Err: err}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		for i, v := range values {
			// Convert []byte to string for readability
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if mode := r.EffectiveMode(); mode == output.ModeText || mode == output.ModeMarkdown {
		r.Header(2, table)
	}
	return r.Table(cols, data)
}

// summaryPreview returns the first n summary rows as a table.
func summaryPreview(rows []core.VendorSummary, n int) ([]string, [][]any) {
	cols := make([]string, len(core.SummaryColumns))
	for i, c := range core.SummaryColumns {
		cols[i] = c.Name
	}
	if n > len(rows) {
		n = len(rows)
	}
	data := make([][]any, 0, n)
	for _, row := range rows[:n] {
		data = append(data, row.Values())
	}
	return cols, data
}
