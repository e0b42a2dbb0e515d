package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/vendorperf/pkg/adapter"
	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// Stage names reported in StageResult.
const (
	StageValidate = "validate"
	StageCompute  = "compute"
	StageClean    = "clean"
	StagePersist  = "persist"
)

// previewRows is how many rows the stage log records show.
const previewRows = 5

// StageResult is the outcome of one Build stage.
type StageResult struct {
	Name     string
	Rows     int
	Duration time.Duration
	Err      error
}

// Result is what Build produced.
type Result struct {
	Rows   []core.VendorSummary
	Stages []StageResult
}

// Builder computes the vendor summary from the four source tables of a store
// and writes it back to the same store.
type Builder struct {
	store  adapter.Adapter
	logger *slog.Logger

	// OnStage, when set, is called after each stage, including a failed one.
	OnStage func(StageResult)
}

// NewBuilder creates a Builder over store.
// If logger is nil, a discard logger is used.
func NewBuilder(store adapter.Adapter, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{store: store, logger: logger}
}

// Validate checks that every source table exists and has the columns the
// summary reads. Missing tables are *core.DataSourceError and missing
// columns *core.SchemaError; all problems are joined into one error.
func (b *Builder) Validate(ctx context.Context) error {
	var errs []error
	for _, req := range requiredColumns {
		meta, err := b.store.GetTableMetadata(ctx, req.Table)
		if err != nil {
			errs = append(errs, &core.DataSourceError{Source: req.Table, Err: err})
			continue
		}

		b.logger.Debug("source table",
			slog.String("table", req.Table),
			slog.Int("columns", len(meta.Columns)),
			slog.Int64("rows", meta.RowCount),
		)

		for _, col := range req.Columns {
			if !meta.HasColumn(col) {
				errs = append(errs, &core.SchemaError{Table: req.Table, Column: col})
			}
		}
	}
	return errors.Join(errs...)
}

// Compute runs the summary query and returns one row per purchase group,
// ordered by TotalPurchaseDollars descending. NULL numbers read as 0 and
// NULL text as "".
func (b *Builder) Compute(ctx context.Context) ([]core.VendorSummary, error) {
	rows, _, err := b.compute(ctx, 0)
	return rows, err
}

// compute is Compute that also returns copies of the first head query rows
// as the store returned them, before NULLs are filled.
func (b *Builder) compute(ctx context.Context, head int) ([]core.VendorSummary, [][]any, error) {
	rows, err := b.store.Query(ctx, summaryQuery(b.store.DialectConfig()))
	if err != nil {
		return nil, nil, &core.DataSourceError{Source: "summary query", Err: err}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read summary columns: %w", err)
	}
	if len(cols) != queryColumns {
		return nil, nil, fmt.Errorf("summary query returned %d columns, want %d", len(cols), queryColumns)
	}

	var out []core.VendorSummary
	var heads [][]any
	raw := make([]any, queryColumns)
	dest := make([]any, queryColumns)
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan summary row %d: %w", len(out), err)
		}
		if len(heads) < head {
			heads = append(heads, append([]any(nil), raw...))
		}
		r, err := decodeRow(raw)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &core.DataSourceError{Source: "summary query", Err: err}
	}

	return out, heads, nil
}

// numericSources names the source table of each numeric query column,
// in query order starting at PurchasePrice.
var numericSources = []struct {
	column string
	table  string
}{
	{"PurchasePrice", "purchases"},
	{"ActualPrice", "purchase_prices"},
	{"Volume", "purchase_prices"},
	{"TotalPurchaseQuantity", "purchases"},
	{"TotalPurchaseDollars", "purchases"},
	{"TotalSalesQuantity", "sales"},
	{"TotalSalesDollars", "sales"},
	{"TotalSalesPrice", "sales"},
	{"TotalExciseTax", "sales"},
	{"FreightCost", "vendor_invoice"},
}

func decodeRow(raw []any) (core.VendorSummary, error) {
	var r core.VendorSummary

	vendor, err := toInt(raw[0])
	if err != nil {
		return r, &core.DataSourceError{Source: "purchases", Err: fmt.Errorf("column VendorNumber: %w", err)}
	}
	r.VendorNumber = vendor
	r.VendorName = toText(raw[1])
	r.Brand = toText(raw[2])
	r.Description = toText(raw[3])

	targets := []*float64{
		&r.PurchasePrice,
		&r.ActualPrice,
		&r.Volume,
		&r.TotalPurchaseQuantity,
		&r.TotalPurchaseDollars,
		&r.TotalSalesQuantity,
		&r.TotalSalesDollars,
		&r.TotalSalesPrice,
		&r.TotalExciseTax,
		&r.FreightCost,
	}
	for i, target := range targets {
		v, err := toFloat(raw[4+i])
		if err != nil {
			src := numericSources[i]
			return r, &core.DataSourceError{Source: src.table, Err: fmt.Errorf("column %s: %w", src.column, err)}
		}
		*target = v
	}
	return r, nil
}

// Persist replaces the summary table with rows in a single transaction.
// NaN values are written as NULL.
func (b *Builder) Persist(ctx context.Context, rows []core.VendorSummary) error {
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = r.Values()
	}

	if err := b.store.WriteTable(ctx, core.SummaryTable, core.SummaryColumns, values); err != nil {
		return &core.IOError{Op: "write", Target: core.SummaryTable, Err: err}
	}
	return nil
}

// Build validates the sources, computes, cleans and persists the summary,
// logging each stage with a preview of the rows.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	res := &Result{}

	if err := b.stage(res, StageValidate, func() (int, error) {
		return len(requiredColumns), b.Validate(ctx)
	}); err != nil {
		return res, err
	}

	b.logger.Info("creating vendor summary table")
	var computed []core.VendorSummary
	var head [][]any
	if err := b.stage(res, StageCompute, func() (int, error) {
		var err error
		computed, head, err = b.compute(ctx, previewRows)
		return len(computed), err
	}); err != nil {
		return res, err
	}
	b.logger.Info("computed vendor summary",
		slog.Int("rows", len(computed)),
		slog.String("preview", "\n"+previewQueryRows(head)),
	)

	b.logger.Info("cleaning data")
	var cleaned []core.VendorSummary
	_ = b.stage(res, StageClean, func() (int, error) {
		cleaned = Clean(computed)
		return len(cleaned), nil
	})
	b.logger.Info("cleaned vendor summary",
		slog.Int("rows", len(cleaned)),
		slog.String("preview", "\n"+Preview(cleaned, previewRows)),
	)

	b.logger.Info("writing vendor summary", slog.String("table", core.SummaryTable))
	if err := b.stage(res, StagePersist, func() (int, error) {
		return len(cleaned), b.Persist(ctx, cleaned)
	}); err != nil {
		return res, err
	}

	res.Rows = cleaned
	b.logger.Info("completed", slog.String("table", core.SummaryTable), slog.Int("rows", len(cleaned)))
	return res, nil
}

func (b *Builder) stage(res *Result, name string, fn func() (int, error)) error {
	start := time.Now()
	n, err := fn()
	sr := StageResult{Name: name, Rows: n, Duration: time.Since(start), Err: err}
	res.Stages = append(res.Stages, sr)

	if b.OnStage != nil {
		b.OnStage(sr)
	}
	if err != nil {
		b.logger.Error("stage failed", slog.String("stage", name), slog.String("error", err.Error()))
		return err
	}
	b.logger.Debug("stage done", slog.String("stage", name), slog.Int("rows", n), slog.Duration("duration", sr.Duration))
	return nil
}
