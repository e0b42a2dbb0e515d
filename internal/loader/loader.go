// Package loader ingests every CSV file of an input directory into the
// store, one table per file, replacing what was there before.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/leapstack-labs/vendorperf/pkg/adapter"
	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// FileResult is the outcome of loading one file.
type FileResult struct {
	File     string
	Table    string
	Rows     int64
	Duration time.Duration
	Err      error
}

// Report collects the results of a Load call in file order.
type Report struct {
	Dir     string
	Files   []FileResult
	Elapsed time.Duration
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Loader loads CSV files into a store.
type Loader struct {
	store  adapter.Adapter
	logger *slog.Logger

	// OnFile, when set, is called after each file is attempted.
	OnFile func(FileResult)
}

// New creates a Loader writing to store.
// If logger is nil, a discard logger is used.
func New(store adapter.Adapter, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{store: store, logger: logger}
}

// Load ingests every .csv file in dir, in lexical order. A file that fails
// does not stop the others; the returned error joins one
// *core.DataSourceError per failed file. The report is returned even when
// some files failed.
func (l *Loader) Load(ctx context.Context, dir string) (*Report, error) {
	start := time.Now()
	report := &Report{Dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, &core.DataSourceError{Source: dir, Err: err}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	l.logger.Info("ingestion started", slog.String("dir", dir), slog.Int("files", len(files)))

	var errs []error
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := l.loadFile(ctx, dir, name)
		report.Files = append(report.Files, res)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		if l.OnFile != nil {
			l.OnFile(res)
		}
	}

	report.Elapsed = time.Since(start)
	l.logger.Info("ingestion complete",
		slog.Int("files", len(report.Files)),
		slog.Int("failed", len(errs)),
		slog.String("total_time", fmt.Sprintf("%.2f minutes", report.Elapsed.Minutes())),
	)

	return report, errors.Join(errs...)
}

func (l *Loader) loadFile(ctx context.Context, dir, name string) FileResult {
	start := time.Now()
	res := FileResult{File: name, Table: TableName(name)}
	path := filepath.Join(dir, name)

	l.logger.Info("ingesting file", slog.String("file", name), slog.String("table", res.Table))

	if err := l.store.LoadCSV(ctx, res.Table, path); err != nil {
		res.Err = &core.DataSourceError{Source: path, Err: err}
		res.Duration = time.Since(start)
		l.logger.Error("failed to ingest file", slog.String("file", name), slog.String("error", err.Error()))
		return res
	}

	if meta, err := l.store.GetTableMetadata(ctx, res.Table); err == nil {
		res.Rows = meta.RowCount
	}
	res.Duration = time.Since(start)

	l.logger.Info("ingested file",
		slog.String("file", name),
		slog.String("table", res.Table),
		slog.Int64("rows", res.Rows),
		slog.Duration("duration", res.Duration),
	)
	return res
}

// TableName derives a table name from a file name: the extension is
// dropped, characters outside [A-Za-z0-9_] become '_', and a leading digit
// gets a "t_" prefix.
func TableName(file string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	name := b.String()
	if name == "" {
		return "t_"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "t_" + name
	}
	return name
}
