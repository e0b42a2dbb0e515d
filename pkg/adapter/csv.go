package adapter

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// InferCSVColumns reads the header and every record of a CSV file and
// returns one column per header field. A column is an integer if every
// non-empty value parses as one, a float if every non-empty value parses
// as a number, and text otherwise. Columns with no values are text.
func InferCSVColumns(path string) ([]core.ColumnDef, error) {
	f, err := os.Open(path) //nolint:gosec // path is the file the caller asked to load
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]core.ColumnDef, len(header))
	seen := make([]bool, len(header))
	for i, h := range header {
		columns[i] = core.ColumnDef{Name: SanitizeIdentifier(h), Kind: core.KindInteger}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		for i := range columns {
			if i >= len(rec) || rec[i] == "" {
				continue
			}
			seen[i] = true
			columns[i].Kind = widen(columns[i].Kind, rec[i])
		}
	}

	for i := range columns {
		if !seen[i] {
			columns[i].Kind = core.KindText
		}
	}
	return columns, nil
}

func widen(kind core.ColumnKind, v string) core.ColumnKind {
	switch kind {
	case core.KindInteger:
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			return core.KindInteger
		}
		fallthrough
	case core.KindFloat:
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return core.KindFloat
		}
	}
	return core.KindText
}

// CSVRows opens a CSV file and returns a RowSource over its records with
// values converted to the given column kinds. Empty fields become NULL.
// The returned closer must be called once the source is drained.
func CSVRows(path string, columns []core.ColumnDef) (RowSource, io.Closer, error) {
	f, err := os.Open(path) //nolint:gosec // path is the file the caller asked to load
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	next := func() ([]any, bool, error) {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		row := make([]any, len(columns))
		for i, col := range columns {
			if i >= len(rec) {
				continue
			}
			row[i] = convert(rec[i], col.Kind)
		}
		return row, true, nil
	}
	return next, f, nil
}

func convert(v string, kind core.ColumnKind) any {
	if v == "" {
		return nil
	}
	switch kind {
	case core.KindInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case core.KindFloat:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}

// LoadCSVByInsert replaces table with the contents of a CSV file using
// inferred column types and parameterized inserts. Adapters without a bulk
// file loader use it as their LoadCSV.
func (b *BaseSQLAdapter) LoadCSVByInsert(ctx context.Context, table, path string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	columns, err := InferCSVColumns(path)
	if err != nil {
		return err
	}

	next, closer, err := CSVRows(path, columns)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	return b.WriteRows(ctx, table, columns, next)
}

// SanitizeIdentifier makes a column name safe for SQL.
func SanitizeIdentifier(name string) string {
	safe := strings.TrimSpace(name)
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = strings.ReplaceAll(safe, "-", "_")
	if strings.ContainsAny(safe, "()[]{}") || isReservedWord(safe) {
		return fmt.Sprintf(`"%s"`, safe)
	}
	return safe
}

func isReservedWord(name string) bool {
	reserved := map[string]bool{
		"user": true, "order": true, "group": true, "table": true,
		"select": true, "from": true, "where": true, "index": true,
	}
	return reserved[strings.ToLower(name)]
}
