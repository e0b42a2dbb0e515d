package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// defaultDialect is used when a concrete adapter leaves Dialect unset.
var defaultDialect = &core.DialectConfig{
	Name:          "ansi",
	DefaultSchema: "main",
	Placeholder:   core.PlaceholderQuestion,
	IntegerType:   "BIGINT",
	FloatType:     "DOUBLE",
	TextType:      "TEXT",
}

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query and WriteTable implementations.
type BaseSQLAdapter struct {
	DB      *sql.DB
	Cfg     core.AdapterConfig
	Dialect *core.DialectConfig
	Logger  *slog.Logger
}

// NewBase returns a BaseSQLAdapter for the given dialect.
// If logger is nil, a discard logger is used.
func NewBase(d *core.DialectConfig, logger *slog.Logger) BaseSQLAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return BaseSQLAdapter{Dialect: d, Logger: logger}
}

// DialectConfig returns the static dialect configuration.
func (b *BaseSQLAdapter) DialectConfig() *core.DialectConfig {
	if b.Dialect == nil {
		return defaultDialect
	}
	return b.Dialect
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		b.logger().Debug("closing database connection")
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*core.Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &core.Rows{Rows: rows}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses the dialect's default schema if not specified.
func ParseQualifiedName(table string, d *core.DialectConfig) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return d.DefaultSchema, table
}

// GetTableMetadataCommon provides a shared implementation of GetTableMetadata
// backed by information_schema.columns.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table string) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	d := b.DialectConfig()
	schema, tableName := ParseQualifiedName(table, d)

	//nolint:gosec // Placeholders come from the dialect and are safe (? or $N)
	query := fmt.Sprintf(`
		SELECT 
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns 
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	return &core.TableMetadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: b.CountRows(ctx, schema+"."+tableName),
	}, nil
}

// CountRows returns the number of rows in a table, or 0 if it cannot be counted.
func (b *BaseSQLAdapter) CountRows(ctx context.Context, table string) int64 {
	var n int64
	//nolint:gosec // Table names come from metadata or the loader's sanitizer
	if err := b.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0
	}
	return n
}

// RowSource yields rows one at a time. It returns ok=false once exhausted.
type RowSource func() (row []any, ok bool, err error)

// SliceSource returns a RowSource over an in-memory slice.
func SliceSource(rows [][]any) RowSource {
	i := 0
	return func() ([]any, bool, error) {
		if i >= len(rows) {
			return nil, false, nil
		}
		i++
		return rows[i-1], true, nil
	}
}

// WriteTable drops and recreates table with the given columns and inserts
// rows, all inside one transaction.
func (b *BaseSQLAdapter) WriteTable(ctx context.Context, table string, columns []core.ColumnDef, rows [][]any) error {
	return b.WriteRows(ctx, table, columns, SliceSource(rows))
}

// WriteRows is WriteTable over a streaming row source.
func (b *BaseSQLAdapter) WriteRows(ctx context.Context, table string, columns []core.ColumnDef, next RowSource) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if len(columns) == 0 {
		return fmt.Errorf("no columns given for table %s", table)
	}

	d := b.DialectConfig()
	log := b.logger()

	defs := make([]string, len(columns))
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = col.Name + " " + d.TypeFor(col.Kind)
		names[i] = col.Name
		marks[i] = d.FormatPlaceholder(i + 1)
	}

	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin write of %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}

	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	//nolint:gosec // Column names come from ColumnDef, values are bound
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	n := 0
	for ; ; n++ {
		row, ok, err := next()
		if err != nil {
			return fmt.Errorf("failed to read row %d for %s: %w", n, table, err)
		}
		if !ok {
			break
		}
		if len(row) != len(columns) {
			return fmt.Errorf("row %d of %s has %d values, want %d", n, table, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, bindValues(row, d)...); err != nil {
			return fmt.Errorf("failed to insert row %d into %s: %w", n, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit write of %s: %w", table, err)
	}

	log.Debug("table written", slog.String("table", table), slog.Int("rows", n))
	return nil
}

// bindValues maps NaN to NULL, and infinities to NULL on stores that reject them.
func bindValues(row []any, d *core.DialectConfig) []any {
	args := make([]any, len(row))
	for i, v := range row {
		f, ok := v.(float64)
		switch {
		case !ok:
			args[i] = v
		case math.IsNaN(f):
			args[i] = nil
		case math.IsInf(f, 0) && !d.NonFiniteFloats:
			args[i] = nil
		default:
			args[i] = f
		}
	}
	return args
}
