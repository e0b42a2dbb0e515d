package core

import "strconv"

// DialectConfig holds the static configuration for a SQL dialect.
// This is pure data, shared by the adapters and the summary writer.
type DialectConfig struct {
	// Name is the dialect identifier (e.g., "duckdb", "postgres")
	Name string

	// DefaultSchema is the default schema name ("main" for DuckDB, "public" for Postgres)
	DefaultSchema string

	// Placeholder defines how query parameters are formatted
	Placeholder PlaceholderStyle

	// Column types used when creating tables
	IntegerType string
	FloatType   string
	TextType    string

	// Target types for CAST expressions. Empty means the column type above.
	CastIntegerType string
	CastFloatType   string
	CastTextType    string

	// NonFiniteFloats reports whether the store accepts +Inf/-Inf in float columns.
	NonFiniteFloats bool
}

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (DuckDB, MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
)

// FormatPlaceholder returns the placeholder for the n-th (1-based) parameter.
func (d *DialectConfig) FormatPlaceholder(n int) string {
	if d.Placeholder == PlaceholderDollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// TypeFor returns the column type name for a column kind.
func (d *DialectConfig) TypeFor(kind ColumnKind) string {
	switch kind {
	case KindInteger:
		return d.IntegerType
	case KindFloat:
		return d.FloatType
	default:
		return d.TextType
	}
}

// CastType returns the type name to use in CAST(x AS ...) for a column kind.
// Stores whose CAST grammar differs from their column types (MySQL) set the
// Cast*Type fields.
func (d *DialectConfig) CastType(kind ColumnKind) string {
	var t string
	switch kind {
	case KindInteger:
		t = d.CastIntegerType
	case KindFloat:
		t = d.CastFloatType
	default:
		t = d.CastTextType
	}
	if t == "" {
		return d.TypeFor(kind)
	}
	return t
}
