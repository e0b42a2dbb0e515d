package core

import "fmt"

// DataSourceError reports a missing or unreadable table or file.
type DataSourceError struct {
	// Source is the table name or file path.
	Source string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %q: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// SchemaError reports a table that lacks a column the pipeline references.
type SchemaError struct {
	Table  string
	Column string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("table %s: missing column %s", e.Table, e.Column)
	}
	return fmt.Sprintf("table %s, column %s: %v", e.Table, e.Column, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// IOError reports an unreachable store or an unwritable path.
type IOError struct {
	Op     string
	Target string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
