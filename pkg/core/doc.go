// Package core defines the shared language of vendorperf.
//
// This package contains:
//   - Store-facing types (AdapterConfig, TableMetadata, ColumnDef, DialectConfig)
//   - The error taxonomy (DataSourceError, SchemaError, IOError)
//   - The VendorSummary output row
//   - Run history entities (Run, RunStep)
//   - Configuration types (TargetConfig)
//
// pkg/core imports only the standard library.
// All other packages depend on core, not the reverse.
package core
