// Package config holds the configuration defaults and target rules shared by
// the CLI and the pipeline.
package config

import (
	"strings"

	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// Default configuration values.
const (
	DefaultInputDir  = "data"
	DefaultDatabase  = "inventory.duckdb"
	DefaultStateFile = ".vendorperf/state.db"
	DefaultLogDir    = "logs"
	DefaultLogFile   = "vendorperf.log"
	DefaultLogLevel  = "debug"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultTarget    = "duckdb"
)

// defaultPorts holds the port used when a network target leaves it unset.
var defaultPorts = map[string]int{
	"postgres": 5432,
	"mysql":    3306,
}

// defaultSchemas holds the schema used when a target leaves it unset.
// MySQL uses the database name, so it has no entry.
var defaultSchemas = map[string]string{
	"duckdb":   "main",
	"sqlite":   "main",
	"postgres": "public",
}

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	return defaultSchemas[strings.ToLower(dbType)]
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}

	if t.Type == "" {
		t.Type = DefaultTarget
	}
	t.Type = strings.ToLower(t.Type)

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	if port, ok := defaultPorts[t.Type]; ok && t.Port == 0 {
		t.Port = port
	}

	if t.Database == "" && t.Type == "duckdb" {
		t.Database = DefaultDatabase
	}
}
