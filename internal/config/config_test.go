package config

import (
	"testing"

	"github.com/leapstack-labs/vendorperf/pkg/adapter"
	"github.com/leapstack-labs/vendorperf/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/vendorperf/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/vendorperf/pkg/adapters/postgres"
)

func TestApplyTargetDefaults(t *testing.T) {
	tests := []struct {
		name   string
		target *core.TargetConfig
		want   core.TargetConfig
	}{
		{
			name:   "empty target becomes duckdb file",
			target: &core.TargetConfig{},
			want:   core.TargetConfig{Type: "duckdb", Database: DefaultDatabase, Schema: "main"},
		},
		{
			name:   "postgres gets port and schema",
			target: &core.TargetConfig{Type: "Postgres", Database: "inventory"},
			want:   core.TargetConfig{Type: "postgres", Database: "inventory", Schema: "public", Port: 5432},
		},
		{
			name:   "mysql keeps explicit port",
			target: &core.TargetConfig{Type: "mysql", Database: "inventory", Port: 3307},
			want:   core.TargetConfig{Type: "mysql", Database: "inventory", Port: 3307},
		},
		{
			name:   "sqlite keeps database",
			target: &core.TargetConfig{Type: "sqlite", Database: "inventory.db"},
			want:   core.TargetConfig{Type: "sqlite", Database: "inventory.db", Schema: "main"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ApplyTargetDefaults(tt.target)
			assert.Equal(t, tt.want, *tt.target)
		})
	}

	assert.NotPanics(t, func() { ApplyTargetDefaults(nil) })
}

func TestValidateTarget(t *testing.T) {
	require.NoError(t, ValidateTarget(&core.TargetConfig{Type: "duckdb", Database: "x.duckdb"}))

	assert.ErrorContains(t, ValidateTarget(nil), "target is required")
	assert.ErrorContains(t, ValidateTarget(&core.TargetConfig{}), "target type is required")
	assert.ErrorContains(t, ValidateTarget(&core.TargetConfig{Type: "postgres"}), "database is required")

	err := ValidateTarget(&core.TargetConfig{Type: "oracle", Database: "x"})
	var unknown *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Type)
	assert.Contains(t, unknown.Available, "duckdb")
}
