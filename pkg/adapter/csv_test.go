package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/vendorperf/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestInferCSVColumns(t *testing.T) {
	path := writeCSV(t, "VendorNumber,Freight,VendorName,Notes,Volume\n"+
		"1,10.5,ACME ,,750\n"+
		"2,3,Beta,,1.5\n")

	columns, err := InferCSVColumns(path)
	require.NoError(t, err)

	assert.Equal(t, []core.ColumnDef{
		{Name: "VendorNumber", Kind: core.KindInteger},
		{Name: "Freight", Kind: core.KindFloat},
		{Name: "VendorName", Kind: core.KindText},
		{Name: "Notes", Kind: core.KindText},
		{Name: "Volume", Kind: core.KindFloat},
	}, columns)
}

func TestInferCSVColumns_Errors(t *testing.T) {
	_, err := InferCSVColumns(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorContains(t, err, "failed to open CSV file")

	_, err = InferCSVColumns(writeCSV(t, ""))
	assert.ErrorContains(t, err, "failed to read CSV header")
}

func TestCSVRows(t *testing.T) {
	path := writeCSV(t, "a,b,c\n1,2.5,x\n,,\n")
	columns := []core.ColumnDef{
		{Name: "a", Kind: core.KindInteger},
		{Name: "b", Kind: core.KindFloat},
		{Name: "c", Kind: core.KindText},
	}

	next, closer, err := CSVRows(path, columns)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	row, ok, err := next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), 2.5, "x"}, row)

	row, ok, err = next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{nil, nil, nil}, row)

	_, ok, err = next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"name", "name"},
		{"my column", "my_column"},
		{"sales-date", "sales_date"},
		{"user", `"user"`},
		{"Order", `"Order"`},
		{" Volume ", "Volume"},
		{"col(1)", `"col(1)"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeIdentifier(tt.input))
		})
	}
}
