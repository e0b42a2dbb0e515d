package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/vendorperf/internal/testutil"
	"github.com/leapstack-labs/vendorperf/pkg/adapters/duckdb"
	"github.com/leapstack-labs/vendorperf/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *duckdb.Adapter {
	t.Helper()
	store := duckdb.New(testutil.NewTestLogger(t))
	require.NoError(t, store.Connect(context.Background(), core.AdapterConfig{Path: ":memory:"}))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestTableName(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"sales.csv", "sales"},
		{"purchase_prices.CSV", "purchase_prices"},
		{"vendor invoice.csv", "vendor_invoice"},
		{"2017-sales.csv", "t_2017_sales"},
		{"dir/purchases.csv", "purchases"},
		{"é.csv", "_"},
		{".csv", "t_"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, TableName(tt.file))
		})
	}
}

func TestLoad_VendorData(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	dir := testutil.VendorDataDir(t)
	testutil.WriteFiles(t, dir, map[string]string{"README.txt": "not data"})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.csv"), 0o750))

	var seen []string
	l := New(store, testutil.NewTestLogger(t))
	l.OnFile = func(r FileResult) { seen = append(seen, r.Table) }

	report, err := l.Load(ctx, dir)
	require.NoError(t, err)

	want := []string{"purchase_prices", "purchases", "sales", "vendor_invoice"}
	assert.Equal(t, want, seen)
	require.Len(t, report.Files, 4)
	assert.Empty(t, report.Failed())

	rows := map[string]int64{}
	for _, f := range report.Files {
		rows[f.Table] = f.Rows
		assert.NoError(t, f.Err)
	}
	assert.Equal(t, map[string]int64{
		"purchase_prices": 3,
		"purchases":       6,
		"sales":           3,
		"vendor_invoice":  3,
	}, rows)
}

func TestLoad_ReplacesTables(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	dir := testutil.VendorDataDir(t)
	l := New(store, nil)

	_, err := l.Load(ctx, dir)
	require.NoError(t, err)

	testutil.WriteFiles(t, dir, map[string]string{"sales.csv": "VendorNo,Brand,SalesQuantity,SalesDollars,SalesPrice,ExciseTax\n1,58,1,8,8,0.1\n"})
	_, err = l.Load(ctx, dir)
	require.NoError(t, err)

	meta, err := store.GetTableMetadata(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.RowCount)
	assert.Len(t, meta.Columns, 6)
}

// failingStore rejects one table and records the others.
type failingStore struct {
	core.Adapter
	reject string
	loaded []string
}

func (s *failingStore) LoadCSV(_ context.Context, table, _ string) error {
	if table == s.reject {
		return errors.New("malformed CSV")
	}
	s.loaded = append(s.loaded, table)
	return nil
}

func (s *failingStore) GetTableMetadata(_ context.Context, table string) (*core.TableMetadata, error) {
	return &core.TableMetadata{Name: table, RowCount: 1}, nil
}

func TestLoad_BrokenFileIsIsolated(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"a_good.csv": "x,y\n1,2\n",
		"b_bad.csv":  "x\n\"unterminated\n",
		"c_good.csv": "z\n3\n",
	})
	store := &failingStore{reject: "b_bad"}

	report, err := New(store, testutil.NewTestLogger(t)).Load(context.Background(), dir)
	require.Error(t, err)

	var dsErr *core.DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, filepath.Join(dir, "b_bad.csv"), dsErr.Source)
	assert.Contains(t, err.Error(), "malformed CSV")

	require.Len(t, report.Files, 3)
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "b_bad", failed[0].Table)
	assert.Equal(t, []string{"a_good", "c_good"}, store.loaded)
}

func TestLoad_MissingDir(t *testing.T) {
	report, err := New(newStore(t), nil).Load(context.Background(), filepath.Join(t.TempDir(), "nope"))

	var dsErr *core.DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Empty(t, report.Files)
}

func TestLoad_EmptyDir(t *testing.T) {
	report, err := New(newStore(t), nil).Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, report.Files)
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(newStore(t), nil).Load(ctx, testutil.VendorDataDir(t))
	assert.ErrorIs(t, err, context.Canceled)
}
