package summary

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/vendorperf/internal/loader"
	"github.com/leapstack-labs/vendorperf/internal/testutil"
	"github.com/leapstack-labs/vendorperf/pkg/adapter"
	"github.com/leapstack-labs/vendorperf/pkg/adapters/duckdb"
	"github.com/leapstack-labs/vendorperf/pkg/adapters/sqlite"
	"github.com/leapstack-labs/vendorperf/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDuckDB(t *testing.T) *duckdb.Adapter {
	t.Helper()
	store := duckdb.New(testutil.NewTestLogger(t))
	require.NoError(t, store.Connect(context.Background(), core.AdapterConfig{Path: ":memory:"}))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func openSQLite(t *testing.T) *sqlite.Adapter {
	t.Helper()
	store := sqlite.New(testutil.NewTestLogger(t))
	require.NoError(t, store.Connect(context.Background(), core.AdapterConfig{Path: ":memory:"}))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func loadFixture(t *testing.T, store adapter.Adapter) {
	t.Helper()
	_, err := loader.New(store, nil).Load(context.Background(), testutil.VendorDataDir(t))
	require.NoError(t, err)
}

func execAll(t *testing.T, store adapter.Adapter, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		require.NoError(t, store.Exec(context.Background(), stmt), stmt)
	}
}

// createTypedSources creates the four source tables with explicit types.
func createTypedSources(t *testing.T, store adapter.Adapter, volumeType string) {
	t.Helper()
	execAll(t, store,
		"CREATE TABLE vendor_invoice (VendorNumber BIGINT, Freight DOUBLE)",
		"CREATE TABLE purchases (VendorNumber BIGINT, VendorName VARCHAR, Brand BIGINT, Description VARCHAR, PurchasePrice DOUBLE, Quantity BIGINT, Dollars DOUBLE)",
		"CREATE TABLE purchase_prices (Brand BIGINT, Price DOUBLE, Volume "+volumeType+")",
		"CREATE TABLE sales (VendorNo BIGINT, Brand BIGINT, SalesQuantity BIGINT, SalesDollars DOUBLE, SalesPrice DOUBLE, ExciseTax DOUBLE)",
	)
}

func readSummary(t *testing.T, store adapter.Adapter) [][]any {
	t.Helper()
	rows, err := store.Query(context.Background(),
		"SELECT VendorNumber, Brand, TotalPurchaseDollars, GrossProfit, ProfitMargin FROM vendor_sales_summary")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var out [][]any
	for rows.Next() {
		var vendor int64
		var brand string
		var purchase, gross float64
		var margin *float64
		require.NoError(t, rows.Scan(&vendor, &brand, &purchase, &gross, &margin))
		var m any
		if margin != nil {
			m = *margin
		}
		out = append(out, []any{vendor, brand, purchase, gross, m})
	}
	require.NoError(t, rows.Err())
	return out
}

func TestBuild_SinglePurchaseWithoutSales(t *testing.T) {
	store := openDuckDB(t)
	createTypedSources(t, store, "VARCHAR")
	execAll(t, store,
		"INSERT INTO purchases VALUES (1, 'Acme', 10, 'Gin', 5, 10, 50)",
		"INSERT INTO purchase_prices VALUES (10, 8, '750')",
	)

	res, err := NewBuilder(store, testutil.NewTestLogger(t)).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	r := res.Rows[0]
	assert.Equal(t, int64(1), r.VendorNumber)
	assert.Equal(t, "10", r.Brand)
	assert.Equal(t, 50.0, r.TotalPurchaseDollars)
	assert.Equal(t, 0.0, r.TotalSalesDollars)
	assert.Equal(t, 0.0, r.TotalSalesQuantity)
	assert.Equal(t, 0.0, r.FreightCost)
	assert.Equal(t, -50.0, r.GrossProfit)
	assert.Equal(t, 750.0, r.Volume)
	assert.True(t, math.IsInf(r.ProfitMargin, -1))

	var names []string
	for _, s := range res.Stages {
		names = append(names, s.Name)
		assert.NoError(t, s.Err)
	}
	assert.Equal(t, []string{StageValidate, StageCompute, StageClean, StagePersist}, names)

	persisted := readSummary(t, store)
	require.Len(t, persisted, 1)
	assert.Equal(t, []any{int64(1), "10", 50.0, -50.0, math.Inf(-1)}, persisted[0])
}

func TestBuild_VendorFixture(t *testing.T) {
	stores := map[string]func(*testing.T) adapter.Adapter{
		"duckdb": func(t *testing.T) adapter.Adapter { return openDuckDB(t) },
		"sqlite": func(t *testing.T) adapter.Adapter { return openSQLite(t) },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			loadFixture(t, store)

			res, err := NewBuilder(store, testutil.NewTestLogger(t)).Build(context.Background())
			require.NoError(t, err)
			require.Len(t, res.Rows, 3, "one row per purchase group")

			beta, gin, rum := res.Rows[0], res.Rows[1], res.Rows[2]

			assert.Equal(t, int64(2), beta.VendorNumber)
			assert.Equal(t, "Beta", beta.VendorName)
			assert.Equal(t, "70", beta.Brand)
			assert.Equal(t, 600.0, beta.TotalPurchaseDollars, "zero-price purchase excluded")
			assert.Equal(t, 30.0, beta.TotalPurchaseQuantity)
			assert.Equal(t, 1000.0, beta.TotalSalesDollars)
			assert.Equal(t, 400.0, beta.GrossProfit)
			assert.InDelta(t, 40.0, beta.ProfitMargin, 1e-9)
			assert.InDelta(t, 3.0, beta.FreightCost, 1e-9)
			assert.Equal(t, 1750.0, beta.Volume)

			assert.Equal(t, "ACME", gin.VendorName)
			assert.Equal(t, "Gin", gin.Description)
			assert.Equal(t, 150.0, gin.TotalPurchaseDollars)
			assert.Equal(t, 20.0, gin.TotalSalesQuantity)
			assert.Equal(t, 160.0, gin.TotalSalesDollars)
			assert.InDelta(t, 16.0, gin.TotalSalesPrice, 1e-9)
			assert.InDelta(t, 2.5, gin.TotalExciseTax, 1e-9)
			assert.InDelta(t, 15.0, gin.FreightCost, 1e-9)
			assert.InDelta(t, 6.25, gin.ProfitMargin, 1e-9)
			assert.InDelta(t, 2.0/3.0, gin.StockTurnover, 1e-9)

			assert.Equal(t, "62", rum.Brand)
			assert.Equal(t, 0.0, rum.TotalSalesQuantity, "no matching sales reads as zero")
			assert.Equal(t, -60.0, rum.GrossProfit)
			assert.True(t, math.IsInf(rum.ProfitMargin, -1))

			for i := 1; i < len(res.Rows); i++ {
				assert.GreaterOrEqual(t, res.Rows[i-1].TotalPurchaseDollars, res.Rows[i].TotalPurchaseDollars)
			}

			persisted := readSummary(t, store)
			assert.Len(t, persisted, 3)
		})
	}
}

// readSummaryTable reads every persisted column of the summary table.
func readSummaryTable(t *testing.T, store adapter.Adapter) [][]any {
	t.Helper()
	names := make([]string, len(core.SummaryColumns))
	for i, col := range core.SummaryColumns {
		names[i] = col.Name
	}
	rows, err := store.Query(context.Background(),
		"SELECT "+strings.Join(names, ", ")+" FROM "+core.SummaryTable)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var out [][]any
	for rows.Next() {
		raw := make([]any, len(names))
		dest := make([]any, len(names))
		for i := range raw {
			dest[i] = &raw[i]
		}
		require.NoError(t, rows.Scan(dest...))
		out = append(out, raw)
	}
	require.NoError(t, rows.Err())
	return out
}

// assertSameCells compares two tables cell by cell, treating NaN as equal to NaN.
func assertSameCells(t *testing.T, want, got [][]any) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Len(t, got[i], len(want[i]), "row %d", i)
		for j := range want[i] {
			wf, wok := want[i][j].(float64)
			gf, gok := got[i][j].(float64)
			if wok && gok && math.IsNaN(wf) && math.IsNaN(gf) {
				continue
			}
			assert.Equal(t, want[i][j], got[i][j], "row %d column %d", i, j)
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	store := openDuckDB(t)
	loadFixture(t, store)
	execAll(t, store,
		// a 0/0 ratio, persisted as NULL
		"INSERT INTO purchases VALUES ('4_D_80', 4, 80, 'Free', 4, 'Delta', 1, 0, 0)",
		"INSERT INTO purchase_prices VALUES (80, 'Free', 1, 500, 4)",
	)
	b := NewBuilder(store, nil)

	first, err := b.Build(context.Background())
	require.NoError(t, err)
	firstTable := readSummaryTable(t, store)

	second, err := b.Build(context.Background())
	require.NoError(t, err)
	secondTable := readSummaryTable(t, store)

	require.Len(t, first.Rows, 4)
	toCells := func(rows []core.VendorSummary) [][]any {
		out := make([][]any, len(rows))
		for i, r := range rows {
			out[i] = r.Values()
		}
		return out
	}
	assertSameCells(t, toCells(first.Rows), toCells(second.Rows))

	require.Len(t, firstTable, 4, "replace, not append")
	require.Len(t, firstTable[0], len(core.SummaryColumns))
	assertSameCells(t, firstTable, secondTable)

	var nulls int
	for _, row := range firstTable {
		if row[len(row)-1] == nil {
			nulls++
		}
	}
	assert.Equal(t, 1, nulls, "NaN ratio stored as NULL")
}

// emptySalesAndFreight is one priced purchase with header-only sales and
// vendor_invoice extracts.
var emptySalesAndFreight = map[string]string{
	"purchases.csv":       "VendorNumber,VendorName,Brand,Description,PurchasePrice,Quantity,Dollars\n1,Acme,A,Gin,5,10,50\n",
	"purchase_prices.csv": "Brand,Price,Volume\nA,8,750\n",
	"sales.csv":           "VendorNo,Brand,SalesQuantity,SalesDollars,SalesPrice,ExciseTax\n",
	"vendor_invoice.csv":  "VendorNumber,Freight\n",
}

func TestBuild_EmptySalesAndFreightFromCSV(t *testing.T) {
	tests := []struct {
		name string
		open func(*testing.T) adapter.Adapter
	}{
		{name: "duckdb", open: func(t *testing.T) adapter.Adapter { return openDuckDB(t) }},
		{name: "sqlite", open: func(t *testing.T) adapter.Adapter { return openSQLite(t) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.open(t)
			dir := testutil.WriteFiles(t, t.TempDir(), emptySalesAndFreight)

			report, err := loader.New(store, nil).Load(context.Background(), dir)
			require.NoError(t, err)
			require.Len(t, report.Files, 4)

			res, err := NewBuilder(store, testutil.NewTestLogger(t)).Build(context.Background())
			require.NoError(t, err)
			require.Len(t, res.Rows, 1)

			r := res.Rows[0]
			assert.Equal(t, int64(1), r.VendorNumber)
			assert.Equal(t, "Acme", r.VendorName)
			assert.Equal(t, "A", r.Brand)
			assert.Equal(t, 50.0, r.TotalPurchaseDollars)
			assert.Equal(t, 10.0, r.TotalPurchaseQuantity)
			assert.Equal(t, 0.0, r.TotalSalesDollars)
			assert.Equal(t, 0.0, r.TotalSalesQuantity)
			assert.Equal(t, 0.0, r.FreightCost)
			assert.Equal(t, -50.0, r.GrossProfit)
			assert.Equal(t, 750.0, r.Volume)
			assert.Equal(t, 8.0, r.ActualPrice)
			assert.True(t, math.IsInf(r.ProfitMargin, -1))
			assert.Equal(t, 0.0, r.StockTurnover)
			assert.Equal(t, 0.0, r.SalesToPurchaseRatio)

			persisted := readSummaryTable(t, store)
			require.Len(t, persisted, 1)
		})
	}
}

func TestBuild_ComputedPreviewKeepsNulls(t *testing.T) {
	store := openDuckDB(t)
	loadFixture(t, store)

	var buf bytes.Buffer
	_, err := NewBuilder(store, slog.New(slog.NewTextHandler(&buf, nil))).Build(context.Background())
	require.NoError(t, err)

	var computed, cleaned string
	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.Contains(line, `msg="computed vendor summary"`):
			computed = line
		case strings.Contains(line, `msg="cleaned vendor summary"`):
			cleaned = line
		}
	}
	require.NotEmpty(t, computed)
	require.NotEmpty(t, cleaned)
	assert.Contains(t, computed, "NULL", "unmatched sales side shows before cleaning")
	assert.NotContains(t, cleaned, "NULL")
}

func TestSummaryQuery_CastsPerDialect(t *testing.T) {
	duck := summaryQuery(duckdb.Dialect)
	assert.Contains(t, duck, "SUM(CAST(SalesQuantity AS DOUBLE))")
	assert.Contains(t, duck, "CAST(VendorNo AS BIGINT)")
	assert.Contains(t, duck, "CAST(pp.Brand AS VARCHAR)")
	assert.NotContains(t, duck, "{")

	lite := summaryQuery(sqlite.Dialect)
	assert.Contains(t, lite, "SUM(CAST(Freight AS REAL))")
	assert.Contains(t, lite, "CAST(ps.Brand AS TEXT) = ss.Brand")

	my := summaryQuery(&core.DialectConfig{
		IntegerType: "BIGINT", FloatType: "DOUBLE", TextType: "TEXT",
		CastIntegerType: "SIGNED", CastTextType: "CHAR",
	})
	assert.Contains(t, my, "CAST(VendorNumber AS SIGNED)")
	assert.Contains(t, my, "CAST(Brand AS CHAR)")
}

func TestCompute_TiesAreOrderedByGroupKey(t *testing.T) {
	store := openDuckDB(t)
	createTypedSources(t, store, "DOUBLE")
	execAll(t, store,
		"INSERT INTO purchases VALUES (2, 'B', 20, 'x', 1, 1, 100), (1, 'A', 30, 'y', 1, 1, 100), (1, 'A', 10, 'z', 1, 1, 100)",
		"INSERT INTO purchase_prices VALUES (10, 2, 750), (20, 2, 750), (30, 2, 750)",
	)

	b := NewBuilder(store, nil)
	for range 3 {
		rows, err := b.Compute(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"10", "30", "20"}, []string{rows[0].Brand, rows[1].Brand, rows[2].Brand})
	}
}

func TestCompute_GroupsSumDollars(t *testing.T) {
	store := openDuckDB(t)
	createTypedSources(t, store, "DOUBLE")
	execAll(t, store,
		"INSERT INTO purchases VALUES (1, 'A', 10, 'Gin', 5, 1, 5), (1, 'A', 10, 'Gin', 5, 2, 10), (1, 'A', 10, 'Gin', 6, 1, 6), (1, 'A', 10, 'Gin', -1, 1, 99)",
		"INSERT INTO purchase_prices VALUES (10, 8, 750)",
	)

	rows, err := NewBuilder(store, nil).Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2, "purchase price is part of the group key")
	assert.Equal(t, 15.0, rows[0].TotalPurchaseDollars)
	assert.Equal(t, 3.0, rows[0].TotalPurchaseQuantity)
	assert.Equal(t, 6.0, rows[1].TotalPurchaseDollars)
}

func TestCompute_UnparseableVolume(t *testing.T) {
	store := openDuckDB(t)
	createTypedSources(t, store, "VARCHAR")
	execAll(t, store,
		"INSERT INTO purchases VALUES (1, 'A', 10, 'Gin', 5, 1, 5)",
		"INSERT INTO purchase_prices VALUES (10, 8, '750ml')",
	)

	_, err := NewBuilder(store, nil).Compute(context.Background())

	var dsErr *core.DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, "purchase_prices", dsErr.Source)
	assert.Contains(t, err.Error(), "Volume")
}

func TestValidate(t *testing.T) {
	t.Run("all sources present", func(t *testing.T) {
		store := openDuckDB(t)
		createTypedSources(t, store, "DOUBLE")
		assert.NoError(t, NewBuilder(store, nil).Validate(context.Background()))
	})

	t.Run("missing table", func(t *testing.T) {
		store := openDuckDB(t)
		createTypedSources(t, store, "DOUBLE")
		execAll(t, store, "DROP TABLE sales")

		err := NewBuilder(store, nil).Validate(context.Background())

		var dsErr *core.DataSourceError
		require.ErrorAs(t, err, &dsErr)
		assert.Equal(t, "sales", dsErr.Source)
	})

	t.Run("missing column", func(t *testing.T) {
		store := openDuckDB(t)
		createTypedSources(t, store, "DOUBLE")
		execAll(t, store,
			"DROP TABLE vendor_invoice",
			"CREATE TABLE vendor_invoice (VendorNumber BIGINT, Dollars DOUBLE)",
		)

		err := NewBuilder(store, nil).Validate(context.Background())

		var schemaErr *core.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "vendor_invoice", schemaErr.Table)
		assert.Equal(t, "Freight", schemaErr.Column)
	})

	t.Run("build stops before compute", func(t *testing.T) {
		store := openDuckDB(t)

		var stages []StageResult
		b := NewBuilder(store, nil)
		b.OnStage = func(s StageResult) { stages = append(stages, s) }

		res, err := b.Build(context.Background())
		require.Error(t, err)
		assert.Empty(t, res.Rows)
		require.Len(t, stages, 1)
		assert.Equal(t, StageValidate, stages[0].Name)
		assert.Error(t, stages[0].Err)

		var dsErr *core.DataSourceError
		assert.ErrorAs(t, err, &dsErr)
	})
}

func mockStore(t *testing.T) (*duckdb.Adapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := duckdb.New(nil)
	store.DB = db
	return store, mock
}

func TestCompute_DriverValueShapes(t *testing.T) {
	store, mock := mockStore(t)

	cols := []string{"VendorNumber", "VendorName", "Brand", "Description", "PurchasePrice", "ActualPrice", "Volume",
		"TotalPurchaseQuantity", "TotalPurchaseDollars", "TotalSalesQuantity", "TotalSalesDollars",
		"TotalSalesPrice", "TotalExciseTax", "FreightCost"}
	mock.ExpectQuery(regexp.QuoteMeta("WITH FreightSummary AS")).WillReturnRows(
		sqlmock.NewRows(cols).
			AddRow([]byte("7"), []byte("Globex "), int64(58), nil, []byte("12.50"), 20.0, "750",
				[]byte("10"), []byte("125.00"), nil, nil, nil, nil, []byte("4.25")),
	)

	rows, err := NewBuilder(store, nil).Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, int64(7), r.VendorNumber)
	assert.Equal(t, "Globex ", r.VendorName, "trimming happens in Clean")
	assert.Equal(t, "58", r.Brand)
	assert.Equal(t, "", r.Description)
	assert.Equal(t, 12.5, r.PurchasePrice)
	assert.Equal(t, 750.0, r.Volume)
	assert.Equal(t, 125.0, r.TotalPurchaseDollars)
	assert.Equal(t, 0.0, r.TotalSalesDollars)
	assert.Equal(t, 4.25, r.FreightCost)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompute_QueryFailure(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectQuery("WITH FreightSummary").WillReturnError(errors.New("Catalog Error: Table with name sales does not exist"))

	_, err := NewBuilder(store, nil).Compute(context.Background())

	var dsErr *core.DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Contains(t, err.Error(), "sales does not exist")
}

func TestPersist(t *testing.T) {
	rows := []core.VendorSummary{{
		VendorNumber: 1, VendorName: "ACME", Brand: "58", Description: "Gin",
		TotalPurchaseDollars: 50, GrossProfit: -50,
		ProfitMargin: math.Inf(-1), StockTurnover: 0, SalesToPurchaseRatio: math.NaN(),
	}}

	t.Run("writes one transaction", func(t *testing.T) {
		store, mock := mockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS vendor_sales_summary")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE vendor_sales_summary (VendorNumber BIGINT, VendorName VARCHAR, Brand VARCHAR")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO vendor_sales_summary (VendorNumber, VendorName"))
		prep.ExpectExec().WithArgs(
			int64(1), "ACME", "58", "Gin",
			0.0, 0.0, 0.0, 0.0, 50.0, 0.0, 0.0, 0.0, 0.0, 0.0,
			-50.0, math.Inf(-1), 0.0, nil,
		).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewBuilder(store, nil).Persist(context.Background(), rows))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store rejects write", func(t *testing.T) {
		store, mock := mockStore(t)
		mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

		err := NewBuilder(store, nil).Persist(context.Background(), rows)

		var ioErr *core.IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, core.SummaryTable, ioErr.Target)
		assert.Contains(t, err.Error(), "database is locked")
	})
}
