// Package summary builds the vendor_sales_summary table: one row per
// purchased (vendor, brand, price, volume) combination with its sales,
// freight and derived profitability ratios.
package summary

import (
	"strings"

	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// requiredColumns lists, per source table, the columns the summary query reads.
var requiredColumns = []struct {
	Table   string
	Columns []string
}{
	{Table: "vendor_invoice", Columns: []string{"VendorNumber", "Freight"}},
	{Table: "purchases", Columns: []string{"VendorNumber", "VendorName", "Brand", "Description", "PurchasePrice", "Quantity", "Dollars"}},
	{Table: "purchase_prices", Columns: []string{"Brand", "Price", "Volume"}},
	{Table: "sales", Columns: []string{"VendorNo", "Brand", "SalesQuantity", "SalesDollars", "SalesPrice", "ExciseTax"}},
}

// summaryQueryTemplate aggregates freight per vendor, purchases per priced
// brand and sales per (vendor, brand), then left-joins sales and freight onto
// the purchases. Ties on TotalPurchaseDollars are broken by the purchase group
// key so the order is total.
//
// Vendor ids, brands and summed measures are cast explicitly: a source
// extract with a header and no rows loads with untyped (text) columns, and
// SUM or a typed join over those would not bind.
const summaryQueryTemplate = `
WITH FreightSummary AS (
    SELECT
        CAST(VendorNumber AS {int}) AS VendorNumber,
        SUM(CAST(Freight AS {float})) AS FreightCost
    FROM vendor_invoice
    GROUP BY CAST(VendorNumber AS {int})
),

PurchaseSummary AS (
    SELECT
        CAST(p.VendorNumber AS {int}) AS VendorNumber,
        p.VendorName,
        p.Brand,
        p.Description,
        CAST(p.PurchasePrice AS {float}) AS PurchasePrice,
        CAST(pp.Price AS {float}) AS ActualPrice,
        pp.Volume,
        SUM(CAST(p.Quantity AS {float})) AS TotalPurchaseQuantity,
        SUM(CAST(p.Dollars AS {float})) AS TotalPurchaseDollars
    FROM purchases p
    JOIN purchase_prices pp
        ON CAST(p.Brand AS {text}) = CAST(pp.Brand AS {text})
    WHERE CAST(p.PurchasePrice AS {float}) > 0
    GROUP BY
        CAST(p.VendorNumber AS {int}),
        p.VendorName,
        p.Brand,
        p.Description,
        CAST(p.PurchasePrice AS {float}),
        CAST(pp.Price AS {float}),
        pp.Volume
),

SalesSummary AS (
    SELECT
        CAST(VendorNo AS {int}) AS VendorNo,
        CAST(Brand AS {text}) AS Brand,
        SUM(CAST(SalesQuantity AS {float})) AS TotalSalesQuantity,
        SUM(CAST(SalesDollars AS {float})) AS TotalSalesDollars,
        SUM(CAST(SalesPrice AS {float})) AS TotalSalesPrice,
        SUM(CAST(ExciseTax AS {float})) AS TotalExciseTax
    FROM sales
    GROUP BY CAST(VendorNo AS {int}), CAST(Brand AS {text})
)

SELECT
    ps.VendorNumber,
    ps.VendorName,
    ps.Brand,
    ps.Description,
    ps.PurchasePrice,
    ps.ActualPrice,
    ps.Volume,
    ps.TotalPurchaseQuantity,
    ps.TotalPurchaseDollars,
    ss.TotalSalesQuantity,
    ss.TotalSalesDollars,
    ss.TotalSalesPrice,
    ss.TotalExciseTax,
    fs.FreightCost
FROM PurchaseSummary ps
LEFT JOIN SalesSummary ss
    ON ps.VendorNumber = ss.VendorNo
    AND CAST(ps.Brand AS {text}) = ss.Brand
LEFT JOIN FreightSummary fs
    ON ps.VendorNumber = fs.VendorNumber
ORDER BY
    ps.TotalPurchaseDollars DESC,
    ps.VendorNumber,
    ps.Brand,
    ps.PurchasePrice,
    ps.ActualPrice,
    ps.Volume,
    ps.Description,
    ps.VendorName
`

// summaryQuery renders the summary query with the store's cast types.
func summaryQuery(d *core.DialectConfig) string {
	return strings.NewReplacer(
		"{int}", d.CastType(core.KindInteger),
		"{float}", d.CastType(core.KindFloat),
		"{text}", d.CastType(core.KindText),
	).Replace(summaryQueryTemplate)
}

// queryColumnNames are the columns summaryQuery selects, in order.
var queryColumnNames = []string{
	"VendorNumber", "VendorName", "Brand", "Description",
	"PurchasePrice", "ActualPrice", "Volume",
	"TotalPurchaseQuantity", "TotalPurchaseDollars",
	"TotalSalesQuantity", "TotalSalesDollars", "TotalSalesPrice", "TotalExciseTax",
	"FreightCost",
}

// queryColumns is the number of columns summaryQuery selects.
var queryColumns = len(queryColumnNames)
