package summary

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/vendorperf/pkg/core"
)

// Clean trims the vendor name and description, derives the profitability
// columns and orders the rows by TotalPurchaseDollars, largest first. It
// returns a new slice and leaves rows untouched.
//
// Ratios follow IEEE-754: a zero denominator gives ±Inf, or NaN when the
// numerator is zero too.
func Clean(rows []core.VendorSummary) []core.VendorSummary {
	out := make([]core.VendorSummary, len(rows))
	for i, r := range rows {
		r.VendorName = strings.TrimSpace(r.VendorName)
		r.Description = strings.TrimSpace(r.Description)

		r.GrossProfit = r.TotalSalesDollars - r.TotalPurchaseDollars
		r.ProfitMargin = r.GrossProfit / r.TotalSalesDollars * 100
		r.StockTurnover = r.TotalSalesQuantity / r.TotalPurchaseQuantity
		r.SalesToPurchaseRatio = r.TotalSalesDollars / r.TotalPurchaseDollars

		out[i] = r
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalPurchaseDollars > out[j].TotalPurchaseDollars
	})
	return out
}
