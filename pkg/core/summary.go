package core

// SummaryTable is the name of the table the summary builder writes.
const SummaryTable = "vendor_sales_summary"

// VendorSummary is one row of the vendor sales summary: a purchase group
// joined with its sales and freight totals plus the derived ratios.
type VendorSummary struct {
	VendorNumber          int64
	VendorName            string
	Brand                 string
	Description           string
	PurchasePrice         float64
	ActualPrice           float64
	Volume                float64
	TotalPurchaseQuantity float64
	TotalPurchaseDollars  float64
	TotalSalesQuantity    float64
	TotalSalesDollars     float64
	TotalSalesPrice       float64
	TotalExciseTax        float64
	FreightCost           float64
	GrossProfit           float64
	ProfitMargin          float64
	StockTurnover         float64
	SalesToPurchaseRatio  float64
}

// SummaryColumns lists the output columns in table order.
var SummaryColumns = []ColumnDef{
	{Name: "VendorNumber", Kind: KindInteger},
	{Name: "VendorName", Kind: KindText},
	{Name: "Brand", Kind: KindText},
	{Name: "Description", Kind: KindText},
	{Name: "PurchasePrice", Kind: KindFloat},
	{Name: "ActualPrice", Kind: KindFloat},
	{Name: "Volume", Kind: KindFloat},
	{Name: "TotalPurchaseQuantity", Kind: KindFloat},
	{Name: "TotalPurchaseDollars", Kind: KindFloat},
	{Name: "TotalSalesQuantity", Kind: KindFloat},
	{Name: "TotalSalesDollars", Kind: KindFloat},
	{Name: "TotalSalesPrice", Kind: KindFloat},
	{Name: "TotalExciseTax", Kind: KindFloat},
	{Name: "FreightCost", Kind: KindFloat},
	{Name: "GrossProfit", Kind: KindFloat},
	{Name: "ProfitMargin", Kind: KindFloat},
	{Name: "StockTurnover", Kind: KindFloat},
	{Name: "SalesToPurchaseRatio", Kind: KindFloat},
}

// Values returns the row's values in SummaryColumns order.
func (s VendorSummary) Values() []any {
	return []any{
		s.VendorNumber,
		s.VendorName,
		s.Brand,
		s.Description,
		s.PurchasePrice,
		s.ActualPrice,
		s.Volume,
		s.TotalPurchaseQuantity,
		s.TotalPurchaseDollars,
		s.TotalSalesQuantity,
		s.TotalSalesDollars,
		s.TotalSalesPrice,
		s.TotalExciseTax,
		s.FreightCost,
		s.GrossProfit,
		s.ProfitMargin,
		s.StockTurnover,
		s.SalesToPurchaseRatio,
	}
}
