package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// VendorCSVs is a small copy of the four source extracts.
//
// Expected summary, by TotalPurchaseDollars descending:
//
//	vendor 2 brand 70: purchases 600, sales 1000, freight 3
//	vendor 1 brand 58: purchases 150, sales 160, freight 15
//	vendor 1 brand 62: purchases 60, no sales, freight 15
//
// The zero-price purchase of brand 70 is excluded and brand 99 has no
// price row, so neither produces a summary row.
var VendorCSVs = map[string]string{
	"vendor_invoice.csv": "VendorNumber,VendorName,InvoiceDate,Quantity,Dollars,Freight\n" +
		"1,ACME  ,2024-01-03,30,150,10.5\n" +
		"1,ACME  ,2024-01-20,6,60,4.5\n" +
		"2,Beta,2024-01-05,30,600,3.0\n",
	"purchases.csv": "InventoryId,Store,Brand,Description,VendorNumber,VendorName,PurchasePrice,Quantity,Dollars\n" +
		"1_A_58,1,58,Gin ,1,ACME  ,5,10,50\n" +
		"1_A_58,1,58,Gin ,1,ACME  ,5,20,100\n" +
		"1_A_62,1,62,Rum,1,ACME  ,10,6,60\n" +
		"2_B_70,2,70,Vodka,2,Beta,20,30,600\n" +
		"2_B_70,2,70,Vodka,2,Beta,0,5,0\n" +
		"3_C_99,3,99,Orphan,3,Gamma,4,1,4\n",
	"purchase_prices.csv": "Brand,Description,Price,Volume,VendorNumber\n" +
		"58,Gin,8,750,1\n" +
		"62,Rum,15,1000,1\n" +
		"70,Vodka,30,1750,2\n",
	"sales.csv": "InventoryId,Store,Brand,Description,SalesQuantity,SalesDollars,SalesPrice,SalesDate,Volume,ExciseTax,VendorNo\n" +
		"1_A_58,1,58,Gin,12,96,8,2024-01-10,750,1.5,1\n" +
		"1_A_58,1,58,Gin,8,64,8,2024-01-11,750,1.0,1\n" +
		"2_B_70,2,70,Vodka,25,1000,40,2024-01-12,1750,3,2\n",
}

// WriteFiles writes each name/content pair into dir and returns dir.
func WriteFiles(t testing.TB, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

// VendorDataDir writes VendorCSVs into a fresh temp directory.
func VendorDataDir(t testing.TB) string {
	t.Helper()
	return WriteFiles(t, t.TempDir(), VendorCSVs)
}
