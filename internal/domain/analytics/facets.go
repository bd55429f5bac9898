package analytics

import "github.com/shopspring/decimal"

// Facet read models produced by the aggregation engines.
// Empty result sets are represented by zero values, never nil pointers.

// RevenueFacet sums order totals over recognized orders
type RevenueFacet struct {
	Total     decimal.Decimal
	ThisMonth decimal.Decimal
	LastMonth decimal.Decimal
}

// OrderFacet counts recognized orders over the same slices as RevenueFacet
type OrderFacet struct {
	Total             int64
	ThisMonth         int64
	LastMonth         int64
	AverageOrderValue decimal.Decimal
}

// CustomerFacet counts customer accounts
type CustomerFacet struct {
	Total        int64
	NewThisMonth int64
}

// InventoryFacet summarizes stock levels across the catalog
type InventoryFacet struct {
	Total      int64
	LowStock   int64
	OutOfStock int64
}

// ProductSales is one row of the top-selling ranking
type ProductSales struct {
	ProductID string
	Name      string
	Sold      int64
	Revenue   decimal.Decimal
}

// DailySales is one calendar day of the sales trend
type DailySales struct {
	Date      string
	Revenue   decimal.Decimal
	Orders    int64
	Customers int64
}

// ProductRevenue is one row of the top-products-by-revenue ranking
type ProductRevenue struct {
	ProductID string
	Name      string
	Category  string
	Quantity  int64
	Revenue   decimal.Decimal
}

// CustomerSpend is one row of the top-customers ranking
type CustomerSpend struct {
	UserID string
	Name   string
	Orders int64
	Spent  decimal.Decimal
}

// CategorySales is revenue and units for a single category
type CategorySales struct {
	Category string
	Revenue  decimal.Decimal
	Units    int64
}

// VendorSales is the raw per-vendor aggregate behind the performance ranking
type VendorSales struct {
	VendorID       string
	Name           string
	Revenue        decimal.Decimal
	Orders         int64
	Items          int64
	ActiveProducts int64
}

// FinancialBucket is one period of a financial report
type FinancialBucket struct {
	Period            string
	Revenue           decimal.Decimal
	Orders            int64
	Tax               decimal.Decimal
	Shipping          decimal.Decimal
	Discount          decimal.Decimal
	AverageOrderValue decimal.Decimal
}
