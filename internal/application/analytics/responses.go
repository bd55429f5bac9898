package analytics

import "time"

// Period is the concrete window a report covers
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ===================== Dashboard =====================

// DashboardMetrics is the headline summary across revenue, orders, customers and products
type DashboardMetrics struct {
	Revenue     RevenueMetrics  `json:"revenue"`
	Orders      OrderMetrics    `json:"orders"`
	Customers   CustomerMetrics `json:"customers"`
	Products    ProductMetrics  `json:"products"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// RevenueMetrics is recognized revenue with month-over-month growth
type RevenueMetrics struct {
	Total     float64 `json:"total"`
	ThisMonth float64 `json:"thisMonth"`
	LastMonth float64 `json:"lastMonth"`
	Growth    float64 `json:"growth"`
}

// OrderMetrics mirrors RevenueMetrics for order counts
type OrderMetrics struct {
	Total             int64   `json:"total"`
	ThisMonth         int64   `json:"thisMonth"`
	LastMonth         int64   `json:"lastMonth"`
	Growth            float64 `json:"growth"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// CustomerMetrics counts customers and the share that ordered recently
type CustomerMetrics struct {
	Total         int64   `json:"total"`
	NewThisMonth  int64   `json:"newThisMonth"`
	Active        int64   `json:"active"`
	RetentionRate float64 `json:"retentionRate"`
}

// ProductMetrics summarizes the catalog and best sellers
type ProductMetrics struct {
	Total      int64               `json:"total"`
	LowStock   int64               `json:"lowStock"`
	OutOfStock int64               `json:"outOfStock"`
	TopSelling []TopSellingProduct `json:"topSelling"`
}

// TopSellingProduct is a best seller ranked by units sold
type TopSellingProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Sold      int64   `json:"sold"`
	Revenue   float64 `json:"revenue"`
}

// ===================== Sales =====================

// SalesAnalytics is the sales breakdown for a range
type SalesAnalytics struct {
	Range           string              `json:"range"`
	Period          Period              `json:"period"`
	DailySales      []DailySalesPoint   `json:"dailySales"`
	TopProducts     []TopProduct        `json:"topProducts"`
	TopCustomers    []TopCustomer       `json:"topCustomers"`
	SalesByCategory []CategoryBreakdown `json:"salesByCategory"`
}

// DailySalesPoint is one day of the trend
type DailySalesPoint struct {
	Date      string  `json:"date"`
	Revenue   float64 `json:"revenue"`
	Orders    int64   `json:"orders"`
	Customers int64   `json:"customers"`
}

// TopProduct is a product ranked by revenue
type TopProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  int64   `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// TopCustomer is a customer ranked by spend
type TopCustomer struct {
	UserID            string  `json:"userId"`
	Name              string  `json:"name"`
	Orders            int64   `json:"orders"`
	TotalSpent        float64 `json:"totalSpent"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// CategoryBreakdown is revenue per category. Growth is not computed yet and is
// always null with GrowthAvailable=false.
type CategoryBreakdown struct {
	Category        string   `json:"category"`
	Revenue         float64  `json:"revenue"`
	Units           int64    `json:"units"`
	Growth          *float64 `json:"growth"`
	GrowthAvailable bool     `json:"growthAvailable"`
}

// ===================== Financial =====================

// FinancialReport is a time-bucketed revenue or profit report
type FinancialReport struct {
	Type        string           `json:"type"`
	Range       string           `json:"range"`
	Granularity string           `json:"granularity"`
	Period      Period           `json:"period"`
	Data        []FinancialPoint `json:"data"`
	Summary     FinancialSummary `json:"summary"`
	// IsEstimate marks the cost/profit figures as ratio-based estimates
	IsEstimate bool `json:"isEstimate"`
}

// FinancialPoint is one period of a financial report
type FinancialPoint struct {
	Period            string   `json:"period"`
	Revenue           float64  `json:"revenue"`
	Orders            int64    `json:"orders"`
	Tax               float64  `json:"tax"`
	Shipping          float64  `json:"shipping"`
	Discount          float64  `json:"discount"`
	AverageOrderValue float64  `json:"averageOrderValue"`
	EstimatedCosts    *float64 `json:"estimatedCosts,omitempty"`
	EstimatedProfit   *float64 `json:"estimatedProfit,omitempty"`
}

// FinancialSummary totals a financial report
type FinancialSummary struct {
	Revenue           float64  `json:"revenue"`
	Orders            int64    `json:"orders"`
	Tax               float64  `json:"tax"`
	Shipping          float64  `json:"shipping"`
	Discount          float64  `json:"discount"`
	AverageOrderValue float64  `json:"averageOrderValue"`
	EstimatedCosts    *float64 `json:"estimatedCosts,omitempty"`
	EstimatedProfit   *float64 `json:"estimatedProfit,omitempty"`
}

// ===================== Vendors =====================

// VendorPerformanceReport ranks vendors by performance score
type VendorPerformanceReport struct {
	Range   string                   `json:"range"`
	Period  Period                   `json:"period"`
	Vendors []VendorPerformanceEntry `json:"vendors"`
}

// VendorPerformanceEntry is one ranked vendor
type VendorPerformanceEntry struct {
	Rank              int     `json:"rank"`
	VendorID          string  `json:"vendorId"`
	BusinessName      string  `json:"businessName"`
	Revenue           float64 `json:"revenue"`
	Orders            int64   `json:"orders"`
	Items             int64   `json:"items"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	ActiveProducts    int64   `json:"activeProducts"`
	Score             float64 `json:"score"`
}

// ===================== Export =====================

// ExportRequest asks for a bulk record dump
type ExportRequest struct {
	Type   string
	Format string
	From   *time.Time
	To     *time.Time
}

// ExportResult carries the exported records
type ExportResult struct {
	ExportID    string    `json:"exportId"`
	Type        string    `json:"type"`
	Format      string    `json:"format"`
	GeneratedAt time.Time `json:"generatedAt"`
	Count       int       `json:"count"`
	Records     any       `json:"records"`
}

// OrderRecord is an exported order
type OrderRecord struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Status string `json:"status"`
	// Recognized marks orders that count toward revenue metrics
	Recognized bool      `json:"recognized"`
	Total      float64   `json:"total"`
	Tax        float64   `json:"tax"`
	Shipping   float64   `json:"shipping"`
	Discount   float64   `json:"discount"`
	Vendors    int       `json:"vendors"`
	Items      int64     `json:"items"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CustomerRecord is an exported customer
type CustomerRecord struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductRecord is an exported product
type ProductRecord struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	VendorID          string    `json:"vendorId"`
	Quantity          int64     `json:"quantity"`
	LowStockThreshold int64     `json:"lowStockThreshold"`
	LowStock          bool      `json:"lowStock"`
	OutOfStock        bool      `json:"outOfStock"`
	CreatedAt         time.Time `json:"createdAt"`
}
