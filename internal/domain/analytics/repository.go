package analytics

import (
	"context"
	"time"
)

// Repository is the aggregation engine port. Each method is one facet and is
// independent of the others, so callers may run them concurrently.
type Repository interface {
	RevenueSummary(ctx context.Context, bounds MonthBounds) (RevenueFacet, error)
	OrderSummary(ctx context.Context, bounds MonthBounds) (OrderFacet, error)
	CustomerSummary(ctx context.Context, bounds MonthBounds) (CustomerFacet, error)
	// ActiveCustomerIDs returns the distinct users with an order created at or after since
	ActiveCustomerIDs(ctx context.Context, since time.Time) ([]string, error)
	TopSellingProducts(ctx context.Context, limit int) ([]ProductSales, error)
	InventorySummary(ctx context.Context) (InventoryFacet, error)

	DailySalesTrend(ctx context.Context, window TimeWindow) ([]DailySales, error)
	TopProductsByRevenue(ctx context.Context, window TimeWindow, limit int) ([]ProductRevenue, error)
	TopCustomers(ctx context.Context, window TimeWindow, limit int) ([]CustomerSpend, error)
	SalesByCategory(ctx context.Context, window TimeWindow) ([]CategorySales, error)

	VendorPerformance(ctx context.Context, window TimeWindow) ([]VendorSales, error)
	// FinancialSeries buckets recognized orders by window.Granularity
	FinancialSeries(ctx context.Context, window TimeWindow) ([]FinancialBucket, error)

	ExportOrders(ctx context.Context, filter ExportFilter) ([]Order, error)
	ExportCustomers(ctx context.Context, filter ExportFilter) ([]User, error)
	ExportProducts(ctx context.Context, filter ExportFilter) ([]Product, error)

	Ping(ctx context.Context) error
}
