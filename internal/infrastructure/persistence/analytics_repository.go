package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/analytics/internal/domain/analytics"
	"github.com/storefront/analytics/internal/infrastructure/persistence/models"
)

// GormAnalyticsRepository implements analytics.Repository on the relational store
type GormAnalyticsRepository struct {
	db       *gorm.DB
	timezone string
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository.
// loc anchors calendar buckets; nil means UTC.
func NewGormAnalyticsRepository(db *gorm.DB, loc *time.Location) *GormAnalyticsRepository {
	tz := "UTC"
	if loc != nil {
		tz = loc.String()
	}
	return &GormAnalyticsRepository{db: db, timezone: tz}
}

var _ analytics.Repository = (*GormAnalyticsRepository)(nil)

func (r *GormAnalyticsRepository) recognizedOrders(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("orders o").
		Where("o.status IN ?", analytics.RecognizedStatusStrings())
}

func inWindow(db *gorm.DB, w analytics.TimeWindow) *gorm.DB {
	return db.Where("o.created_at >= ? AND o.created_at < ?", w.Start, w.End)
}

// lineItems joins order_items to their recognized parent orders inside w
func (r *GormAnalyticsRepository) lineItems(ctx context.Context, w analytics.TimeWindow) *gorm.DB {
	return inWindow(r.db.WithContext(ctx).Table("order_items oi").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status IN ?", analytics.RecognizedStatusStrings()), w)
}

// periodExpr renders the bucket start of o.created_at as YYYY-MM-DD
func (r *GormAnalyticsRepository) periodExpr(g analytics.Granularity) (string, []any) {
	if r.db.Dialector.Name() == "sqlite" {
		switch g {
		case analytics.GranularityWeek:
			return "date(o.created_at, 'weekday 0', '-6 days')", nil
		case analytics.GranularityMonth:
			return "strftime('%Y-%m-01', o.created_at)", nil
		default:
			return "date(o.created_at)", nil
		}
	}
	return fmt.Sprintf("to_char(date_trunc('%s', o.created_at AT TIME ZONE ?), 'YYYY-MM-DD')", g.String()),
		[]any{r.timezone}
}

// RevenueSummary sums order totals over recognized orders
func (r *GormAnalyticsRepository) RevenueSummary(ctx context.Context, b analytics.MonthBounds) (analytics.RevenueFacet, error) {
	var row struct {
		Total     decimal.Decimal
		ThisMonth decimal.Decimal
		LastMonth decimal.Decimal
	}
	err := r.recognizedOrders(ctx).
		Select(`
			COALESCE(SUM(o.total), 0) AS total,
			COALESCE(SUM(CASE WHEN o.created_at >= ? AND o.created_at < ? THEN o.total ELSE 0 END), 0) AS this_month,
			COALESCE(SUM(CASE WHEN o.created_at >= ? AND o.created_at < ? THEN o.total ELSE 0 END), 0) AS last_month
		`, b.ThisMonthStart, b.Now, b.LastMonthStart, b.ThisMonthStart).
		Scan(&row).Error
	if err != nil {
		return analytics.RevenueFacet{}, fmt.Errorf("revenue summary: %w", err)
	}
	return analytics.RevenueFacet{Total: row.Total, ThisMonth: row.ThisMonth, LastMonth: row.LastMonth}, nil
}

// OrderSummary counts recognized orders and averages their totals
func (r *GormAnalyticsRepository) OrderSummary(ctx context.Context, b analytics.MonthBounds) (analytics.OrderFacet, error) {
	var row struct {
		Total     int64
		ThisMonth int64
		LastMonth int64
		Average   decimal.Decimal
	}
	err := r.recognizedOrders(ctx).
		Select(`
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN o.created_at >= ? AND o.created_at < ? THEN 1 ELSE 0 END), 0) AS this_month,
			COALESCE(SUM(CASE WHEN o.created_at >= ? AND o.created_at < ? THEN 1 ELSE 0 END), 0) AS last_month,
			COALESCE(AVG(o.total), 0) AS average
		`, b.ThisMonthStart, b.Now, b.LastMonthStart, b.ThisMonthStart).
		Scan(&row).Error
	if err != nil {
		return analytics.OrderFacet{}, fmt.Errorf("order summary: %w", err)
	}
	return analytics.OrderFacet{
		Total:             row.Total,
		ThisMonth:         row.ThisMonth,
		LastMonth:         row.LastMonth,
		AverageOrderValue: row.Average,
	}, nil
}

// CustomerSummary counts customer accounts and those created this month
func (r *GormAnalyticsRepository) CustomerSummary(ctx context.Context, b analytics.MonthBounds) (analytics.CustomerFacet, error) {
	var facet analytics.CustomerFacet
	customers := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.UserModel{}).Where("role = ?", analytics.RoleCustomer)
	}
	if err := customers().Count(&facet.Total).Error; err != nil {
		return analytics.CustomerFacet{}, fmt.Errorf("count customers: %w", err)
	}
	if err := customers().
		Where("created_at >= ? AND created_at < ?", b.ThisMonthStart, b.Now).
		Count(&facet.NewThisMonth).Error; err != nil {
		return analytics.CustomerFacet{}, fmt.Errorf("count new customers: %w", err)
	}
	return facet, nil
}

// ActiveCustomerIDs returns the distinct user ids of orders created since
func (r *GormAnalyticsRepository) ActiveCustomerIDs(ctx context.Context, since time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("created_at >= ?", since).
		Distinct().
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("distinct active customers: %w", err)
	}
	return ids, nil
}

// TopSellingProducts ranks products by units sold across all recognized orders
func (r *GormAnalyticsRepository) TopSellingProducts(ctx context.Context, limit int) ([]analytics.ProductSales, error) {
	var rows []struct {
		ProductID string
		Name      string
		Sold      int64
		Revenue   decimal.Decimal
	}
	err := r.db.WithContext(ctx).Table("order_items oi").
		Select(`
			oi.product_id,
			MAX(oi.name) AS name,
			COALESCE(SUM(oi.quantity), 0) AS sold,
			COALESCE(SUM(oi.total), 0) AS revenue
		`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status IN ?", analytics.RecognizedStatusStrings()).
		Group("oi.product_id").
		Order("sold DESC, oi.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top selling products: %w", err)
	}

	out := make([]analytics.ProductSales, len(rows))
	for i, row := range rows {
		out[i] = analytics.ProductSales{ProductID: row.ProductID, Name: row.Name, Sold: row.Sold, Revenue: row.Revenue}
	}
	return out, nil
}

// InventorySummary counts products, low-stock and out-of-stock listings
func (r *GormAnalyticsRepository) InventorySummary(ctx context.Context) (analytics.InventoryFacet, error) {
	var facet analytics.InventoryFacet
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Select(`
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN quantity <= low_stock_threshold THEN 1 ELSE 0 END), 0) AS low_stock,
			COALESCE(SUM(CASE WHEN quantity <= 0 THEN 1 ELSE 0 END), 0) AS out_of_stock
		`).
		Scan(&facet).Error
	if err != nil {
		return analytics.InventoryFacet{}, fmt.Errorf("inventory summary: %w", err)
	}
	return facet, nil
}

// DailySalesTrend groups recognized orders in window by calendar day
func (r *GormAnalyticsRepository) DailySalesTrend(ctx context.Context, w analytics.TimeWindow) ([]analytics.DailySales, error) {
	period, args := r.periodExpr(analytics.GranularityDay)
	var rows []struct {
		Period    string
		Revenue   decimal.Decimal
		Orders    int64
		Customers int64
	}
	err := inWindow(r.recognizedOrders(ctx), w).
		Select(period+` AS period,
			COALESCE(SUM(o.total), 0) AS revenue,
			COUNT(*) AS orders,
			COUNT(DISTINCT o.user_id) AS customers
		`, args...).
		Group("period").
		Order("period ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("daily sales trend: %w", err)
	}

	out := make([]analytics.DailySales, len(rows))
	for i, row := range rows {
		out[i] = analytics.DailySales{Date: row.Period, Revenue: row.Revenue, Orders: row.Orders, Customers: row.Customers}
	}
	return out, nil
}

// TopProductsByRevenue ranks products by line revenue in window, joined to their category
func (r *GormAnalyticsRepository) TopProductsByRevenue(ctx context.Context, w analytics.TimeWindow, limit int) ([]analytics.ProductRevenue, error) {
	var rows []struct {
		ProductID string
		Name      string
		Category  string
		Quantity  int64
		Revenue   decimal.Decimal
	}
	err := r.lineItems(ctx, w).
		Select(`
			oi.product_id,
			MAX(oi.name) AS name,
			COALESCE(MAX(p.category), '') AS category,
			COALESCE(SUM(oi.quantity), 0) AS quantity,
			COALESCE(SUM(oi.total), 0) AS revenue
		`).
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Group("oi.product_id").
		Order("revenue DESC, oi.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top products by revenue: %w", err)
	}

	out := make([]analytics.ProductRevenue, len(rows))
	for i, row := range rows {
		out[i] = analytics.ProductRevenue{
			ProductID: row.ProductID,
			Name:      row.Name,
			Category:  row.Category,
			Quantity:  row.Quantity,
			Revenue:   row.Revenue,
		}
	}
	return out, nil
}

// TopCustomers ranks users by spend in window
func (r *GormAnalyticsRepository) TopCustomers(ctx context.Context, w analytics.TimeWindow, limit int) ([]analytics.CustomerSpend, error) {
	var rows []struct {
		UserID    string
		FirstName string
		LastName  string
		Orders    int64
		Spent     decimal.Decimal
	}
	err := inWindow(r.recognizedOrders(ctx), w).
		Select(`
			o.user_id,
			COALESCE(MAX(u.first_name), '') AS first_name,
			COALESCE(MAX(u.last_name), '') AS last_name,
			COUNT(*) AS orders,
			COALESCE(SUM(o.total), 0) AS spent
		`).
		Joins("LEFT JOIN users u ON u.id = o.user_id").
		Group("o.user_id").
		Order("spent DESC, o.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}

	out := make([]analytics.CustomerSpend, len(rows))
	for i, row := range rows {
		out[i] = analytics.CustomerSpend{
			UserID: row.UserID,
			Name:   analytics.JoinName(row.FirstName, row.LastName),
			Orders: row.Orders,
			Spent:  row.Spent,
		}
	}
	return out, nil
}

// SalesByCategory sums line revenue and units per product category in window.
// Items whose product is missing or uncategorized fall into UncategorizedLabel.
func (r *GormAnalyticsRepository) SalesByCategory(ctx context.Context, w analytics.TimeWindow) ([]analytics.CategorySales, error) {
	var rows []struct {
		CategoryLabel string
		Revenue       decimal.Decimal
		Units         int64
	}
	err := r.lineItems(ctx, w).
		Select(`
			CASE WHEN p.category IS NULL OR p.category = '' THEN ? ELSE p.category END AS category_label,
			COALESCE(SUM(oi.total), 0) AS revenue,
			COALESCE(SUM(oi.quantity), 0) AS units
		`, analytics.UncategorizedLabel).
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Group("category_label").
		Order("revenue DESC, category_label ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sales by category: %w", err)
	}

	out := make([]analytics.CategorySales, len(rows))
	for i, row := range rows {
		out[i] = analytics.CategorySales{Category: row.CategoryLabel, Revenue: row.Revenue, Units: row.Units}
	}
	return out, nil
}

// VendorPerformance aggregates vendor sub-orders in window with vendor names and listing counts
func (r *GormAnalyticsRepository) VendorPerformance(ctx context.Context, w analytics.TimeWindow) ([]analytics.VendorSales, error) {
	var rows []struct {
		VendorID       string
		Name           string
		Revenue        decimal.Decimal
		Orders         int64
		Items          int64
		ActiveProducts int64
	}
	err := inWindow(r.db.WithContext(ctx).Table("vendor_orders vo").
		Joins("JOIN orders o ON o.id = vo.order_id").
		Where("o.status IN ?", analytics.RecognizedStatusStrings()), w).
		Select(`
			vo.vendor_id,
			COALESCE(MAX(v.business_name), '') AS name,
			COALESCE(SUM(vo.subtotal), 0) AS revenue,
			COUNT(*) AS orders,
			COALESCE(SUM(ic.n), 0) AS items,
			COALESCE(MAX(pc.n), 0) AS active_products
		`).
		Joins("LEFT JOIN vendors v ON v.id = vo.vendor_id").
		Joins("LEFT JOIN (SELECT vendor_order_id, COUNT(*) AS n FROM order_items GROUP BY vendor_order_id) ic ON ic.vendor_order_id = vo.id").
		Joins("LEFT JOIN (SELECT vendor_id, COUNT(*) AS n FROM products GROUP BY vendor_id) pc ON pc.vendor_id = vo.vendor_id").
		Group("vo.vendor_id").
		Order("revenue DESC, vo.vendor_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vendor performance: %w", err)
	}

	out := make([]analytics.VendorSales, len(rows))
	for i, row := range rows {
		out[i] = analytics.VendorSales{
			VendorID:       row.VendorID,
			Name:           row.Name,
			Revenue:        row.Revenue,
			Orders:         row.Orders,
			Items:          row.Items,
			ActiveProducts: row.ActiveProducts,
		}
	}
	return out, nil
}

// FinancialSeries buckets recognized orders in window by its granularity
func (r *GormAnalyticsRepository) FinancialSeries(ctx context.Context, w analytics.TimeWindow) ([]analytics.FinancialBucket, error) {
	period, args := r.periodExpr(w.Granularity)
	var rows []struct {
		Period   string
		Revenue  decimal.Decimal
		Orders   int64
		Tax      decimal.Decimal
		Shipping decimal.Decimal
		Discount decimal.Decimal
		Average  decimal.Decimal
	}
	err := inWindow(r.recognizedOrders(ctx), w).
		Select(period+` AS period,
			COALESCE(SUM(o.total), 0) AS revenue,
			COUNT(*) AS orders,
			COALESCE(SUM(o.tax), 0) AS tax,
			COALESCE(SUM(o.shipping), 0) AS shipping,
			COALESCE(SUM(o.discount), 0) AS discount,
			COALESCE(AVG(o.total), 0) AS average
		`, args...).
		Group("period").
		Order("period ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("financial series: %w", err)
	}

	out := make([]analytics.FinancialBucket, len(rows))
	for i, row := range rows {
		out[i] = analytics.FinancialBucket{
			Period:            row.Period,
			Revenue:           row.Revenue,
			Orders:            row.Orders,
			Tax:               row.Tax,
			Shipping:          row.Shipping,
			Discount:          row.Discount,
			AverageOrderValue: row.Average,
		}
	}
	return out, nil
}

func exportScope(f analytics.ExportFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.From != nil {
			db = db.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("created_at < ?", *f.To)
		}
		if f.Limit > 0 {
			db = db.Limit(f.Limit)
		}
		return db.Order("created_at ASC, id ASC")
	}
}

// ExportOrders returns orders created inside the filter bounds with their vendor orders and items
func (r *GormAnalyticsRepository) ExportOrders(ctx context.Context, filter analytics.ExportFilter) ([]analytics.Order, error) {
	var rows []models.OrderModel
	err := r.db.WithContext(ctx).
		Scopes(exportScope(filter)).
		Preload("VendorOrders.Items").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("export orders: %w", err)
	}
	out := make([]analytics.Order, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ExportCustomers returns customer accounts created inside the filter bounds
func (r *GormAnalyticsRepository) ExportCustomers(ctx context.Context, filter analytics.ExportFilter) ([]analytics.User, error) {
	var rows []models.UserModel
	err := r.db.WithContext(ctx).
		Where("role = ?", analytics.RoleCustomer).
		Scopes(exportScope(filter)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("export customers: %w", err)
	}
	out := make([]analytics.User, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ExportProducts returns products created inside the filter bounds
func (r *GormAnalyticsRepository) ExportProducts(ctx context.Context, filter analytics.ExportFilter) ([]analytics.Product, error) {
	var rows []models.ProductModel
	err := r.db.WithContext(ctx).
		Scopes(exportScope(filter)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("export products: %w", err)
	}
	out := make([]analytics.Product, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Ping checks the database connection
func (r *GormAnalyticsRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
