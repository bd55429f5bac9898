package document

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/storefront/analytics/internal/domain/analytics"
)

// AnalyticsRepository implements analytics.Repository with MongoDB aggregation pipelines
type AnalyticsRepository struct {
	db       *mongo.Database
	timezone string
}

// RepositoryOption configures an AnalyticsRepository
type RepositoryOption func(*AnalyticsRepository)

// WithLocation sets the time zone used for calendar buckets
func WithLocation(loc *time.Location) RepositoryOption {
	return func(r *AnalyticsRepository) {
		if loc != nil {
			r.timezone = loc.String()
		}
	}
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *mongo.Database, opts ...RepositoryOption) *AnalyticsRepository {
	r := &AnalyticsRepository{db: db, timezone: "UTC"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ analytics.Repository = (*AnalyticsRepository)(nil)

type sumRow struct {
	Value money `bson:"value"`
	Count int64 `bson:"count"`
	Avg   money `bson:"avg"`
}

func firstRow(rows []sumRow) sumRow {
	if len(rows) == 0 {
		return sumRow{}
	}
	return rows[0]
}

// monthFacets runs one pipeline with total/thisMonth/lastMonth branches over recognized orders
func (r *AnalyticsRepository) monthFacets(ctx context.Context, bounds analytics.MonthBounds, accumulators ...bson.E) (total, thisMonth, lastMonth sumRow, err error) {
	group := Group(nil, accumulators...)
	pipeline := Pipeline(
		Match(bson.D{RecognizedStatus()}),
		Facet(
			Branch("total", group),
			Branch("thisMonth", Match(bson.D{CreatedIn(bounds.ThisMonthStart, bounds.Now)}), group),
			Branch("lastMonth", Match(bson.D{CreatedIn(bounds.LastMonthStart, bounds.ThisMonthStart)}), group),
		),
	)

	var out []struct {
		Total     []sumRow `bson:"total"`
		ThisMonth []sumRow `bson:"thisMonth"`
		LastMonth []sumRow `bson:"lastMonth"`
	}
	if err = r.aggregate(ctx, OrdersCollection, pipeline, &out); err != nil {
		return
	}
	if len(out) == 0 {
		return
	}
	return firstRow(out[0].Total), firstRow(out[0].ThisMonth), firstRow(out[0].LastMonth), nil
}

// RevenueSummary sums order totals over recognized orders
func (r *AnalyticsRepository) RevenueSummary(ctx context.Context, bounds analytics.MonthBounds) (analytics.RevenueFacet, error) {
	total, thisMonth, lastMonth, err := r.monthFacets(ctx, bounds, Sum("value", Ref("total")))
	if err != nil {
		return analytics.RevenueFacet{}, fmt.Errorf("revenue summary: %w", err)
	}
	return analytics.RevenueFacet{
		Total:     total.Value.Decimal,
		ThisMonth: thisMonth.Value.Decimal,
		LastMonth: lastMonth.Value.Decimal,
	}, nil
}

// OrderSummary counts recognized orders and averages their totals
func (r *AnalyticsRepository) OrderSummary(ctx context.Context, bounds analytics.MonthBounds) (analytics.OrderFacet, error) {
	total, thisMonth, lastMonth, err := r.monthFacets(ctx, bounds, Count("count"), Avg("avg", Ref("total")))
	if err != nil {
		return analytics.OrderFacet{}, fmt.Errorf("order summary: %w", err)
	}
	return analytics.OrderFacet{
		Total:             total.Count,
		ThisMonth:         thisMonth.Count,
		LastMonth:         lastMonth.Count,
		AverageOrderValue: total.Avg.Decimal,
	}, nil
}

// CustomerSummary counts customer accounts and those created this month
func (r *AnalyticsRepository) CustomerSummary(ctx context.Context, bounds analytics.MonthBounds) (analytics.CustomerFacet, error) {
	users := r.db.Collection(UsersCollection)
	role := bson.E{Key: "role", Value: analytics.RoleCustomer}

	total, err := users.CountDocuments(ctx, bson.D{role})
	if err != nil {
		return analytics.CustomerFacet{}, fmt.Errorf("count customers: %w", err)
	}
	fresh, err := users.CountDocuments(ctx, bson.D{role, CreatedIn(bounds.ThisMonthStart, bounds.Now)})
	if err != nil {
		return analytics.CustomerFacet{}, fmt.Errorf("count new customers: %w", err)
	}
	return analytics.CustomerFacet{Total: total, NewThisMonth: fresh}, nil
}

// ActiveCustomerIDs returns the distinct userId values of orders created since
func (r *AnalyticsRepository) ActiveCustomerIDs(ctx context.Context, since time.Time) ([]string, error) {
	values, err := r.db.Collection(OrdersCollection).Distinct(ctx, "userId", bson.D{CreatedSince(since)})
	if err != nil {
		return nil, fmt.Errorf("distinct active customers: %w", err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id := idString(v); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// TopSellingProducts ranks products by units sold across all recognized orders
func (r *AnalyticsRepository) TopSellingProducts(ctx context.Context, limit int) ([]analytics.ProductSales, error) {
	pipeline := Pipeline(
		Match(bson.D{RecognizedStatus()}),
		Unwind("vendorOrders"),
		Unwind("vendorOrders.items"),
		Group(Ref("vendorOrders.items.productId"),
			First("name", Ref("vendorOrders.items.name")),
			Sum("sold", Ref("vendorOrders.items.quantity")),
			Sum("revenue", Ref("vendorOrders.items.total")),
		),
		Sort(Desc("sold"), Asc("_id")),
		Limit(limit),
	)

	var rows []struct {
		ID      docID  `bson:"_id"`
		Name    string `bson:"name"`
		Sold    int64  `bson:"sold"`
		Revenue money  `bson:"revenue"`
	}
	if err := r.aggregate(ctx, OrdersCollection, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("top selling products: %w", err)
	}

	out := make([]analytics.ProductSales, len(rows))
	for i, row := range rows {
		out[i] = analytics.ProductSales{
			ProductID: row.ID.String(),
			Name:      row.Name,
			Sold:      row.Sold,
			Revenue:   row.Revenue.Decimal,
		}
	}
	return out, nil
}

// InventorySummary counts products, low-stock and out-of-stock listings
func (r *AnalyticsRepository) InventorySummary(ctx context.Context) (analytics.InventoryFacet, error) {
	quantity := bson.D{{Key: "$ifNull", Value: bson.A{Ref("inventory.quantity"), 0}}}
	threshold := bson.D{{Key: "$ifNull", Value: bson.A{Ref("inventory.lowStockThreshold"), 0}}}
	pipeline := Pipeline(
		Group(nil,
			Count("total"),
			Sum("lowStock", countIf(bson.D{{Key: "$lte", Value: bson.A{quantity, threshold}}})),
			Sum("outOfStock", countIf(bson.D{{Key: "$lte", Value: bson.A{quantity, 0}}})),
		),
	)

	var rows []struct {
		Total      int64 `bson:"total"`
		LowStock   int64 `bson:"lowStock"`
		OutOfStock int64 `bson:"outOfStock"`
	}
	if err := r.aggregate(ctx, ProductsCollection, pipeline, &rows); err != nil {
		return analytics.InventoryFacet{}, fmt.Errorf("inventory summary: %w", err)
	}
	if len(rows) == 0 {
		return analytics.InventoryFacet{}, nil
	}
	return analytics.InventoryFacet{Total: rows[0].Total, LowStock: rows[0].LowStock, OutOfStock: rows[0].OutOfStock}, nil
}

func countIf(cond bson.D) bson.D {
	return bson.D{{Key: "$cond", Value: bson.A{cond, 1, 0}}}
}

// DailySalesTrend groups recognized orders in window by calendar day
func (r *AnalyticsRepository) DailySalesTrend(ctx context.Context, window analytics.TimeWindow) ([]analytics.DailySales, error) {
	pipeline := Pipeline(
		Match(bson.D{RecognizedStatus(), CreatedIn(window.Start, window.End)}),
		Group(PeriodLabel("createdAt", analytics.GranularityDay, r.timezone),
			Sum("revenue", Ref("total")),
			Count("orders"),
			AddToSet("customers", Ref("userId")),
		),
		Project(
			bson.E{Key: "revenue", Value: 1},
			bson.E{Key: "orders", Value: 1},
			bson.E{Key: "customers", Value: Size(Ref("customers"))},
		),
		Sort(Asc("_id")),
	)

	var rows []struct {
		Date      string `bson:"_id"`
		Revenue   money  `bson:"revenue"`
		Orders    int64  `bson:"orders"`
		Customers int64  `bson:"customers"`
	}
	if err := r.aggregate(ctx, OrdersCollection, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("daily sales trend: %w", err)
	}

	out := make([]analytics.DailySales, len(rows))
	for i, row := range rows {
		out[i] = analytics.DailySales{
			Date:      row.Date,
			Revenue:   row.Revenue.Decimal,
			Orders:    row.Orders,
			Customers: row.Customers,
		}
	}
	return out, nil
}

// TopProductsByRevenue ranks products by line revenue in window, joined to their category
func (r *AnalyticsRepository) TopProductsByRevenue(ctx context.Context, window analytics.TimeWindow, limit int) ([]analytics.ProductRevenue, error) {
	pipeline := Pipeline(
		Match(bson.D{RecognizedStatus(), CreatedIn(window.Start, window.End)}),
		Unwind("vendorOrders"),
		Unwind("vendorOrders.items"),
		Group(Ref("vendorOrders.items.productId"),
			First("name", Ref("vendorOrders.items.name")),
			Sum("quantity", Ref("vendorOrders.items.quantity")),
			Sum("revenue", Ref("vendorOrders.items.total")),
		),
		Sort(Desc("revenue"), Asc("_id")),
		Limit(limit),
		Lookup(ProductsCollection, "_id", "_id", "product"),
		AddFields(bson.E{Key: "category", Value: FirstOf("product.category", "")}),
	)

	var rows []struct {
		ID       docID  `bson:"_id"`
		Name     string `bson:"name"`
		Category string `bson:"category"`
		Quantity int64  `bson:"quantity"`
		Revenue  money  `bson:"revenue"`
	}
	if err := r.aggregate(ctx, OrdersCollection, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("top products by revenue: %w", err)
	}

	out := make([]analytics.ProductRevenue, len(rows))
	for i, row := range rows {
		out[i] = analytics.ProductRevenue{
			ProductID: row.ID.String(),
			Name:      row.Name,
			Category:  row.Category,
			Quantity:  row.Quantity,
			Revenue:   row.Revenue.Decimal,
		}
	}
	return out, nil
}

// TopCustomers ranks users by spend in window
func (r *AnalyticsRepository) TopCustomers(ctx context.Context, window analytics.TimeWindow, limit int) ([]analytics.CustomerSpend, error) {
	pipeline := Pipeline(
		Match(bson.D{RecognizedStatus(), CreatedIn(window.Start, window.End)}),
		Group(Ref("userId"),
			Count("orders"),
			Sum("spent", Ref("total")),
		),
		Sort(Desc("spent"), Asc("_id")),
		Limit(limit),
		Lookup(UsersCollection, "_id", "_id", "user"),
		AddFields(
			bson.E{Key: "firstName", Value: FirstOf("user.firstName", "")},
			bson.E{Key: "lastName", Value: FirstOf("user.lastName", "")},
		),
	)

	var rows []struct {
		ID        docID  `bson:"_id"`
		FirstName string `bson:"firstName"`
		LastName  string `bson:"lastName"`
		Orders    int64  `bson:"orders"`
		Spent     money  `bson:"spent"`
	}
	if err := r.aggregate(ctx, OrdersCollection, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}

	out := make([]analytics.CustomerSpend, len(rows))
	for i, row := range rows {
		out[i] = analytics.CustomerSpend{
			UserID: row.ID.String(),
			Name:   analytics.JoinName(row.FirstName, row.LastName),
			Orders: row.Orders,
			Spent:  row.Spent.Decimal,
		}
	}
	return out, nil
}

// SalesByCategory sums line revenue and units per product category in window.
// Items whose product is missing or uncategorized fall into UncategorizedLabel.
func (r *AnalyticsRepository) SalesByCategory(ctx context.Context, window analytics.TimeWindow) ([]analytics.CategorySales, error) {
	pipeline := Pipeline(
		Match(bson.D{RecognizedStatus(), CreatedIn(window.Start, window.End)}),
		Unwind("vendorOrders"),
		Unwind("vendorOrders.items"),
		Lookup(ProductsCollection, "vendorOrders.items.productId", "_id", "product"),
		AddFields(bson.E{Key: "category", Value: FirstOf("product.category", "")}),
		Group(bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{Ref("category"), ""}}},
			analytics.UncategorizedLabel,
			Ref("category"),
		}}},
			Sum("revenue", Ref("vendorOrders.items.total")),
			Sum("units", Ref("vendorOrders.items.quantity")),
		),
		Sort(Desc("revenue"), Asc("_id")),
	)

	var rows []struct {
		Category string `bson:"_id"`
		Revenue  money  `bson:"revenue"`
		Units    int64  `bson:"units"`
	}
	if err := r.aggregate(ctx, OrdersCollection, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("sales by category: %w", err)
	}

	out := make([]analytics.CategorySales, len(rows))
	for i, row := range rows {
		out[i] = analytics.CategorySales{Category: row.Category, Revenue: row.Revenue.Decimal, Units: row.Units}
	}
	return out, nil
}

// VendorPerformance aggregates vendor sub-orders in window with vendor names and listing counts
func (r *AnalyticsRepository) VendorPerformance(ctx context.Context, window analytics.TimeWindow) ([]analytics.VendorSales, error) {
	pipeline := Pipeline(
		Match(bson.D{RecognizedStatus(), CreatedIn(window.Start, window.End)}),
		Unwind("vendorOrders"),
		Group(Ref("vendorOrders.vendorId"),
			Sum("revenue", Ref("vendorOrders.subtotal")),
			Count("orders"),
			Sum("items", Size(bson.D{{Key: "$ifNull", Value: bson.A{Ref("vendorOrders.items"), bson.A{}}}})),
		),
		Lookup(VendorsCollection, "_id", "_id", "vendor"),
		LookupCount(ProductsCollection, "_id", "vendorId", "listings"),
		AddFields(
			bson.E{Key: "name", Value: FirstOf("vendor.businessName", "")},
			bson.E{Key: "activeProducts", Value: FirstOf("listings.n", 0)},
		),
		Sort(Desc("revenue"), Asc("_id")),
	)

	var rows []struct {
		ID             docID  `bson:"_id"`
		Name           string `bson:"name"`
		Revenue        money  `bson:"revenue"`
		Orders         int64  `bson:"orders"`
		Items          int64  `bson:"items"`
		ActiveProducts int64  `bson:"activeProducts"`
	}
	if err := r.aggregate(ctx, OrdersCollection, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("vendor performance: %w", err)
	}

	out := make([]analytics.VendorSales, len(rows))
	for i, row := range rows {
		out[i] = analytics.VendorSales{
			VendorID:       row.ID.String(),
			Name:           row.Name,
			Revenue:        row.Revenue.Decimal,
			Orders:         row.Orders,
			Items:          row.Items,
			ActiveProducts: row.ActiveProducts,
		}
	}
	return out, nil
}

// FinancialSeries buckets recognized orders in window by its granularity
func (r *AnalyticsRepository) FinancialSeries(ctx context.Context, window analytics.TimeWindow) ([]analytics.FinancialBucket, error) {
	pipeline := Pipeline(
		Match(bson.D{RecognizedStatus(), CreatedIn(window.Start, window.End)}),
		Group(PeriodLabel("createdAt", window.Granularity, r.timezone),
			Sum("revenue", Ref("total")),
			Count("orders"),
			Sum("tax", Ref("tax")),
			Sum("shipping", Ref("shipping")),
			Sum("discount", Ref("discount")),
			Avg("avg", Ref("total")),
		),
		Sort(Asc("_id")),
	)

	var rows []struct {
		Period   string `bson:"_id"`
		Revenue  money  `bson:"revenue"`
		Orders   int64  `bson:"orders"`
		Tax      money  `bson:"tax"`
		Shipping money  `bson:"shipping"`
		Discount money  `bson:"discount"`
		Avg      money  `bson:"avg"`
	}
	if err := r.aggregate(ctx, OrdersCollection, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("financial series: %w", err)
	}

	out := make([]analytics.FinancialBucket, len(rows))
	for i, row := range rows {
		out[i] = analytics.FinancialBucket{
			Period:            row.Period,
			Revenue:           row.Revenue.Decimal,
			Orders:            row.Orders,
			Tax:               row.Tax.Decimal,
			Shipping:          row.Shipping.Decimal,
			Discount:          row.Discount.Decimal,
			AverageOrderValue: row.Avg.Decimal,
		}
	}
	return out, nil
}

// ExportOrders returns orders created inside the filter bounds, oldest first
func (r *AnalyticsRepository) ExportOrders(ctx context.Context, filter analytics.ExportFilter) ([]analytics.Order, error) {
	var docs []orderDoc
	if err := r.find(ctx, OrdersCollection, exportFilter(filter), filter.Limit, &docs); err != nil {
		return nil, fmt.Errorf("export orders: %w", err)
	}
	out := make([]analytics.Order, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// ExportCustomers returns customer accounts created inside the filter bounds
func (r *AnalyticsRepository) ExportCustomers(ctx context.Context, filter analytics.ExportFilter) ([]analytics.User, error) {
	q := append(bson.D{{Key: "role", Value: analytics.RoleCustomer}}, exportFilter(filter)...)
	var docs []userDoc
	if err := r.find(ctx, UsersCollection, q, filter.Limit, &docs); err != nil {
		return nil, fmt.Errorf("export customers: %w", err)
	}
	out := make([]analytics.User, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// ExportProducts returns products created inside the filter bounds
func (r *AnalyticsRepository) ExportProducts(ctx context.Context, filter analytics.ExportFilter) ([]analytics.Product, error) {
	var docs []productDoc
	if err := r.find(ctx, ProductsCollection, exportFilter(filter), filter.Limit, &docs); err != nil {
		return nil, fmt.Errorf("export products: %w", err)
	}
	out := make([]analytics.Product, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Ping checks the connection to the primary
func (r *AnalyticsRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

func exportFilter(f analytics.ExportFilter) bson.D {
	bounds := bson.D{}
	if f.From != nil {
		bounds = append(bounds, bson.E{Key: "$gte", Value: *f.From})
	}
	if f.To != nil {
		bounds = append(bounds, bson.E{Key: "$lt", Value: *f.To})
	}
	if len(bounds) == 0 {
		return bson.D{}
	}
	return bson.D{{Key: "createdAt", Value: bounds}}
}

func (r *AnalyticsRepository) aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline, out any) error {
	cur, err := r.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (r *AnalyticsRepository) find(ctx context.Context, collection string, filter bson.D, limit int, out any) error {
	opts := options.Find().SetSort(bson.D{Asc("createdAt"), Asc("_id")})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// idString renders a distinct() value as a string id
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
