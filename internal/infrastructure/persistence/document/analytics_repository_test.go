package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/storefront/analytics/internal/domain/analytics"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func cursor(mt *mtest.T, coll string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, mt.DB.Name()+"."+coll, mtest.FirstBatch, docs...)
}

// sentPipeline returns the pipeline of the most recent aggregate command
func sentPipeline(mt *mtest.T) bson.A {
	ev := mt.GetStartedEvent()
	require.NotNil(mt, ev)
	require.Equal(mt, "aggregate", ev.CommandName)
	var cmd struct {
		Pipeline bson.A `bson:"pipeline"`
	}
	require.NoError(mt, bson.Unmarshal(ev.Command, &cmd))
	return cmd.Pipeline
}

func TestAnalyticsRepository_RevenueSummary(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	bounds := analytics.NewMonthBounds(testNow)

	mt.Run("decodes facets", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, OrdersCollection, bson.D{
			{Key: "total", Value: bson.A{bson.D{{Key: "_id", Value: nil}, {Key: "value", Value: 250.0}}}},
			{Key: "thisMonth", Value: bson.A{bson.D{{Key: "_id", Value: nil}, {Key: "value", Value: 150.0}}}},
			{Key: "lastMonth", Value: bson.A{bson.D{{Key: "_id", Value: nil}, {Key: "value", Value: int32(100)}}}},
		}))

		repo := NewAnalyticsRepository(mt.DB)
		got, err := repo.RevenueSummary(context.Background(), bounds)
		require.NoError(mt, err)
		assert.Equal(mt, "250", got.Total.String())
		assert.Equal(mt, "150", got.ThisMonth.String())
		assert.Equal(mt, "100", got.LastMonth.String())

		pipeline := sentPipeline(mt)
		require.Len(mt, pipeline, 2)
		match := pipeline[0].(bson.D)
		assert.Equal(mt, "$match", match[0].Key)
	})

	mt.Run("empty facets default to zero", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, OrdersCollection, bson.D{
			{Key: "total", Value: bson.A{}},
			{Key: "thisMonth", Value: bson.A{}},
			{Key: "lastMonth", Value: bson.A{}},
		}))

		got, err := NewAnalyticsRepository(mt.DB).RevenueSummary(context.Background(), bounds)
		require.NoError(mt, err)
		assert.True(mt, got.Total.IsZero())
		assert.True(mt, got.ThisMonth.IsZero())
		assert.True(mt, got.LastMonth.IsZero())
	})

	mt.Run("propagates command errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "bad pipeline",
		}))

		_, err := NewAnalyticsRepository(mt.DB).RevenueSummary(context.Background(), bounds)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "revenue summary")
	})
}

func TestAnalyticsRepository_OrderSummary(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counts and average", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, OrdersCollection, bson.D{
			{Key: "total", Value: bson.A{bson.D{{Key: "count", Value: int32(4)}, {Key: "avg", Value: 62.5}}}},
			{Key: "thisMonth", Value: bson.A{bson.D{{Key: "count", Value: int32(2)}, {Key: "avg", Value: 75.0}}}},
			{Key: "lastMonth", Value: bson.A{}},
		}))

		got, err := NewAnalyticsRepository(mt.DB).OrderSummary(context.Background(), analytics.NewMonthBounds(testNow))
		require.NoError(mt, err)
		assert.Equal(mt, int64(4), got.Total)
		assert.Equal(mt, int64(2), got.ThisMonth)
		assert.Zero(mt, got.LastMonth)
		assert.Equal(mt, "62.5", got.AverageOrderValue.String())
	})
}

func TestAnalyticsRepository_CustomerSummary(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counts customers", func(mt *mtest.T) {
		mt.AddMockResponses(
			cursor(mt, UsersCollection, bson.D{{Key: "n", Value: int32(12)}}),
			cursor(mt, UsersCollection, bson.D{{Key: "n", Value: int32(3)}}),
		)

		got, err := NewAnalyticsRepository(mt.DB).CustomerSummary(context.Background(), analytics.NewMonthBounds(testNow))
		require.NoError(mt, err)
		assert.Equal(mt, analytics.CustomerFacet{Total: 12, NewThisMonth: 3}, got)
	})
}

func TestAnalyticsRepository_ActiveCustomerIDs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("distinct user ids", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{oid, "u-2", nil}}))

		ids, err := NewAnalyticsRepository(mt.DB).ActiveCustomerIDs(context.Background(), testNow.AddDate(0, 0, -30))
		require.NoError(mt, err)
		assert.Equal(mt, []string{oid.Hex(), "u-2"}, ids)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.Equal(mt, "distinct", ev.CommandName)
	})
}

func TestAnalyticsRepository_TopSellingProducts(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("maps rows and caps", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, OrdersCollection,
			bson.D{{Key: "_id", Value: "p1"}, {Key: "name", Value: "Mug"}, {Key: "sold", Value: int32(9)}, {Key: "revenue", Value: 90.0}},
			bson.D{{Key: "_id", Value: "p2"}, {Key: "name", Value: "Cup"}, {Key: "sold", Value: int32(3)}, {Key: "revenue", Value: 15.0}},
		))

		got, err := NewAnalyticsRepository(mt.DB).TopSellingProducts(context.Background(), 10)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "p1", got[0].ProductID)
		assert.Equal(mt, int64(9), got[0].Sold)
		assert.Equal(mt, "90", got[0].Revenue.String())

		pipeline := sentPipeline(mt)
		last := pipeline[len(pipeline)-1].(bson.D)
		assert.Equal(mt, "$limit", last[0].Key)
	})
}

func TestAnalyticsRepository_InventorySummary(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counts", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, ProductsCollection, bson.D{
			{Key: "total", Value: int32(10)}, {Key: "lowStock", Value: int32(4)}, {Key: "outOfStock", Value: int32(1)},
		}))
		got, err := NewAnalyticsRepository(mt.DB).InventorySummary(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, analytics.InventoryFacet{Total: 10, LowStock: 4, OutOfStock: 1}, got)
	})

	mt.Run("empty catalog", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, ProductsCollection))
		got, err := NewAnalyticsRepository(mt.DB).InventorySummary(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, analytics.InventoryFacet{}, got)
	})
}

func TestAnalyticsRepository_SalesFacets(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	window, _ := analytics.SalesRanges.Resolve("7d", testNow)

	mt.Run("daily trend", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, OrdersCollection,
			bson.D{{Key: "_id", Value: "2026-10-15"}, {Key: "revenue", Value: 40.0}, {Key: "orders", Value: int32(2)}, {Key: "customers", Value: int32(1)}},
		))
		got, err := NewAnalyticsRepository(mt.DB, WithLocation(time.UTC)).DailySalesTrend(context.Background(), window)
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "2026-10-15", got[0].Date)
		assert.Equal(mt, int64(1), got[0].Customers)
	})

	mt.Run("top products", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, OrdersCollection,
			bson.D{{Key: "_id", Value: "p1"}, {Key: "name", Value: "Mug"}, {Key: "category", Value: "Kitchen"}, {Key: "quantity", Value: int32(2)}, {Key: "revenue", Value: 20.0}},
		))
		got, err := NewAnalyticsRepository(mt.DB).TopProductsByRevenue(context.Background(), window, 20)
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "Kitchen", got[0].Category)
	})

	mt.Run("top customers", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, OrdersCollection,
			bson.D{{Key: "_id", Value: "u1"}, {Key: "firstName", Value: "Ada"}, {Key: "lastName", Value: ""}, {Key: "orders", Value: int32(3)}, {Key: "spent", Value: 300.0}},
		))
		got, err := NewAnalyticsRepository(mt.DB).TopCustomers(context.Background(), window, 20)
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "Ada", got[0].Name)
		assert.Equal(mt, int64(3), got[0].Orders)
	})

	mt.Run("categories", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, OrdersCollection,
			bson.D{{Key: "_id", Value: "General"}, {Key: "revenue", Value: 12.0}, {Key: "units", Value: int32(4)}},
		))
		got, err := NewAnalyticsRepository(mt.DB).SalesByCategory(context.Background(), window)
		require.NoError(mt, err)
		assert.Equal(mt, []analytics.CategorySales{{Category: "General", Revenue: got[0].Revenue, Units: 4}}, got)
		assert.Equal(mt, "12", got[0].Revenue.String())
	})
}

func TestAnalyticsRepository_VendorPerformance(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	window, _ := analytics.VendorRanges.Resolve("1m", testNow)

	mt.Run("maps vendor rows", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, OrdersCollection, bson.D{
			{Key: "_id", Value: "v1"}, {Key: "name", Value: "Acme"}, {Key: "revenue", Value: 10000.0},
			{Key: "orders", Value: int32(100)}, {Key: "items", Value: int32(250)}, {Key: "activeProducts", Value: int32(50)},
		}))
		got, err := NewAnalyticsRepository(mt.DB).VendorPerformance(context.Background(), window)
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "Acme", got[0].Name)
		assert.Equal(mt, int64(50), got[0].ActiveProducts)
		assert.Equal(mt, int64(250), got[0].Items)
	})
}

func TestAnalyticsRepository_FinancialSeries(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	window, _ := analytics.FinancialRanges.Resolve("3m", testNow)

	mt.Run("weekly buckets", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, OrdersCollection,
			bson.D{{Key: "_id", Value: "2026-10-12"}, {Key: "revenue", Value: 100.0}, {Key: "orders", Value: int32(2)},
				{Key: "tax", Value: 8.0}, {Key: "shipping", Value: 5.0}, {Key: "discount", Value: 0.0}, {Key: "avg", Value: 50.0}},
		))
		got, err := NewAnalyticsRepository(mt.DB).FinancialSeries(context.Background(), window)
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "2026-10-12", got[0].Period)
		assert.Equal(mt, "50", got[0].AverageOrderValue.String())
	})
}

func TestAnalyticsRepository_Exports(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	created := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	mt.Run("orders", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(cursor(mt, OrdersCollection, bson.D{
			{Key: "_id", Value: oid}, {Key: "userId", Value: "u1"}, {Key: "status", Value: "delivered"},
			{Key: "total", Value: 42.0}, {Key: "createdAt", Value: created},
			{Key: "vendorOrders", Value: bson.A{bson.D{
				{Key: "vendorId", Value: "v1"}, {Key: "subtotal", Value: 42.0},
				{Key: "items", Value: bson.A{bson.D{{Key: "productId", Value: "p1"}, {Key: "quantity", Value: int32(2)}, {Key: "total", Value: 42.0}}}},
			}}},
		}))

		got, err := NewAnalyticsRepository(mt.DB).ExportOrders(context.Background(), analytics.ExportFilter{Limit: 100})
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, oid.Hex(), got[0].ID)
		assert.Equal(mt, analytics.OrderStatusDelivered, got[0].Status)
		assert.True(mt, got[0].Tax.IsZero())
		require.Len(mt, got[0].VendorOrders, 1)
		assert.Equal(mt, int64(2), got[0].VendorOrders[0].Items[0].Quantity)
	})

	mt.Run("customers", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, UsersCollection, bson.D{
			{Key: "_id", Value: "u1"}, {Key: "role", Value: "customer"}, {Key: "firstName", Value: "Ada"},
			{Key: "email", Value: "ada@example.com"}, {Key: "createdAt", Value: created},
		}))
		got, err := NewAnalyticsRepository(mt.DB).ExportCustomers(context.Background(), analytics.ExportFilter{})
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "ada@example.com", got[0].Email)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		filter := ev.Command.Lookup("filter").Document()
		assert.Equal(mt, "customer", filter.Lookup("role").StringValue())
	})

	mt.Run("products", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(mt, ProductsCollection, bson.D{
			{Key: "_id", Value: "p1"}, {Key: "name", Value: "Mug"}, {Key: "vendorId", Value: "v1"},
			{Key: "inventory", Value: bson.D{{Key: "quantity", Value: int32(3)}, {Key: "lowStockThreshold", Value: int32(5)}}},
		}))
		got, err := NewAnalyticsRepository(mt.DB).ExportProducts(context.Background(), analytics.ExportFilter{})
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.True(mt, got[0].Inventory.IsLowStock())
	})
}

func TestAnalyticsRepository_Ping(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ok", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, NewAnalyticsRepository(mt.DB).Ping(context.Background()))
	})
}
