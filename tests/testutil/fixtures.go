package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefront/analytics/internal/infrastructure/persistence/models"
)

// FixtureNow is the reference clock of the storefront fixture, a Friday.
var FixtureNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2026, month, day, hour, 0, 0, 0, time.UTC)
}

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// SeedStorefront inserts a small storefront relative to FixtureNow:
//
//	o1 delivered 100 on Mon 2026-10-05 (u1, vendor v1: p1 x2 = 60, p2 x1 = 40), tax 8, shipping 5
//	o2 shipped    50 on Mon 2026-10-12 (u2, vendor v2: p3 x5 = 50, p3 has no product row)
//	o3 confirmed 100 on Sun 2026-09-20 (u1, vendor v1: p1 x1 = 100)
//	o4 cancelled 999 on 2026-10-10 (u3, vendor v1: p2 x10)
//	o5 pending    20 on 2026-10-14 (u3, vendor v2: p2 x1)
//
// Products p1 (Kitchen, v1, out of stock), p2 (no category, v1) and p4
// (Furniture, v2, at threshold). Customers u1, u2 (new this month), u3 (new
// this month) and one admin.
func SeedStorefront(t *testing.T, db *gorm.DB) {
	t.Helper()

	users := []models.UserModel{
		{ID: "u1", Role: "customer", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", CreatedAt: at(time.January, 1, 9)},
		{ID: "u2", Role: "customer", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", CreatedAt: at(time.October, 3, 9)},
		{ID: "u3", Role: "customer", FirstName: "Alan", Email: "alan@example.com", CreatedAt: at(time.October, 15, 9)},
		{ID: "u4", Role: "admin", FirstName: "Root", Email: "root@example.com", CreatedAt: at(time.October, 1, 9)},
	}
	vendors := []models.VendorModel{
		{ID: "v1", BusinessName: "Acme"},
		{ID: "v2", BusinessName: "Globex"},
	}
	products := []models.ProductModel{
		{ID: "p1", Name: "Mug", Category: "Kitchen", VendorID: "v1", Quantity: 0, LowStockThreshold: 5, CreatedAt: at(time.August, 1, 9)},
		{ID: "p2", Name: "Lamp", Category: "", VendorID: "v1", Quantity: 10, LowStockThreshold: 3, CreatedAt: at(time.September, 1, 9)},
		{ID: "p4", Name: "Chair", Category: "Furniture", VendorID: "v2", Quantity: 2, LowStockThreshold: 2, CreatedAt: at(time.October, 2, 9)},
	}

	order := func(id, user, status string, total int64, created time.Time, vendor string, items ...models.OrderItemModel) models.OrderModel {
		for i := range items {
			items[i].OrderID = id
		}
		return models.OrderModel{
			ID:        id,
			UserID:    user,
			Status:    status,
			Total:     money(total),
			CreatedAt: created,
			VendorOrders: []models.VendorOrderModel{{
				VendorID: vendor,
				Subtotal: money(total),
				Items:    items,
			}},
		}
	}
	item := func(product, name string, qty, total int64) models.OrderItemModel {
		return models.OrderItemModel{ProductID: product, Name: name, Quantity: qty, Total: money(total)}
	}

	o1 := order("o1", "u1", "delivered", 100, at(time.October, 5, 10), "v1",
		item("p1", "Mug", 2, 60), item("p2", "Lamp", 1, 40))
	o1.Tax = money(8)
	o1.Shipping = money(5)

	orders := []models.OrderModel{
		o1,
		order("o2", "u2", "shipped", 50, at(time.October, 12, 9), "v2", item("p3", "Poster", 5, 50)),
		order("o3", "u1", "confirmed", 100, at(time.September, 20, 15), "v1", item("p1", "Mug", 1, 100)),
		order("o4", "u3", "cancelled", 999, at(time.October, 10, 11), "v1", item("p2", "Lamp", 10, 999)),
		order("o5", "u3", "pending", 20, at(time.October, 14, 8), "v2", item("p2", "Lamp", 1, 20)),
	}

	require.NoError(t, db.Create(&users).Error)
	require.NoError(t, db.Create(&vendors).Error)
	require.NoError(t, db.Create(&products).Error)
	require.NoError(t, db.Create(&orders).Error)
}
