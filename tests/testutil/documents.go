package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func decimal128(t *testing.T, v string) primitive.Decimal128 {
	t.Helper()
	d, err := primitive.ParseDecimal128(v)
	require.NoError(t, err)
	return d
}

// SeedStorefrontDocuments inserts the same storefront as SeedStorefront into
// the document collections. Order totals are stored as Decimal128, line item
// totals as doubles and quantities as int32, the way loosely typed producers
// write them.
func SeedStorefrontDocuments(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx := context.Background()

	users := []any{
		bson.D{{Key: "_id", Value: "u1"}, {Key: "role", Value: "customer"}, {Key: "firstName", Value: "Ada"}, {Key: "lastName", Value: "Lovelace"}, {Key: "email", Value: "ada@example.com"}, {Key: "createdAt", Value: at(time.January, 1, 9)}},
		bson.D{{Key: "_id", Value: "u2"}, {Key: "role", Value: "customer"}, {Key: "firstName", Value: "Grace"}, {Key: "lastName", Value: "Hopper"}, {Key: "email", Value: "grace@example.com"}, {Key: "createdAt", Value: at(time.October, 3, 9)}},
		bson.D{{Key: "_id", Value: "u3"}, {Key: "role", Value: "customer"}, {Key: "firstName", Value: "Alan"}, {Key: "email", Value: "alan@example.com"}, {Key: "createdAt", Value: at(time.October, 15, 9)}},
		bson.D{{Key: "_id", Value: "u4"}, {Key: "role", Value: "admin"}, {Key: "firstName", Value: "Root"}, {Key: "email", Value: "root@example.com"}, {Key: "createdAt", Value: at(time.October, 1, 9)}},
	}
	vendors := []any{
		bson.D{{Key: "_id", Value: "v1"}, {Key: "businessName", Value: "Acme"}},
		bson.D{{Key: "_id", Value: "v2"}, {Key: "businessName", Value: "Globex"}},
	}
	product := func(id, name, category, vendor string, qty, threshold int32, created time.Time) bson.D {
		doc := bson.D{{Key: "_id", Value: id}, {Key: "name", Value: name}}
		if category != "" {
			doc = append(doc, bson.E{Key: "category", Value: category})
		}
		return append(doc,
			bson.E{Key: "vendorId", Value: vendor},
			bson.E{Key: "inventory", Value: bson.D{{Key: "quantity", Value: qty}, {Key: "lowStockThreshold", Value: threshold}}},
			bson.E{Key: "createdAt", Value: created},
		)
	}
	products := []any{
		product("p1", "Mug", "Kitchen", "v1", 0, 5, at(time.August, 1, 9)),
		product("p2", "Lamp", "", "v1", 10, 3, at(time.September, 1, 9)),
		product("p4", "Chair", "Furniture", "v2", 2, 2, at(time.October, 2, 9)),
	}

	item := func(product, name string, qty int32, total float64) bson.D {
		return bson.D{{Key: "productId", Value: product}, {Key: "name", Value: name}, {Key: "quantity", Value: qty}, {Key: "total", Value: total}}
	}
	order := func(id, user, status, total string, created time.Time, vendor string, items ...bson.D) bson.D {
		lines := make(bson.A, len(items))
		for i, it := range items {
			lines[i] = it
		}
		return bson.D{
			{Key: "_id", Value: id},
			{Key: "userId", Value: user},
			{Key: "status", Value: status},
			{Key: "total", Value: decimal128(t, total)},
			{Key: "tax", Value: int32(0)},
			{Key: "shipping", Value: int32(0)},
			{Key: "vendorOrders", Value: bson.A{bson.D{
				{Key: "vendorId", Value: vendor},
				{Key: "subtotal", Value: decimal128(t, total)},
				{Key: "items", Value: lines},
			}}},
			{Key: "createdAt", Value: created},
		}
	}

	o1 := order("o1", "u1", "delivered", "100", at(time.October, 5, 10), "v1",
		item("p1", "Mug", 2, 60), item("p2", "Lamp", 1, 40))
	for i := range o1 {
		switch o1[i].Key {
		case "tax":
			o1[i].Value = int64(8)
		case "shipping":
			o1[i].Value = 5.0
		}
	}

	orders := []any{
		o1,
		order("o2", "u2", "shipped", "50", at(time.October, 12, 9), "v2", item("p3", "Poster", 5, 50)),
		order("o3", "u1", "confirmed", "100", at(time.September, 20, 15), "v1", item("p1", "Mug", 1, 100)),
		order("o4", "u3", "cancelled", "999", at(time.October, 10, 11), "v1", item("p2", "Lamp", 10, 999)),
		order("o5", "u3", "pending", "20", at(time.October, 14, 8), "v2", item("p2", "Lamp", 1, 20)),
	}

	for name, docs := range map[string][]any{
		"users":    users,
		"vendors":  vendors,
		"products": products,
		"orders":   orders,
	} {
		_, err := db.Collection(name).InsertMany(ctx, docs)
		require.NoError(t, err, "seed %s", name)
	}
}
