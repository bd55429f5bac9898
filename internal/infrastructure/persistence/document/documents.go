package document

import (
	"time"

	"github.com/storefront/analytics/internal/domain/analytics"
)

// Collection names
const (
	OrdersCollection   = "orders"
	ProductsCollection = "products"
	UsersCollection    = "users"
	VendorsCollection  = "vendors"
)

type lineItemDoc struct {
	ProductID docID  `bson:"productId"`
	Name      string `bson:"name"`
	Quantity  int64  `bson:"quantity"`
	Total     money  `bson:"total"`
}

type vendorOrderDoc struct {
	VendorID docID         `bson:"vendorId"`
	Subtotal money         `bson:"subtotal"`
	Items    []lineItemDoc `bson:"items"`
}

type orderDoc struct {
	ID           docID            `bson:"_id"`
	UserID       docID            `bson:"userId"`
	Status       string           `bson:"status"`
	Total        money            `bson:"total"`
	Tax          money            `bson:"tax"`
	Shipping     money            `bson:"shipping"`
	Discount     money            `bson:"discount"`
	VendorOrders []vendorOrderDoc `bson:"vendorOrders"`
	CreatedAt    time.Time        `bson:"createdAt"`
}

func (d orderDoc) toDomain() analytics.Order {
	o := analytics.Order{
		ID:        d.ID.String(),
		UserID:    d.UserID.String(),
		Status:    analytics.OrderStatus(d.Status),
		Total:     d.Total.Decimal,
		Tax:       d.Tax.Decimal,
		Shipping:  d.Shipping.Decimal,
		Discount:  d.Discount.Decimal,
		CreatedAt: d.CreatedAt,
	}
	for _, vo := range d.VendorOrders {
		v := analytics.VendorOrder{VendorID: vo.VendorID.String(), Subtotal: vo.Subtotal.Decimal}
		for _, it := range vo.Items {
			v.Items = append(v.Items, analytics.LineItem{
				ProductID: it.ProductID.String(),
				Name:      it.Name,
				Quantity:  it.Quantity,
				Total:     it.Total.Decimal,
			})
		}
		o.VendorOrders = append(o.VendorOrders, v)
	}
	return o
}

type productDoc struct {
	ID        docID  `bson:"_id"`
	Name      string `bson:"name"`
	Category  string `bson:"category"`
	VendorID  docID  `bson:"vendorId"`
	Inventory struct {
		Quantity          int64 `bson:"quantity"`
		LowStockThreshold int64 `bson:"lowStockThreshold"`
	} `bson:"inventory"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d productDoc) toDomain() analytics.Product {
	return analytics.Product{
		ID:       d.ID.String(),
		Name:     d.Name,
		Category: d.Category,
		VendorID: d.VendorID.String(),
		Inventory: analytics.Inventory{
			Quantity:          d.Inventory.Quantity,
			LowStockThreshold: d.Inventory.LowStockThreshold,
		},
		CreatedAt: d.CreatedAt,
	}
}

type userDoc struct {
	ID        docID     `bson:"_id"`
	Role      string    `bson:"role"`
	FirstName string    `bson:"firstName"`
	LastName  string    `bson:"lastName"`
	Email     string    `bson:"email"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d userDoc) toDomain() analytics.User {
	return analytics.User{
		ID:        d.ID.String(),
		Role:      d.Role,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		CreatedAt: d.CreatedAt,
	}
}
