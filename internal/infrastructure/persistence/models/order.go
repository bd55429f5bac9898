package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/analytics/internal/domain/analytics"
)

// OrderModel is the persistence model of a customer order
type OrderModel struct {
	ID           string             `gorm:"type:varchar(64);primaryKey"`
	UserID       string             `gorm:"type:varchar(64);not null;index"`
	Status       string             `gorm:"type:varchar(20);not null;index:idx_orders_status_created,priority:1"`
	Total        decimal.Decimal    `gorm:"type:decimal(14,2);not null;default:0"`
	Tax          decimal.Decimal    `gorm:"type:decimal(14,2);not null;default:0"`
	Shipping     decimal.Decimal    `gorm:"type:decimal(14,2);not null;default:0"`
	Discount     decimal.Decimal    `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt    time.Time          `gorm:"not null;index:idx_orders_status_created,priority:2"`
	VendorOrders []VendorOrderModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to the domain Order read model
func (m *OrderModel) ToDomain() analytics.Order {
	o := analytics.Order{
		ID:        m.ID,
		UserID:    m.UserID,
		Status:    analytics.OrderStatus(m.Status),
		Total:     m.Total,
		Tax:       m.Tax,
		Shipping:  m.Shipping,
		Discount:  m.Discount,
		CreatedAt: m.CreatedAt,
	}
	for i := range m.VendorOrders {
		o.VendorOrders = append(o.VendorOrders, m.VendorOrders[i].ToDomain())
	}
	return o
}

// VendorOrderModel is the slice of an order fulfilled by one vendor
type VendorOrderModel struct {
	ID       int64            `gorm:"primaryKey;autoIncrement"`
	OrderID  string           `gorm:"type:varchar(64);not null;index"`
	VendorID string           `gorm:"type:varchar(64);not null;index"`
	Subtotal decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	Items    []OrderItemModel `gorm:"foreignKey:VendorOrderID"`
}

// TableName returns the table name for GORM
func (VendorOrderModel) TableName() string {
	return "vendor_orders"
}

// ToDomain converts the persistence model to the domain VendorOrder
func (m *VendorOrderModel) ToDomain() analytics.VendorOrder {
	vo := analytics.VendorOrder{VendorID: m.VendorID, Subtotal: m.Subtotal}
	for _, it := range m.Items {
		vo.Items = append(vo.Items, analytics.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Total:     it.Total,
		})
	}
	return vo
}

// OrderItemModel is a product line of a vendor order. OrderID is denormalized
// so line-item facets can filter on the parent order without a second join.
type OrderItemModel struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	OrderID       string          `gorm:"type:varchar(64);not null;index"`
	VendorOrderID int64           `gorm:"not null;index"`
	ProductID     string          `gorm:"type:varchar(64);not null;index"`
	Name          string          `gorm:"type:varchar(200);not null;default:''"`
	Quantity      int64           `gorm:"not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}
