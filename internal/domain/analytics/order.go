package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "draft"
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var recognizedStatuses = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// RecognizedStatusStrings lists the statuses that count toward revenue and order
// metrics, as plain strings for query parameters. A fresh slice is returned on
// every call.
func RecognizedStatusStrings() []string {
	out := make([]string, len(recognizedStatuses))
	for i, s := range recognizedStatuses {
		out[i] = string(s)
	}
	return out
}

// IsRecognized reports whether the status counts as recognized revenue
func (s OrderStatus) IsRecognized() bool {
	for _, r := range recognizedStatuses {
		if s == r {
			return true
		}
	}
	return false
}

// Order is the read-only view of a customer order
type Order struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Status       OrderStatus     `json:"status"`
	Total        decimal.Decimal `json:"total"`
	Tax          decimal.Decimal `json:"tax"`
	Shipping     decimal.Decimal `json:"shipping"`
	Discount     decimal.Decimal `json:"discount"`
	VendorOrders []VendorOrder   `json:"vendorOrders,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// VendorOrder is the slice of an order fulfilled by a single vendor
type VendorOrder struct {
	VendorID string          `json:"vendorId"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Items    []LineItem      `json:"items"`
}

// LineItem is a single product line inside a vendor order
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}
