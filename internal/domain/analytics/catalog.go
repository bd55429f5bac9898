package analytics

import "time"

// RoleCustomer is the user role counted as a customer
const RoleCustomer = "customer"

// UncategorizedLabel is the category bucket for line items whose product cannot be resolved
const UncategorizedLabel = "General"

// Product is the read-only view of a catalog product
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	VendorID  string    `json:"vendorId"`
	Inventory Inventory `json:"inventory"`
	CreatedAt time.Time `json:"createdAt"`
}

// Inventory is the stock sub-record of a product
type Inventory struct {
	Quantity          int64 `json:"quantity"`
	LowStockThreshold int64 `json:"lowStockThreshold"`
}

// IsLowStock reports quantity at or below the threshold
func (i Inventory) IsLowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}

// IsOutOfStock reports an empty or negative quantity
func (i Inventory) IsOutOfStock() bool {
	return i.Quantity <= 0
}

// User is the read-only view of an account
type User struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName joins first and last name
func (u User) DisplayName() string {
	return JoinName(u.FirstName, u.LastName)
}

// JoinName builds "first last", dropping the separator when either part is empty
func JoinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// Vendor is the read-only view of a seller
type Vendor struct {
	ID           string `json:"id"`
	BusinessName string `json:"businessName"`
}
