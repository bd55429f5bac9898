package models

import (
	"time"

	"github.com/storefront/analytics/internal/domain/analytics"
)

// ProductModel is the persistence model of a catalog product
type ProductModel struct {
	ID                string    `gorm:"type:varchar(64);primaryKey"`
	Name              string    `gorm:"type:varchar(200);not null"`
	Category          string    `gorm:"type:varchar(100);not null;default:''"`
	VendorID          string    `gorm:"type:varchar(64);not null;index"`
	Quantity          int64     `gorm:"not null;default:0"`
	LowStockThreshold int64     `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to the domain Product read model
func (m *ProductModel) ToDomain() analytics.Product {
	return analytics.Product{
		ID:       m.ID,
		Name:     m.Name,
		Category: m.Category,
		VendorID: m.VendorID,
		Inventory: analytics.Inventory{
			Quantity:          m.Quantity,
			LowStockThreshold: m.LowStockThreshold,
		},
		CreatedAt: m.CreatedAt,
	}
}

// UserModel is the persistence model of an account
type UserModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Role      string    `gorm:"type:varchar(20);not null;index"`
	FirstName string    `gorm:"type:varchar(100);not null;default:''"`
	LastName  string    `gorm:"type:varchar(100);not null;default:''"`
	Email     string    `gorm:"type:varchar(200);not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to the domain User read model
func (m *UserModel) ToDomain() analytics.User {
	return analytics.User{
		ID:        m.ID,
		Role:      m.Role,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}

// VendorModel is the persistence model of a seller
type VendorModel struct {
	ID           string `gorm:"type:varchar(64);primaryKey"`
	BusinessName string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// AllModels lists every table of the analytics store, parents first
func AllModels() []any {
	return []any{
		&UserModel{},
		&VendorModel{},
		&ProductModel{},
		&OrderModel{},
		&VendorOrderModel{},
		&OrderItemModel{},
	}
}
