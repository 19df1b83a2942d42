package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a person or business that places orders.
type Customer struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Customer) TableName() string {
	return "customers"
}

// Product is a sellable item with a unit price and stock level.
type Product struct {
	ID        string          `gorm:"primarykey;size:36" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Product) TableName() string {
	return "products"
}

// Order links one customer to a set of products. TotalAmount is derived from
// the current prices of the associated products and is never set by callers.
type Order struct {
	ID          string          `gorm:"primarykey;size:36" json:"id"`
	CustomerID  string          `gorm:"size:36;not null;index" json:"customer_id"`
	Customer    *Customer       `gorm:"constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	Products    []Product       `gorm:"many2many:order_products;constraint:OnDelete:CASCADE" json:"products"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	OrderDate   time.Time       `gorm:"not null;index" json:"order_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Order) TableName() string {
	return "orders"
}

// ProductIDs returns the IDs of the associated products in their loaded order.
func (o *Order) ProductIDs() []string {
	ids := make([]string, len(o.Products))
	for i, p := range o.Products {
		ids[i] = p.ID
	}
	return ids
}

// CustomerInput is the payload for creating a customer.
type CustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// ProductInput is the payload for creating a product. A nil Stock means 0.
type ProductInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock *int            `json:"stock,omitempty"`
}

// OrderInput is the payload for creating an order. CustomerID and ProductIDs
// accept raw store keys or encoded reference tokens.
type OrderInput struct {
	CustomerID string     `json:"customerId"`
	ProductIDs []string   `json:"productIds"`
	OrderDate  *time.Time `json:"orderDate,omitempty"`
}

// BulkResult is the outcome of a bulk customer import. Errors holds one
// "Row N: reason" message per rejected row.
type BulkResult struct {
	Customers []Customer `json:"customers"`
	Errors    []string   `json:"errors"`
}
