package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// CustomerCreatedEvent is emitted when a customer is created, singly or by
// bulk import.
type CustomerCreatedEvent struct {
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

// CustomerCreatedV1 is the typed event definition for customer creation.
// Subject: events.crm.v1.customer-created
var CustomerCreatedV1 = helper.EventDefinition[CustomerCreatedEvent](
	"crm", "CustomerCreated", "v1",
)

// OrderCreatedEvent is emitted after an order and its total are committed.
type OrderCreatedEvent struct {
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	ProductIDs  []string  `json:"product_ids"`
	TotalAmount string    `json:"total_amount"`
	OrderDate   time.Time `json:"order_date"`
}

// OrderCreatedV1 is the typed event definition for order creation.
// Subject: events.crm.v1.order-created
var OrderCreatedV1 = helper.EventDefinition[OrderCreatedEvent](
	"crm", "OrderCreated", "v1",
)

// RestockedProduct is one product updated by a low-stock sweep.
type RestockedProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// ProductsRestockedEvent is emitted when a low-stock sweep updated at least
// one product.
type ProductsRestockedEvent struct {
	Products    []RestockedProduct `json:"products"`
	RestockedAt time.Time          `json:"restocked_at"`
}

// ProductsRestockedV1 is the typed event definition for low-stock sweeps.
// Subject: events.crm.v1.products-restocked
var ProductsRestockedV1 = helper.EventDefinition[ProductsRestockedEvent](
	"crm", "ProductsRestocked", "v1",
)
