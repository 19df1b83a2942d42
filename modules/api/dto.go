package api

import (
	domain "github.com/example/crm-backend/domain/crm"
	"github.com/example/crm-backend/modules/activity"
)

// BulkCreateCustomersRequest is the HTTP request for a bulk customer import.
type BulkCreateCustomersRequest struct {
	Input []domain.CustomerInput `json:"input"`
}

// SetOrderProductsRequest is the HTTP request for replacing an order's products.
type SetOrderProductsRequest struct {
	ProductIDs []string `json:"productIds"`
}

// RestockRequest is the HTTP request for a low-stock sweep. Zero values use
// the defaults.
type RestockRequest struct {
	Threshold int `json:"threshold"`
	Increment int `json:"increment"`
}

// CustomerMutationResponse mirrors the create-customer contract.
type CustomerMutationResponse struct {
	Customer *domain.Customer `json:"customer"`
	Message  string           `json:"message"`
	OK       bool             `json:"ok"`
}

// BulkCreateCustomersResponse is the HTTP response for a bulk customer import.
type BulkCreateCustomersResponse struct {
	Customers []domain.Customer `json:"customers"`
	Errors    []string          `json:"errors"`
}

// CustomerResponse wraps a single customer.
type CustomerResponse struct {
	Customer *domain.Customer `json:"customer"`
}

// ProductResponse wraps a single product.
type ProductResponse struct {
	Product *domain.Product `json:"product"`
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Order *domain.Order `json:"order"`
}

// ListCustomersResponse is the HTTP response for listing customers.
type ListCustomersResponse struct {
	Customers []domain.Customer `json:"customers"`
	Total     int               `json:"total"`
}

// ListProductsResponse is the HTTP response for listing products.
type ListProductsResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

// ListOrdersResponse is the HTTP response for listing orders.
type ListOrdersResponse struct {
	Orders []domain.Order `json:"orders"`
	Total  int            `json:"total"`
}

// ActivityResponse is the HTTP response for the activity feed.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
	Total   int              `json:"total"`
}

// HelloResponse is the HTTP response for the greeting endpoint.
type HelloResponse struct {
	Hello string `json:"hello"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
