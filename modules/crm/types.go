package crm

import (
	domain "github.com/example/crm-backend/domain/crm"
)

// CreateCustomerRequest is the request for the create-customer service.
type CreateCustomerRequest = domain.CustomerInput

// CreateCustomerResponse is the response for the create-customer service.
type CreateCustomerResponse struct {
	Customer *domain.Customer    `json:"customer,omitempty"`
	Message  string              `json:"message"`
	OK       bool                `json:"ok"`
	Error    *domain.ErrorDetail `json:"error,omitempty"`
}

// BulkCreateCustomersRequest is the request for the bulk-create-customers service.
type BulkCreateCustomersRequest struct {
	Input []domain.CustomerInput `json:"input"`
}

// BulkCreateCustomersResponse is the response for the bulk-create-customers service.
type BulkCreateCustomersResponse struct {
	Customers []domain.Customer   `json:"customers"`
	Errors    []string            `json:"errors"`
	Error     *domain.ErrorDetail `json:"error,omitempty"`
}

// CreateProductRequest is the request for the create-product service.
type CreateProductRequest = domain.ProductInput

// ProductResponse carries a single product.
type ProductResponse struct {
	Product *domain.Product     `json:"product,omitempty"`
	Error   *domain.ErrorDetail `json:"error,omitempty"`
}

// CreateOrderRequest is the request for the create-order service.
type CreateOrderRequest = domain.OrderInput

// OrderResponse carries a single order.
type OrderResponse struct {
	Order *domain.Order       `json:"order,omitempty"`
	Error *domain.ErrorDetail `json:"error,omitempty"`
}

// CustomerResponse carries a single customer.
type CustomerResponse struct {
	Customer *domain.Customer    `json:"customer,omitempty"`
	Error    *domain.ErrorDetail `json:"error,omitempty"`
}

// RefRequest addresses one entity by raw ID or reference token.
type RefRequest struct {
	ID string `json:"id"`
}

// SetOrderProductsRequest is the request for the set-order-products service.
type SetOrderProductsRequest struct {
	OrderID    string   `json:"orderId"`
	ProductIDs []string `json:"productIds"`
}

// ListRequest carries a list query.
type ListRequest struct {
	Query domain.ListQuery `json:"query"`
}

// ListCustomersResponse is the response for the list-customers service.
type ListCustomersResponse struct {
	Customers []domain.Customer   `json:"customers"`
	Error     *domain.ErrorDetail `json:"error,omitempty"`
}

// ListProductsResponse is the response for list-products and update-low-stock-products.
type ListProductsResponse struct {
	Products []domain.Product    `json:"products"`
	Error    *domain.ErrorDetail `json:"error,omitempty"`
}

// ListOrdersResponse is the response for list-orders and recent-orders.
type ListOrdersResponse struct {
	Orders []domain.Order      `json:"orders"`
	Error  *domain.ErrorDetail `json:"error,omitempty"`
}

// RecentOrdersRequest is the request for the recent-orders service.
type RecentOrdersRequest struct {
	Days int `json:"days"`
}

// UpdateLowStockRequest is the request for the update-low-stock-products service.
type UpdateLowStockRequest struct {
	Threshold int `json:"threshold"`
	Increment int `json:"increment"`
}

// DeleteResponse is the response for the delete services.
type DeleteResponse struct {
	Deleted bool                `json:"deleted"`
	Error   *domain.ErrorDetail `json:"error,omitempty"`
}
