package crm

import (
	"context"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/go-monolith/mono"
)

// splitError separates domain failures, which travel in the response body,
// from infrastructure failures, which are returned as service errors.
func splitError(err error) (*domain.ErrorDetail, error) {
	if detail := domain.DetailOf(err); detail != nil {
		return detail, nil
	}
	return nil, err
}

// createCustomer handles the create-customer service request.
func (m *CRMModule) createCustomer(ctx context.Context, req CreateCustomerRequest, _ *mono.Msg) (CreateCustomerResponse, error) {
	customer, err := m.service.CreateCustomer(ctx, req)
	if err != nil {
		detail, err := splitError(err)
		if err != nil {
			return CreateCustomerResponse{}, err
		}
		return CreateCustomerResponse{Message: detail.Message, OK: false, Error: detail}, nil
	}
	return CreateCustomerResponse{Customer: customer, Message: "Customer created successfully", OK: true}, nil
}

// bulkCreateCustomers handles the bulk-create-customers service request.
func (m *CRMModule) bulkCreateCustomers(ctx context.Context, req BulkCreateCustomersRequest, _ *mono.Msg) (BulkCreateCustomersResponse, error) {
	result, err := m.service.BulkCreateCustomers(ctx, req.Input)
	if err != nil {
		detail, err := splitError(err)
		return BulkCreateCustomersResponse{Error: detail}, err
	}
	return BulkCreateCustomersResponse{Customers: result.Customers, Errors: result.Errors}, nil
}

// createProduct handles the create-product service request.
func (m *CRMModule) createProduct(ctx context.Context, req CreateProductRequest, _ *mono.Msg) (ProductResponse, error) {
	product, err := m.service.CreateProduct(ctx, req)
	if err != nil {
		detail, err := splitError(err)
		return ProductResponse{Error: detail}, err
	}
	return ProductResponse{Product: product}, nil
}

// createOrder handles the create-order service request.
func (m *CRMModule) createOrder(ctx context.Context, req CreateOrderRequest, _ *mono.Msg) (OrderResponse, error) {
	order, err := m.service.CreateOrder(ctx, req)
	if err != nil {
		detail, err := splitError(err)
		return OrderResponse{Error: detail}, err
	}
	return OrderResponse{Order: order}, nil
}

// recalculateOrderTotal handles the recalculate-order-total service request.
func (m *CRMModule) recalculateOrderTotal(ctx context.Context, req RefRequest, _ *mono.Msg) (OrderResponse, error) {
	order, err := m.service.RecalculateTotal(ctx, req.ID)
	if err != nil {
		detail, err := splitError(err)
		return OrderResponse{Error: detail}, err
	}
	return OrderResponse{Order: order}, nil
}

// setOrderProducts handles the set-order-products service request.
func (m *CRMModule) setOrderProducts(ctx context.Context, req SetOrderProductsRequest, _ *mono.Msg) (OrderResponse, error) {
	order, err := m.service.SetOrderProducts(ctx, req.OrderID, req.ProductIDs)
	if err != nil {
		detail, err := splitError(err)
		return OrderResponse{Error: detail}, err
	}
	return OrderResponse{Order: order}, nil
}

func (m *CRMModule) getCustomer(ctx context.Context, req RefRequest, _ *mono.Msg) (CustomerResponse, error) {
	customer, err := m.service.GetCustomer(ctx, req.ID)
	if err != nil {
		detail, err := splitError(err)
		return CustomerResponse{Error: detail}, err
	}
	return CustomerResponse{Customer: customer}, nil
}

func (m *CRMModule) getProduct(ctx context.Context, req RefRequest, _ *mono.Msg) (ProductResponse, error) {
	product, err := m.service.GetProduct(ctx, req.ID)
	if err != nil {
		detail, err := splitError(err)
		return ProductResponse{Error: detail}, err
	}
	return ProductResponse{Product: product}, nil
}

func (m *CRMModule) getOrder(ctx context.Context, req RefRequest, _ *mono.Msg) (OrderResponse, error) {
	order, err := m.service.GetOrder(ctx, req.ID)
	if err != nil {
		detail, err := splitError(err)
		return OrderResponse{Error: detail}, err
	}
	return OrderResponse{Order: order}, nil
}

func (m *CRMModule) listCustomers(ctx context.Context, req ListRequest, _ *mono.Msg) (ListCustomersResponse, error) {
	customers, err := m.service.ListCustomers(ctx, req.Query)
	if err != nil {
		detail, err := splitError(err)
		return ListCustomersResponse{Error: detail}, err
	}
	return ListCustomersResponse{Customers: customers}, nil
}

func (m *CRMModule) listProducts(ctx context.Context, req ListRequest, _ *mono.Msg) (ListProductsResponse, error) {
	products, err := m.service.ListProducts(ctx, req.Query)
	if err != nil {
		detail, err := splitError(err)
		return ListProductsResponse{Error: detail}, err
	}
	return ListProductsResponse{Products: products}, nil
}

func (m *CRMModule) listOrders(ctx context.Context, req ListRequest, _ *mono.Msg) (ListOrdersResponse, error) {
	orders, err := m.service.ListOrders(ctx, req.Query)
	if err != nil {
		detail, err := splitError(err)
		return ListOrdersResponse{Error: detail}, err
	}
	return ListOrdersResponse{Orders: orders}, nil
}

// recentOrders handles the recent-orders service request.
func (m *CRMModule) recentOrders(ctx context.Context, req RecentOrdersRequest, _ *mono.Msg) (ListOrdersResponse, error) {
	orders, err := m.service.RecentOrders(ctx, req.Days)
	if err != nil {
		return ListOrdersResponse{}, err
	}
	return ListOrdersResponse{Orders: orders}, nil
}

// updateLowStockProducts handles the update-low-stock-products service request.
func (m *CRMModule) updateLowStockProducts(ctx context.Context, req UpdateLowStockRequest, _ *mono.Msg) (ListProductsResponse, error) {
	products, err := m.service.UpdateLowStockProducts(ctx, req.Threshold, req.Increment)
	if err != nil {
		return ListProductsResponse{}, err
	}
	return ListProductsResponse{Products: products}, nil
}

func (m *CRMModule) deleteProduct(ctx context.Context, req RefRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.service.DeleteProduct(ctx, req.ID); err != nil {
		detail, err := splitError(err)
		return DeleteResponse{Error: detail}, err
	}
	return DeleteResponse{Deleted: true}, nil
}

func (m *CRMModule) deleteCustomer(ctx context.Context, req RefRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.service.DeleteCustomer(ctx, req.ID); err != nil {
		detail, err := splitError(err)
		return DeleteResponse{Error: detail}, err
	}
	return DeleteResponse{Deleted: true}, nil
}
