package crm

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// CRMPort is the CRM API used by driving adapters. Both *Service and the
// service-container adapter implement it.
type CRMPort interface {
	CreateCustomer(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error)
	BulkCreateCustomers(ctx context.Context, rows []domain.CustomerInput) (domain.BulkResult, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	CreateOrder(ctx context.Context, in domain.OrderInput) (*domain.Order, error)
	RecalculateTotal(ctx context.Context, orderRef string) (*domain.Order, error)
	SetOrderProducts(ctx context.Context, orderRef string, productRefs []string) (*domain.Order, error)
	GetCustomer(ctx context.Context, ref string) (*domain.Customer, error)
	GetProduct(ctx context.Context, ref string) (*domain.Product, error)
	GetOrder(ctx context.Context, ref string) (*domain.Order, error)
	ListCustomers(ctx context.Context, q domain.ListQuery) ([]domain.Customer, error)
	ListProducts(ctx context.Context, q domain.ListQuery) ([]domain.Product, error)
	ListOrders(ctx context.Context, q domain.ListQuery) ([]domain.Order, error)
	RecentOrders(ctx context.Context, days int) ([]domain.Order, error)
	UpdateLowStockProducts(ctx context.Context, threshold, increment int) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, ref string) error
	DeleteCustomer(ctx context.Context, ref string) error
}

var _ CRMPort = (*Service)(nil)
var _ CRMPort = (*crmAdapter)(nil)

// crmAdapter wraps ServiceContainer for type-safe cross-module communication.
type crmAdapter struct {
	container mono.ServiceContainer
}

// NewCRMAdapter creates a new adapter for CRM services.
// container is the ServiceContainer from the crm module received via SetDependencyServiceContainer.
func NewCRMAdapter(container mono.ServiceContainer) CRMPort {
	if container == nil {
		panic("crm adapter requires non-nil ServiceContainer")
	}
	return &crmAdapter{container: container}
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req) (*Resp, error) {
	var resp Resp
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", service, err)
	}
	return &resp, nil
}

// CreateCustomer creates a customer via the create-customer service.
func (a *crmAdapter) CreateCustomer(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	resp, err := call[CreateCustomerRequest, CreateCustomerResponse](ctx, a.container, "create-customer", &in)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domain.ErrorFromDetail(resp.Error)
	}
	return resp.Customer, nil
}

// BulkCreateCustomers imports customers via the bulk-create-customers service.
func (a *crmAdapter) BulkCreateCustomers(ctx context.Context, rows []domain.CustomerInput) (domain.BulkResult, error) {
	req := BulkCreateCustomersRequest{Input: rows}
	resp, err := call[BulkCreateCustomersRequest, BulkCreateCustomersResponse](ctx, a.container, "bulk-create-customers", &req)
	if err != nil {
		return domain.BulkResult{}, err
	}
	if resp.Error != nil {
		return domain.BulkResult{}, domain.ErrorFromDetail(resp.Error)
	}
	return domain.BulkResult{Customers: resp.Customers, Errors: resp.Errors}, nil
}

// CreateProduct creates a product via the create-product service.
func (a *crmAdapter) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	resp, err := call[CreateProductRequest, ProductResponse](ctx, a.container, "create-product", &in)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domain.ErrorFromDetail(resp.Error)
	}
	return resp.Product, nil
}

// CreateOrder creates an order via the create-order service.
func (a *crmAdapter) CreateOrder(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	return a.orderCall(ctx, "create-order", &in)
}

// RecalculateTotal recomputes an order total via the recalculate-order-total service.
func (a *crmAdapter) RecalculateTotal(ctx context.Context, orderRef string) (*domain.Order, error) {
	req := RefRequest{ID: orderRef}
	resp, err := call[RefRequest, OrderResponse](ctx, a.container, "recalculate-order-total", &req)
	return orderResult(resp, err)
}

// SetOrderProducts replaces an order's products via the set-order-products service.
func (a *crmAdapter) SetOrderProducts(ctx context.Context, orderRef string, productRefs []string) (*domain.Order, error) {
	req := SetOrderProductsRequest{OrderID: orderRef, ProductIDs: productRefs}
	resp, err := call[SetOrderProductsRequest, OrderResponse](ctx, a.container, "set-order-products", &req)
	return orderResult(resp, err)
}

// GetCustomer retrieves a customer via the get-customer service.
func (a *crmAdapter) GetCustomer(ctx context.Context, ref string) (*domain.Customer, error) {
	req := RefRequest{ID: ref}
	resp, err := call[RefRequest, CustomerResponse](ctx, a.container, "get-customer", &req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domain.ErrorFromDetail(resp.Error)
	}
	return resp.Customer, nil
}

// GetProduct retrieves a product via the get-product service.
func (a *crmAdapter) GetProduct(ctx context.Context, ref string) (*domain.Product, error) {
	req := RefRequest{ID: ref}
	resp, err := call[RefRequest, ProductResponse](ctx, a.container, "get-product", &req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domain.ErrorFromDetail(resp.Error)
	}
	return resp.Product, nil
}

// GetOrder retrieves an order via the get-order service.
func (a *crmAdapter) GetOrder(ctx context.Context, ref string) (*domain.Order, error) {
	req := RefRequest{ID: ref}
	resp, err := call[RefRequest, OrderResponse](ctx, a.container, "get-order", &req)
	return orderResult(resp, err)
}

// ListCustomers lists customers via the list-customers service.
func (a *crmAdapter) ListCustomers(ctx context.Context, q domain.ListQuery) ([]domain.Customer, error) {
	req := ListRequest{Query: q}
	resp, err := call[ListRequest, ListCustomersResponse](ctx, a.container, "list-customers", &req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domain.ErrorFromDetail(resp.Error)
	}
	return resp.Customers, nil
}

// ListProducts lists products via the list-products service.
func (a *crmAdapter) ListProducts(ctx context.Context, q domain.ListQuery) ([]domain.Product, error) {
	req := ListRequest{Query: q}
	resp, err := call[ListRequest, ListProductsResponse](ctx, a.container, "list-products", &req)
	return productsResult(resp, err)
}

// ListOrders lists orders via the list-orders service.
func (a *crmAdapter) ListOrders(ctx context.Context, q domain.ListQuery) ([]domain.Order, error) {
	req := ListRequest{Query: q}
	resp, err := call[ListRequest, ListOrdersResponse](ctx, a.container, "list-orders", &req)
	return ordersResult(resp, err)
}

// RecentOrders lists recent orders via the recent-orders service.
func (a *crmAdapter) RecentOrders(ctx context.Context, days int) ([]domain.Order, error) {
	req := RecentOrdersRequest{Days: days}
	resp, err := call[RecentOrdersRequest, ListOrdersResponse](ctx, a.container, "recent-orders", &req)
	return ordersResult(resp, err)
}

// UpdateLowStockProducts runs the low-stock sweep via the update-low-stock-products service.
func (a *crmAdapter) UpdateLowStockProducts(ctx context.Context, threshold, increment int) ([]domain.Product, error) {
	req := UpdateLowStockRequest{Threshold: threshold, Increment: increment}
	resp, err := call[UpdateLowStockRequest, ListProductsResponse](ctx, a.container, "update-low-stock-products", &req)
	return productsResult(resp, err)
}

// DeleteProduct deletes a product via the delete-product service.
func (a *crmAdapter) DeleteProduct(ctx context.Context, ref string) error {
	return a.deleteCall(ctx, "delete-product", ref)
}

// DeleteCustomer deletes a customer via the delete-customer service.
func (a *crmAdapter) DeleteCustomer(ctx context.Context, ref string) error {
	return a.deleteCall(ctx, "delete-customer", ref)
}

func (a *crmAdapter) orderCall(ctx context.Context, service string, in *domain.OrderInput) (*domain.Order, error) {
	resp, err := call[domain.OrderInput, OrderResponse](ctx, a.container, service, in)
	return orderResult(resp, err)
}

func (a *crmAdapter) deleteCall(ctx context.Context, service, ref string) error {
	req := RefRequest{ID: ref}
	resp, err := call[RefRequest, DeleteResponse](ctx, a.container, service, &req)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return domain.ErrorFromDetail(resp.Error)
	}
	if !resp.Deleted {
		return fmt.Errorf("%s: %s not deleted", service, ref)
	}
	return nil
}

func orderResult(resp *OrderResponse, err error) (*domain.Order, error) {
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domain.ErrorFromDetail(resp.Error)
	}
	return resp.Order, nil
}

func productsResult(resp *ListProductsResponse, err error) ([]domain.Product, error) {
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domain.ErrorFromDetail(resp.Error)
	}
	return resp.Products, nil
}

func ordersResult(resp *ListOrdersResponse, err error) ([]domain.Order, error) {
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, domain.ErrorFromDetail(resp.Error)
	}
	return resp.Orders, nil
}
