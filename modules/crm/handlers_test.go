package crm

import (
	"context"
	"testing"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestModule(t *testing.T) *CRMModule {
	t.Helper()
	svc, _ := setupTestService(t)
	return &CRMModule{cfg: Config{DBPath: ":memory:"}, service: svc}
}

func TestModule_CreateCustomerHandler(t *testing.T) {
	m := setupTestModule(t)
	ctx := context.Background()

	resp, err := m.createCustomer(ctx, CreateCustomerRequest{Name: "Alice", Email: "alice@example.com"}, nil)
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "Customer created successfully", resp.Message)
	require.NotNil(t, resp.Customer)
	assert.Nil(t, resp.Error)

	resp, err = m.createCustomer(ctx, CreateCustomerRequest{Name: "Alice", Email: "ALICE@example.com"}, nil)
	require.NoError(t, err, "domain failures travel in the response body")
	assert.False(t, resp.OK)
	assert.Nil(t, resp.Customer)
	require.NotNil(t, resp.Error)
	assert.Equal(t, domain.CodeDuplicateEmail, resp.Error.Code)
	assert.Equal(t, resp.Error.Message, resp.Message)
}

func TestModule_CreateOrderHandler_ErrorDetail(t *testing.T) {
	m := setupTestModule(t)

	resp, err := m.createOrder(context.Background(), CreateOrderRequest{
		CustomerID: uuid.New().String(),
		ProductIDs: []string{uuid.New().String()},
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, domain.CodeInvalidCustomer, resp.Error.Code)
	assert.Nil(t, resp.Order)

	rebuilt := domain.ErrorFromDetail(resp.Error)
	assert.ErrorIs(t, rebuilt, domain.ErrInvalidCustomer)
}

func TestModule_ProductHandlers(t *testing.T) {
	m := setupTestModule(t)
	ctx := context.Background()

	created, err := m.createProduct(ctx, CreateProductRequest{Name: "Mouse", Price: decimal.RequireFromString("19.99")}, nil)
	require.NoError(t, err)
	require.NotNil(t, created.Product)

	got, err := m.getProduct(ctx, RefRequest{ID: domain.EncodeReference(domain.RefProduct, created.Product.ID)}, nil)
	require.NoError(t, err)
	require.NotNil(t, got.Product)
	assert.Equal(t, "Mouse", got.Product.Name)

	list, err := m.listProducts(ctx, ListRequest{Query: domain.ListQuery{
		Filters: []domain.Filter{{Field: "nope", Op: domain.OpExact, Value: "x"}},
	}}, nil)
	require.NoError(t, err)
	require.NotNil(t, list.Error)
	assert.Equal(t, domain.CodeInvalidQuery, list.Error.Code)

	restocked, err := m.updateLowStockProducts(ctx, UpdateLowStockRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, restocked.Products, 1)
	assert.Equal(t, 10, restocked.Products[0].Stock)

	deleted, err := m.deleteProduct(ctx, RefRequest{ID: created.Product.ID}, nil)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)

	deleted, err = m.deleteProduct(ctx, RefRequest{ID: created.Product.ID}, nil)
	require.NoError(t, err)
	assert.False(t, deleted.Deleted)
	require.NotNil(t, deleted.Error)
	assert.Equal(t, domain.CodeProductNotFound, deleted.Error.Code)
}

func TestModule_BulkCreateHandler(t *testing.T) {
	m := setupTestModule(t)

	resp, err := m.bulkCreateCustomers(context.Background(), BulkCreateCustomersRequest{Input: []domain.CustomerInput{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "", Email: "noname@example.com"},
	}}, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 1)
	assert.Equal(t, []string{"Row 2: name is required"}, resp.Errors)
}

func TestModule_Health(t *testing.T) {
	m := NewModule(Config{})
	assert.False(t, m.Health(context.Background()).Healthy)

	m = setupTestModule(t)
	health := m.Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Equal(t, "sqlite", health.Details["driver"])
}
