package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/example/crm-backend/modules/activity"
	"github.com/example/crm-backend/modules/crm"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestApp wires the routes to a CRM service over an in-memory database.
func setupTestApp(t *testing.T) (*fiber.App, *crm.Service) {
	t.Helper()

	db, err := crm.OpenDatabase(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = crm.CloseDatabase(db) })

	svc := crm.NewService(crm.NewRepository(db))
	m := NewModule(Config{Port: 3000})
	m.port = svc
	m.activity = activity.NewModule(10)
	return m.newApp(), svc
}

type stubActivity struct {
	entries  []activity.Entry
	gotLimit int
}

func (s *stubActivity) Recent(_ context.Context, limit int) ([]activity.Entry, error) {
	s.gotLimit = limit
	if limit < len(s.entries) {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestAPI_HealthAndHello(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/hello", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello, GraphQL!", decode[HelloResponse](t, body).Hello)
}

func TestAPI_RecentActivity(t *testing.T) {
	feed := &stubActivity{entries: []activity.Entry{
		{Kind: "order_created", SubjectID: "o1", Message: "Order of 2 products totalling 1019.98"},
		{Kind: "customer_created", SubjectID: "c1", Message: "Customer Alice <alice@example.com> joined"},
	}}
	m := NewModule(Config{Port: 3000})
	m.port = failingPort{}
	m.activity = feed
	app := m.newApp()

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/activity", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	got := decode[ActivityResponse](t, body)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, "o1", got.Entries[0].SubjectID)
	assert.Equal(t, defaultActivityLimit, feed.gotLimit)

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/activity?limit=1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 1, decode[ActivityResponse](t, body).Total)
	assert.Equal(t, 1, feed.gotLimit)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/activity?limit=zero", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CreateCustomer(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/customers", map[string]any{
		"name": "Alice", "email": "Alice@Example.com", "phone": "+1234567890",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	created := decode[CustomerMutationResponse](t, body)
	assert.True(t, created.OK)
	assert.Equal(t, "alice@example.com", created.Customer.Email)

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/customers", map[string]any{
		"name": "Alice", "email": "alice@example.com",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate_email", decode[ErrorResponse](t, body).Error)

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/customers", map[string]any{
		"name": "Carol", "email": "carol@example.com", "phone": "555",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_phone_format", decode[ErrorResponse](t, body).Error)
}

func TestAPI_CreateCustomer_InvalidBody(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/customers", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAPI_BulkCreateCustomers(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/customers/bulk", map[string]any{
		"input": []map[string]string{
			{"name": "Ann", "email": "ann@example.com"},
			{"name": "Ann Again", "email": "ANN@example.com"},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	result := decode[BulkCreateCustomersResponse](t, body)
	assert.Len(t, result.Customers, 1)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 2:")
}

func TestAPI_ProductLifecycle(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/products", map[string]any{"name": "Free", "price": 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_price", decode[ErrorResponse](t, body).Error)

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/products", map[string]any{"name": "Mouse", "price": 19.99})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	product := decode[ProductResponse](t, body).Product
	assert.Equal(t, 0, product.Stock)

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/products", map[string]any{"name": "Laptop", "price": "999.99", "stock": 20})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/products?order_by=-price", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[ListProductsResponse](t, body)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "Laptop", list.Products[0].Name)

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/products?price__lt=100", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list = decode[ListProductsResponse](t, body)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Mouse", list.Products[0].Name)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/products?secret__exact=1", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/products/restock", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	restocked := decode[ListProductsResponse](t, body)
	require.Len(t, restocked.Products, 1)
	assert.Equal(t, 10, restocked.Products[0].Stock)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/products/"+product.ID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/products/"+product.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/products/"+product.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAPI_OrderFlow(t *testing.T) {
	app, svc := setupTestApp(t)
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = svc.Seed(ctx)
	require.NoError(t, err)

	products, err := svc.ListProducts(ctx, domain.ListQuery{OrderBy: []string{"name"}})
	require.NoError(t, err)
	require.Len(t, products, 2)
	laptop, mouse := products[0], products[1]

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/orders", map[string]any{
		"customerId": domain.EncodeReference(domain.RefCustomer, customer.ID),
		"productIds": []string{laptop.ID, mouse.ID},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	order := decode[OrderResponse](t, body).Order
	assert.Equal(t, "1019.98", order.TotalAmount.StringFixed(2))

	resp, body = doJSON(t, app, fiber.MethodPut, "/api/v1/orders/"+order.ID+"/products", map[string]any{
		"productIds": []string{mouse.ID},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "19.99", decode[OrderResponse](t, body).Order.TotalAmount.StringFixed(2))

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/orders/"+order.ID+"/recalculate", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "19.99", decode[OrderResponse](t, body).Order.TotalAmount.StringFixed(2))

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/orders/recent?days=7", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[ListOrdersResponse](t, body).Total)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/orders/recent?days=abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/orders?customer_id="+customer.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[ListOrdersResponse](t, body).Total)

	resp, body = doJSON(t, app, fiber.MethodDelete, "/api/v1/products/"+mouse.ID, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "product_in_use", decode[ErrorResponse](t, body).Error)

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/customers/"+customer.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/orders/"+order.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAPI_CreateOrder_Errors(t *testing.T) {
	app, svc := setupTestApp(t)
	customer, err := svc.CreateCustomer(context.Background(), domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"unknown customer", map[string]any{"customerId": uuid.New().String(), "productIds": []string{"x"}}, "invalid_customer"},
		{"empty products", map[string]any{"customerId": customer.ID, "productIds": []string{}}, "empty_product_list"},
		{"wrong kind", map[string]any{"customerId": customer.ID, "productIds": []string{"Customer:" + customer.ID}}, "invalid_product"},
		{"missing product", map[string]any{"customerId": customer.ID, "productIds": []string{uuid.New().String()}}, "products_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/orders", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, body).Error)
		})
	}
}

// failingPort returns an infrastructure error from every call.
type failingPort struct {
	crm.CRMPort
}

func (failingPort) ListCustomers(context.Context, domain.ListQuery) ([]domain.Customer, error) {
	return nil, errors.New("list-customers service call failed: nats: timeout")
}

func TestAPI_InfrastructureErrorsAreHidden(t *testing.T) {
	m := NewModule(Config{})
	m.port = failingPort{}
	app := m.newApp()

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/customers", nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	errResp := decode[ErrorResponse](t, body)
	assert.Equal(t, "internal_error", errResp.Error)
	assert.NotContains(t, errResp.Message, "nats")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusConflict, statusFor(domain.CodeDuplicateEmail))
	assert.Equal(t, fiber.StatusConflict, statusFor(domain.CodeProductInUse))
	assert.Equal(t, fiber.StatusNotFound, statusFor(domain.CodeOrderNotFound))
	assert.Equal(t, fiber.StatusBadRequest, statusFor(domain.CodeInvalidPrice))
}

func TestParseListQuery(t *testing.T) {
	app := fiber.New()
	var got domain.ListQuery
	app.Get("/", func(c *fiber.Ctx) error {
		got = parseListQuery(c)
		return nil
	})

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/?order_by=-price,name&stock__lt=5&name=Mouse", nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"-price", "name"}, got.OrderBy)
	assert.Equal(t, []domain.Filter{
		{Field: "name", Op: domain.OpExact, Value: "Mouse"},
		{Field: "stock", Op: domain.OpLT, Value: "5"},
	}, got.Filters)
}
