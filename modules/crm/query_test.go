package crm

import (
	"context"
	"testing"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productNames(products []domain.Product) []string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return names
}

func TestListProducts_OrderingAndFilters(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	mustProduct(t, svc, "Laptop", "999.99", 10)
	mustProduct(t, svc, "Mouse", "19.99", 50)
	mustProduct(t, svc, "Lap Desk", "45.00", 3)

	byPrice, err := svc.ListProducts(ctx, domain.ListQuery{OrderBy: []string{"-price"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Laptop", "Lap Desk", "Mouse"}, productNames(byPrice))

	cheap, err := svc.ListProducts(ctx, domain.ListQuery{
		OrderBy: []string{"name"},
		Filters: []domain.Filter{{Field: "price", Op: domain.OpLT, Value: "100"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lap Desk", "Mouse"}, productNames(cheap))

	lap, err := svc.ListProducts(ctx, domain.ListQuery{
		OrderBy: []string{"stock"},
		Filters: []domain.Filter{{Field: "name", Op: domain.OpIContains, Value: "LAP"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lap Desk", "Laptop"}, productNames(lap))

	in, err := svc.ListProducts(ctx, domain.ListQuery{
		OrderBy: []string{"name"},
		Filters: []domain.Filter{{Field: "stock", Op: domain.OpIn, Value: "3,50"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lap Desk", "Mouse"}, productNames(in))

	exact, err := svc.ListProducts(ctx, domain.ListQuery{
		Filters: []domain.Filter{{Field: "name", Op: domain.OpIExact, Value: "mouse"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mouse"}, productNames(exact))
}

func TestListProducts_LikeWildcardsAreLiteral(t *testing.T) {
	svc, _ := setupTestService(t)
	mustProduct(t, svc, "100% Cotton", "9.99", 1)
	mustProduct(t, svc, "Cotton", "4.99", 1)

	products, err := svc.ListProducts(context.Background(), domain.ListQuery{
		Filters: []domain.Filter{{Field: "name", Op: domain.OpIContains, Value: "0%"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Cotton"}, productNames(products))
}

func TestListCustomers_Filters(t *testing.T) {
	svc, _ := setupTestService(t)
	mustCustomer(t, svc, "Alice", "alice@example.com")
	mustCustomer(t, svc, "Bob", "bob@example.com")

	customers, err := svc.ListCustomers(context.Background(), domain.ListQuery{
		Filters: []domain.Filter{{Field: "email", Value: "bob@example.com"}},
	})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Bob", customers[0].Name)

	_, err = svc.ListCustomers(context.Background(), domain.ListQuery{OrderBy: []string{"-password"}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestListOrders_FilterByTotal(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	customer := mustCustomer(t, svc, "Alice", "alice@example.com")
	laptop := mustProduct(t, svc, "Laptop", "999.99", 10)
	mouse := mustProduct(t, svc, "Mouse", "19.99", 50)

	_, err := svc.CreateOrder(ctx, domain.OrderInput{CustomerID: customer.ID, ProductIDs: []string{laptop.ID}})
	require.NoError(t, err)
	small, err := svc.CreateOrder(ctx, domain.OrderInput{CustomerID: customer.ID, ProductIDs: []string{mouse.ID}})
	require.NoError(t, err)

	orders, err := svc.ListOrders(ctx, domain.ListQuery{
		Filters: []domain.Filter{{Field: "total_amount", Op: domain.OpLTE, Value: "20"}},
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, small.ID, orders[0].ID)
	assert.Len(t, orders[0].Products, 1)
}
