package activity

import (
	"context"
	"testing"

	"github.com/example/crm-backend/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityModule_RecordsEvents(t *testing.T) {
	m := NewModule(10)
	ctx := context.Background()

	require.NoError(t, m.handleCustomerCreated(ctx, events.CustomerCreatedEvent{
		CustomerID: "c1", Name: "Alice", Email: "alice@example.com",
	}, nil))
	require.NoError(t, m.handleOrderCreated(ctx, events.OrderCreatedEvent{
		OrderID: "o1", CustomerID: "c1", ProductIDs: []string{"p1", "p2"}, TotalAmount: "1019.98",
	}, nil))
	require.NoError(t, m.handleProductsRestocked(ctx, events.ProductsRestockedEvent{
		Products: []events.RestockedProduct{{ProductID: "p3", Name: "Cable", Stock: 15}},
	}, nil))

	entries, err := m.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "product_restocked", entries[0].Kind)
	assert.Equal(t, "p3", entries[0].SubjectID)
	assert.Equal(t, "Cable restocked to 15", entries[0].Message)
	assert.Equal(t, "Order of 2 products totalling 1019.98", entries[1].Message)
	assert.Equal(t, "customer_created", entries[2].Kind)
	assert.Equal(t, "Customer Alice <alice@example.com> joined", entries[2].Message)
}

func TestActivityModule_DropsOldestWhenFull(t *testing.T) {
	m := NewModule(2)
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, m.handleCustomerCreated(ctx, events.CustomerCreatedEvent{CustomerID: id}, nil))
	}

	entries, err := m.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c3", entries[0].SubjectID)
	assert.Equal(t, "c2", entries[1].SubjectID)
}

func TestActivityModule_RecentHonoursLimit(t *testing.T) {
	m := NewModule(10)
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, m.handleCustomerCreated(ctx, events.CustomerCreatedEvent{CustomerID: id}, nil))
	}

	resp, err := m.recent(ctx, RecentRequest{Limit: 2}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "c3", resp.Entries[0].SubjectID)
	assert.Equal(t, "c2", resp.Entries[1].SubjectID)
}
