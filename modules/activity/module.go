package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/crm-backend/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

const defaultCapacity = 500

// Entry is one recorded CRM activity.
type Entry struct {
	Kind      string    `json:"kind"`
	SubjectID string    `json:"subject_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityModule keeps a bounded feed of recent CRM activity built from
// domain events.
type ActivityModule struct {
	entries  []Entry
	capacity int
	mu       sync.RWMutex
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)
var _ ActivityPort = (*ActivityModule)(nil)

// NewModule creates an ActivityModule that keeps at most capacity entries.
func NewModule(capacity int) *ActivityModule {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &ActivityModule{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

// RegisterServices exposes the feed as services.activity.recent.
func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent", json.Unmarshal, json.Marshal, m.recent,
	); err != nil {
		return fmt.Errorf("failed to register recent service: %w", err)
	}
	log.Println("[activity] Registered services: recent")
	return nil
}

func (m *ActivityModule) recent(ctx context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	entries, err := m.Recent(ctx, req.Limit)
	if err != nil {
		return RecentResponse{}, err
	}
	return RecentResponse{Entries: entries}, nil
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.CustomerCreatedV1, m.handleCustomerCreated, m); err != nil {
		return fmt.Errorf("failed to register CustomerCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.OrderCreatedV1, m.handleOrderCreated, m); err != nil {
		return fmt.Errorf("failed to register OrderCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ProductsRestockedV1, m.handleProductsRestocked, m); err != nil {
		return fmt.Errorf("failed to register ProductsRestocked consumer: %w", err)
	}

	log.Printf("[activity] Registered event consumers: CustomerCreated, OrderCreated, ProductsRestocked")
	return nil
}

func (m *ActivityModule) handleCustomerCreated(_ context.Context, event events.CustomerCreatedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Customer created: %s <%s>", event.CustomerID, event.Email)
	m.record("customer_created", event.CustomerID, fmt.Sprintf("Customer %s <%s> joined", event.Name, event.Email))
	return nil
}

func (m *ActivityModule) handleOrderCreated(_ context.Context, event events.OrderCreatedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Order created: %s for customer %s", event.OrderID, event.CustomerID)
	m.record("order_created", event.OrderID, fmt.Sprintf("Order of %d products totalling %s", len(event.ProductIDs), event.TotalAmount))
	return nil
}

func (m *ActivityModule) handleProductsRestocked(_ context.Context, event events.ProductsRestockedEvent, _ *mono.Msg) error {
	log.Printf("[activity] Products restocked: %d", len(event.Products))
	for _, p := range event.Products {
		m.record("product_restocked", p.ProductID, fmt.Sprintf("%s restocked to %d", p.Name, p.Stock))
	}
	return nil
}

// record appends an entry, dropping the oldest once the feed is full.
func (m *ActivityModule) record(kind, subjectID, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == m.capacity {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, Entry{
		Kind:      kind,
		SubjectID: subjectID,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns the whole feed.
func (m *ActivityModule) Recent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]Entry, n)
	for i := range result {
		result[i] = m.entries[len(m.entries)-1-i]
	}
	return result, nil
}

func (m *ActivityModule) Start(_ context.Context) error {
	log.Println("[activity] Module started - listening for crm events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	log.Println("[activity] Module stopped")
	return nil
}
