package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/crm-backend/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// Config configures the CRM module's store.
type Config struct {
	DBPath string
	Debug  bool
}

// CRMModule owns the customer, product and order store and exposes the CRM
// workflows as request-reply services.
type CRMModule struct {
	cfg      Config
	db       *gorm.DB
	service  *Service
	eventBus mono.EventBus
}

// Compile-time interface checks.
var _ mono.Module = (*CRMModule)(nil)
var _ mono.ServiceProviderModule = (*CRMModule)(nil)
var _ mono.EventEmitterModule = (*CRMModule)(nil)
var _ mono.HealthCheckableModule = (*CRMModule)(nil)

// NewModule creates a new CRMModule.
func NewModule(cfg Config) *CRMModule {
	if cfg.DBPath == "" {
		cfg.DBPath = "crm.db"
	}
	return &CRMModule{cfg: cfg}
}

// Name returns the module name.
func (m *CRMModule) Name() string {
	return "crm"
}

// SetEventBus receives the framework event bus.
func (m *CRMModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events published by this module.
func (m *CRMModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.CustomerCreatedV1.ToBase(),
		events.OrderCreatedV1.ToBase(),
		events.ProductsRestockedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
// Service names are prefixed with "services.crm." by the framework.
func (m *CRMModule) RegisterServices(container mono.ServiceContainer) error {
	registrations := []struct {
		name     string
		register func() error
	}{
		{"create-customer", func() error {
			return helper.RegisterTypedRequestReplyService(container, "create-customer", json.Unmarshal, json.Marshal, m.createCustomer)
		}},
		{"bulk-create-customers", func() error {
			return helper.RegisterTypedRequestReplyService(container, "bulk-create-customers", json.Unmarshal, json.Marshal, m.bulkCreateCustomers)
		}},
		{"create-product", func() error {
			return helper.RegisterTypedRequestReplyService(container, "create-product", json.Unmarshal, json.Marshal, m.createProduct)
		}},
		{"create-order", func() error {
			return helper.RegisterTypedRequestReplyService(container, "create-order", json.Unmarshal, json.Marshal, m.createOrder)
		}},
		{"recalculate-order-total", func() error {
			return helper.RegisterTypedRequestReplyService(container, "recalculate-order-total", json.Unmarshal, json.Marshal, m.recalculateOrderTotal)
		}},
		{"set-order-products", func() error {
			return helper.RegisterTypedRequestReplyService(container, "set-order-products", json.Unmarshal, json.Marshal, m.setOrderProducts)
		}},
		{"get-customer", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-customer", json.Unmarshal, json.Marshal, m.getCustomer)
		}},
		{"get-product", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-product", json.Unmarshal, json.Marshal, m.getProduct)
		}},
		{"get-order", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-order", json.Unmarshal, json.Marshal, m.getOrder)
		}},
		{"list-customers", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-customers", json.Unmarshal, json.Marshal, m.listCustomers)
		}},
		{"list-products", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-products", json.Unmarshal, json.Marshal, m.listProducts)
		}},
		{"list-orders", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-orders", json.Unmarshal, json.Marshal, m.listOrders)
		}},
		{"recent-orders", func() error {
			return helper.RegisterTypedRequestReplyService(container, "recent-orders", json.Unmarshal, json.Marshal, m.recentOrders)
		}},
		{"update-low-stock-products", func() error {
			return helper.RegisterTypedRequestReplyService(container, "update-low-stock-products", json.Unmarshal, json.Marshal, m.updateLowStockProducts)
		}},
		{"delete-product", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-product", json.Unmarshal, json.Marshal, m.deleteProduct)
		}},
		{"delete-customer", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-customer", json.Unmarshal, json.Marshal, m.deleteCustomer)
		}},
	}

	for _, r := range registrations {
		if err := r.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", r.name, err)
		}
	}

	log.Printf("[crm] Registered %d services under services.crm.*", len(registrations))
	return nil
}

// Start opens the database, runs migrations and builds the service.
func (m *CRMModule) Start(_ context.Context) error {
	log.Printf("[crm] Connecting to SQLite database: %s", m.cfg.DBPath)

	db, err := OpenDatabase(m.cfg.DBPath, m.cfg.Debug)
	if err != nil {
		return err
	}
	m.db = db

	m.service = NewService(NewRepository(db))
	if m.eventBus != nil {
		m.service.SetEventBus(m.eventBus)
	} else {
		log.Println("[crm] Warning: eventBus not set, events will not be published")
	}

	log.Println("[crm] Module started successfully")
	return nil
}

// Stop closes the database connection.
func (m *CRMModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}
	log.Println("[crm] Closing database connection...")
	if err := CloseDatabase(m.db); err != nil {
		return err
	}
	log.Println("[crm] Database connection closed")
	return nil
}

// Health reports whether the database answers pings.
func (m *CRMModule) Health(ctx context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}
	if err := m.service.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": "sqlite",
			"path":   m.cfg.DBPath,
		},
	}
}
