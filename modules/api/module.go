package api

import (
	"context"
	"fmt"
	"log"

	"github.com/example/crm-backend/modules/activity"
	"github.com/example/crm-backend/modules/crm"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config configures the HTTP listener.
type Config struct {
	Port int
}

// APIModule is the driving adapter that exposes the CRM over REST.
// It calls into the crm module through the CRMPort interface and reads the
// activity feed through ActivityPort.
type APIModule struct {
	cfg        Config
	app        *fiber.App
	port       crm.CRMPort
	activity   activity.ActivityPort
	middleware []fiber.Handler
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. middleware runs before every route,
// after panic recovery.
func NewModule(cfg Config, middleware ...fiber.Handler) *APIModule {
	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	return &APIModule{cfg: cfg, middleware: middleware}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"crm", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "crm":
		m.port = crm.NewCRMAdapter(container)
	case "activity":
		m.activity = activity.NewActivityAdapter(container)
	}
}

// newApp builds the Fiber application with middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	for _, h := range m.middleware {
		app.Use(h)
	}

	m.setupRoutes(app)
	return app
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.port == nil {
		return fmt.Errorf("crm port dependency not set")
	}
	if m.activity == nil {
		return fmt.Errorf("activity port dependency not set")
	}

	m.app = m.newApp()
	addr := fmt.Sprintf(":%d", m.cfg.Port)

	// Server availability is verified via Health().
	go func() {
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}
