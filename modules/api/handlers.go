package api

import (
	"strconv"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/gofiber/fiber/v2"
)

const defaultActivityLimit = 50

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	api := app.Group("/api/v1")
	api.Get("/hello", m.hello)
	api.Get("/activity", m.recentActivity)

	customers := api.Group("/customers")
	customers.Post("/", m.createCustomer)
	customers.Post("/bulk", m.bulkCreateCustomers)
	customers.Get("/", m.listCustomers)
	customers.Get("/:id", m.getCustomer)
	customers.Delete("/:id", m.deleteCustomer)

	products := api.Group("/products")
	products.Post("/", m.createProduct)
	products.Post("/restock", m.restockProducts)
	products.Get("/", m.listProducts)
	products.Get("/:id", m.getProduct)
	products.Delete("/:id", m.deleteProduct)

	orders := api.Group("/orders")
	orders.Post("/", m.createOrder)
	orders.Get("/", m.listOrders)
	orders.Get("/recent", m.recentOrders)
	orders.Get("/:id", m.getOrder)
	orders.Put("/:id/products", m.setOrderProducts)
	orders.Post("/:id/recalculate", m.recalculateOrder)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"port":   m.cfg.Port,
		},
	})
}

// hello handles GET /api/v1/hello.
func (m *APIModule) hello(c *fiber.Ctx) error {
	return c.JSON(HelloResponse{Hello: "Hello, GraphQL!"})
}

// recentActivity handles GET /api/v1/activity?limit=50.
func (m *APIModule) recentActivity(c *fiber.Ctx) error {
	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return badRequest(c, "limit must be a positive integer")
		}
		limit = n
	}

	entries, err := m.activity.Recent(c.Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ActivityResponse{Entries: entries, Total: len(entries)})
}

// createCustomer handles POST /api/v1/customers.
func (m *APIModule) createCustomer(c *fiber.Ctx) error {
	var req domain.CustomerInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	customer, err := m.port.CreateCustomer(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(CustomerMutationResponse{
		Customer: customer,
		Message:  "Customer created successfully",
		OK:       true,
	})
}

// bulkCreateCustomers handles POST /api/v1/customers/bulk.
func (m *APIModule) bulkCreateCustomers(c *fiber.Ctx) error {
	var req BulkCreateCustomersRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := m.port.BulkCreateCustomers(c.Context(), req.Input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(BulkCreateCustomersResponse{
		Customers: result.Customers,
		Errors:    result.Errors,
	})
}

// listCustomers handles GET /api/v1/customers.
func (m *APIModule) listCustomers(c *fiber.Ctx) error {
	customers, err := m.port.ListCustomers(c.Context(), parseListQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ListCustomersResponse{Customers: customers, Total: len(customers)})
}

// getCustomer handles GET /api/v1/customers/:id.
func (m *APIModule) getCustomer(c *fiber.Ctx) error {
	customer, err := m.port.GetCustomer(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(CustomerResponse{Customer: customer})
}

// deleteCustomer handles DELETE /api/v1/customers/:id.
func (m *APIModule) deleteCustomer(c *fiber.Ctx) error {
	if err := m.port.DeleteCustomer(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// createProduct handles POST /api/v1/products.
func (m *APIModule) createProduct(c *fiber.Ctx) error {
	var req domain.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	product, err := m.port.CreateProduct(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ProductResponse{Product: product})
}

// restockProducts handles POST /api/v1/products/restock.
func (m *APIModule) restockProducts(c *fiber.Ctx) error {
	var req RestockRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	products, err := m.port.UpdateLowStockProducts(c.Context(), req.Threshold, req.Increment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ListProductsResponse{Products: products, Total: len(products)})
}

// listProducts handles GET /api/v1/products.
func (m *APIModule) listProducts(c *fiber.Ctx) error {
	products, err := m.port.ListProducts(c.Context(), parseListQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ListProductsResponse{Products: products, Total: len(products)})
}

// getProduct handles GET /api/v1/products/:id.
func (m *APIModule) getProduct(c *fiber.Ctx) error {
	product, err := m.port.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ProductResponse{Product: product})
}

// deleteProduct handles DELETE /api/v1/products/:id.
func (m *APIModule) deleteProduct(c *fiber.Ctx) error {
	if err := m.port.DeleteProduct(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// createOrder handles POST /api/v1/orders.
func (m *APIModule) createOrder(c *fiber.Ctx) error {
	var req domain.OrderInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	order, err := m.port.CreateOrder(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(OrderResponse{Order: order})
}

// listOrders handles GET /api/v1/orders.
func (m *APIModule) listOrders(c *fiber.Ctx) error {
	orders, err := m.port.ListOrders(c.Context(), parseListQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ListOrdersResponse{Orders: orders, Total: len(orders)})
}

// recentOrders handles GET /api/v1/orders/recent?days=7.
func (m *APIModule) recentOrders(c *fiber.Ctx) error {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return badRequest(c, "days must be a non-negative integer")
		}
		days = n
	}

	orders, err := m.port.RecentOrders(c.Context(), days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ListOrdersResponse{Orders: orders, Total: len(orders)})
}

// getOrder handles GET /api/v1/orders/:id.
func (m *APIModule) getOrder(c *fiber.Ctx) error {
	order, err := m.port.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(OrderResponse{Order: order})
}

// setOrderProducts handles PUT /api/v1/orders/:id/products.
func (m *APIModule) setOrderProducts(c *fiber.Ctx) error {
	var req SetOrderProductsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	order, err := m.port.SetOrderProducts(c.Context(), c.Params("id"), req.ProductIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(OrderResponse{Order: order})
}

// recalculateOrder handles POST /api/v1/orders/:id/recalculate.
func (m *APIModule) recalculateOrder(c *fiber.Ctx) error {
	order, err := m.port.RecalculateTotal(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(OrderResponse{Order: order})
}
