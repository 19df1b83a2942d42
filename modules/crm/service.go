package crm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/example/crm-backend/events"
	"github.com/go-monolith/mono"
	"github.com/shopspring/decimal"
)

// Low-stock sweep defaults.
const (
	DefaultLowStockThreshold = 10
	DefaultRestockAmount     = 10
	DefaultRecentOrderDays   = 7
)

// Service implements the CRM workflows on top of the repository. Each
// mutation runs in a single transaction.
type Service struct {
	repo     *Repository
	eventBus mono.EventBus
	now      func() time.Time
}

// NewService creates a new CRM service.
func NewService(repo *Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// SetEventBus enables publishing of domain events after commits.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.eventBus = bus
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// CreateCustomer validates and stores a single customer.
func (s *Service) CreateCustomer(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	var customer *domain.Customer
	err := s.repo.Transaction(ctx, func(repo *Repository) error {
		c, err := s.createCustomer(ctx, repo, in)
		if err != nil {
			return err
		}
		customer = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCustomerCreated(customer)
	return customer, nil
}

// BulkCreateCustomers imports rows independently. A rejected row is rolled
// back to its savepoint and reported as "Row N: reason"; accepted rows commit
// together when the loop ends.
func (s *Service) BulkCreateCustomers(ctx context.Context, rows []domain.CustomerInput) (domain.BulkResult, error) {
	result := domain.BulkResult{
		Customers: make([]domain.Customer, 0, len(rows)),
		Errors:    make([]string, 0),
	}

	err := s.repo.Transaction(ctx, func(repo *Repository) error {
		for i, row := range rows {
			savepoint := fmt.Sprintf("bulk_row_%d", i+1)
			if err := repo.SavePoint(savepoint); err != nil {
				return err
			}

			c, err := s.createCustomer(ctx, repo, row)
			if err != nil {
				if rbErr := repo.RollbackTo(savepoint); rbErr != nil {
					return rbErr
				}
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", i+1, err))
				continue
			}
			result.Customers = append(result.Customers, *c)
		}
		return nil
	})
	if err != nil {
		return domain.BulkResult{}, err
	}

	for i := range result.Customers {
		s.publishCustomerCreated(&result.Customers[i])
	}
	log.Printf("[crm] Bulk import: %d created, %d rejected", len(result.Customers), len(result.Errors))
	return result, nil
}

func (s *Service) createCustomer(ctx context.Context, repo *Repository, in domain.CustomerInput) (*domain.Customer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	email := domain.NormalizeEmail(in.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	exists, err := repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, email)
	}

	if !domain.ValidatePhone(in.Phone) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPhoneFormat, in.Phone)
	}

	customer := &domain.Customer{
		Name:  name,
		Email: email,
		Phone: in.Phone,
	}
	if err := repo.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// CreateProduct validates and stores a product. Stock defaults to 0.
func (s *Service) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	// Validate the stored value so sub-cent prices cannot round to zero.
	price := in.Price.Round(2)
	if err := domain.ValidatePriceStock(price, in.Stock); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:  name,
		Price: price,
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// CreateOrder validates the customer and product references, stores the
// order with its products and computes its total. Nothing is persisted when
// any step fails. Stock levels are not checked.
func (s *Service) CreateOrder(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	var order *domain.Order
	err := s.repo.Transaction(ctx, func(repo *Repository) error {
		customer, err := s.resolveCustomer(ctx, repo, in.CustomerID)
		if errors.Is(err, domain.ErrInvalidReference) {
			return fmt.Errorf("%w: %w", domain.ErrInvalidCustomer, err)
		}
		if err != nil {
			return err
		}

		if len(in.ProductIDs) == 0 {
			return domain.ErrEmptyProductList
		}
		products, err := s.resolveProducts(ctx, repo, in.ProductIDs)
		if err != nil {
			return err
		}

		orderDate := s.now()
		if in.OrderDate != nil && !in.OrderDate.IsZero() {
			orderDate = in.OrderDate.UTC()
		}

		o := &domain.Order{
			CustomerID:  customer.ID,
			TotalAmount: decimal.Zero,
			OrderDate:   orderDate,
		}
		if err := repo.CreateOrder(ctx, o); err != nil {
			return err
		}
		if err := repo.ReplaceOrderProducts(ctx, o, products); err != nil {
			return err
		}
		if err := s.recalculate(ctx, repo, o); err != nil {
			return err
		}

		order, err = repo.FindOrderByID(ctx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderCreated(order)
	log.Printf("[crm] Order %s created for customer %s (total %s)", order.ID, order.CustomerID, order.TotalAmount.StringFixed(2))
	return order, nil
}

// RecalculateTotal recomputes an order's total from the current prices of
// its products. Repeated calls without intervening changes are no-ops.
func (s *Service) RecalculateTotal(ctx context.Context, orderRef string) (*domain.Order, error) {
	var order *domain.Order
	err := s.repo.Transaction(ctx, func(repo *Repository) error {
		o, err := s.resolveOrder(ctx, repo, orderRef)
		if err != nil {
			return err
		}
		if err := s.recalculate(ctx, repo, o); err != nil {
			return err
		}
		order, err = repo.FindOrderByID(ctx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// SetOrderProducts replaces the product set of an order and recomputes its
// total. Product references follow the same rules as CreateOrder.
func (s *Service) SetOrderProducts(ctx context.Context, orderRef string, productRefs []string) (*domain.Order, error) {
	var order *domain.Order
	err := s.repo.Transaction(ctx, func(repo *Repository) error {
		o, err := s.resolveOrder(ctx, repo, orderRef)
		if err != nil {
			return err
		}
		if len(productRefs) == 0 {
			return domain.ErrEmptyProductList
		}
		products, err := s.resolveProducts(ctx, repo, productRefs)
		if err != nil {
			return err
		}
		if err := repo.ReplaceOrderProducts(ctx, o, products); err != nil {
			return err
		}
		if err := s.recalculate(ctx, repo, o); err != nil {
			return err
		}
		order, err = repo.FindOrderByID(ctx, o.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// recalculate sums the current product prices of o and persists the total.
func (s *Service) recalculate(ctx context.Context, repo *Repository, o *domain.Order) error {
	products, err := repo.OrderProducts(ctx, o)
	if err != nil {
		return err
	}
	o.TotalAmount = SumPrices(products)
	return repo.UpdateOrderTotal(ctx, o)
}

// SumPrices returns the decimal sum of product prices rounded to cents.
// An empty slice sums to zero.
func SumPrices(products []domain.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total.Round(2)
}

// GetCustomer returns a customer by raw ID or reference token.
func (s *Service) GetCustomer(ctx context.Context, ref string) (*domain.Customer, error) {
	key, err := domain.DecodeReference(ref, domain.RefCustomer)
	if err != nil {
		return nil, err
	}
	return s.repo.FindCustomerByID(ctx, key)
}

// GetProduct returns a product by raw ID or reference token.
func (s *Service) GetProduct(ctx context.Context, ref string) (*domain.Product, error) {
	key, err := domain.DecodeReference(ref, domain.RefProduct)
	if err != nil {
		return nil, err
	}
	return s.repo.FindProductByID(ctx, key)
}

// GetOrder returns an order by raw ID or reference token.
func (s *Service) GetOrder(ctx context.Context, ref string) (*domain.Order, error) {
	key, err := domain.DecodeReference(ref, domain.RefOrder)
	if err != nil {
		return nil, err
	}
	return s.repo.FindOrderByID(ctx, key)
}

// ListCustomers returns customers matching q.
func (s *Service) ListCustomers(ctx context.Context, q domain.ListQuery) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx, q)
}

// ListProducts returns products matching q.
func (s *Service) ListProducts(ctx context.Context, q domain.ListQuery) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, q)
}

// ListOrders returns orders matching q.
func (s *Service) ListOrders(ctx context.Context, q domain.ListQuery) ([]domain.Order, error) {
	return s.repo.ListOrders(ctx, q)
}

// RecentOrders returns orders dated within the last days days. A
// non-positive days uses the default window.
func (s *Service) RecentOrders(ctx context.Context, days int) ([]domain.Order, error) {
	if days <= 0 {
		days = DefaultRecentOrderDays
	}
	since := s.now().AddDate(0, 0, -days)
	return s.repo.FindOrdersSince(ctx, since)
}

// UpdateLowStockProducts adds increment to the stock of every product below
// threshold and returns the updated products.
func (s *Service) UpdateLowStockProducts(ctx context.Context, threshold, increment int) ([]domain.Product, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	if increment <= 0 {
		increment = DefaultRestockAmount
	}

	var updated []domain.Product
	err := s.repo.Transaction(ctx, func(repo *Repository) error {
		low, err := repo.FindLowStockProducts(ctx, threshold)
		if err != nil {
			return err
		}
		ids := make([]string, len(low))
		for i, p := range low {
			ids[i] = p.ID
		}
		if err := repo.IncrementStock(ctx, ids, increment); err != nil {
			return err
		}
		updated, err = repo.FindProductsByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(updated) > 0 {
		s.publishProductsRestocked(updated)
	}
	log.Printf("[crm] Low-stock sweep updated %d products", len(updated))
	return updated, nil
}

// DeleteProduct removes a product that no order references.
func (s *Service) DeleteProduct(ctx context.Context, ref string) error {
	key, err := domain.DecodeReference(ref, domain.RefProduct)
	if err != nil {
		return err
	}
	return s.repo.Transaction(ctx, func(repo *Repository) error {
		if _, err := repo.FindProductByID(ctx, key); err != nil {
			return err
		}
		count, err := repo.CountOrdersForProduct(ctx, key)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %d orders", domain.ErrProductInUse, count)
		}
		return repo.DeleteProduct(ctx, key)
	})
}

// DeleteCustomer removes a customer and all of its orders.
func (s *Service) DeleteCustomer(ctx context.Context, ref string) error {
	key, err := domain.DecodeReference(ref, domain.RefCustomer)
	if err != nil {
		return err
	}
	return s.repo.Transaction(ctx, func(repo *Repository) error {
		return repo.DeleteCustomer(ctx, key)
	})
}

func (s *Service) resolveCustomer(ctx context.Context, repo *Repository, ref string) (*domain.Customer, error) {
	key, err := domain.DecodeReference(ref, domain.RefCustomer)
	if err != nil {
		return nil, err
	}
	customer, err := repo.FindCustomerByID(ctx, key)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, fmt.Errorf("%w: customer %s does not exist", domain.ErrInvalidReference, key)
	}
	return customer, err
}

func (s *Service) resolveOrder(ctx context.Context, repo *Repository, ref string) (*domain.Order, error) {
	key, err := domain.DecodeReference(ref, domain.RefOrder)
	if err != nil {
		return nil, err
	}
	return repo.FindOrderByID(ctx, key)
}

// resolveProducts decodes every reference before touching the store and
// fails as a whole when any product is missing.
func (s *Service) resolveProducts(ctx context.Context, repo *Repository, refs []string) ([]domain.Product, error) {
	keys := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		key, err := domain.DecodeReference(ref, domain.RefProduct)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidProduct, err)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}

	products, err := repo.FindProductsByIDs(ctx, keys)
	if err != nil {
		return nil, err
	}
	if len(products) < len(keys) {
		found := make(map[string]bool, len(products))
		for _, p := range products {
			found[p.ID] = true
		}
		missing := make([]string, 0, len(keys)-len(products))
		for _, k := range keys {
			if !found[k] {
				missing = append(missing, k)
			}
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrProductsNotFound, strings.Join(missing, ", "))
	}
	return products, nil
}

func (s *Service) publishCustomerCreated(c *domain.Customer) {
	if s.eventBus == nil {
		return
	}
	event := events.CustomerCreatedEvent{
		CustomerID: c.ID,
		Name:       c.Name,
		Email:      c.Email,
		CreatedAt:  c.CreatedAt,
	}
	if err := events.CustomerCreatedV1.Publish(s.eventBus, event, nil); err != nil {
		log.Printf("[crm] Warning: failed to publish CustomerCreated event for customer %s: %v", c.ID, err)
	}
}

func (s *Service) publishOrderCreated(o *domain.Order) {
	if s.eventBus == nil {
		return
	}
	event := events.OrderCreatedEvent{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		ProductIDs:  o.ProductIDs(),
		TotalAmount: o.TotalAmount.StringFixed(2),
		OrderDate:   o.OrderDate,
	}
	if err := events.OrderCreatedV1.Publish(s.eventBus, event, nil); err != nil {
		log.Printf("[crm] Warning: failed to publish OrderCreated event for order %s: %v", o.ID, err)
	}
}

func (s *Service) publishProductsRestocked(products []domain.Product) {
	if s.eventBus == nil {
		return
	}
	event := events.ProductsRestockedEvent{
		Products:    make([]events.RestockedProduct, len(products)),
		RestockedAt: s.now(),
	}
	for i, p := range products {
		event.Products[i] = events.RestockedProduct{ProductID: p.ID, Name: p.Name, Stock: p.Stock}
	}
	if err := events.ProductsRestockedV1.Publish(s.eventBus, event, nil); err != nil {
		log.Printf("[crm] Warning: failed to publish ProductsRestocked event: %v", err)
	}
}
