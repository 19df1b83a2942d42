package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository provides access to customer, product and order storage.
// A Repository bound to a transaction is obtained through Transaction.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new CRM repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn inside a database transaction. Every statement issued
// through the repository passed to fn uses the transaction handle.
func (r *Repository) Transaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// SavePoint marks a savepoint inside the current transaction.
func (r *Repository) SavePoint(name string) error {
	if err := r.db.SavePoint(name).Error; err != nil {
		return fmt.Errorf("failed to create savepoint %s: %w", name, err)
	}
	return nil
}

// RollbackTo rolls the current transaction back to a savepoint.
func (r *Repository) RollbackTo(name string) error {
	if err := r.db.RollbackTo(name).Error; err != nil {
		return fmt.Errorf("failed to roll back to savepoint %s: %w", name, err)
	}
	return nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// --- customers ---

// CreateCustomer saves a new customer, assigning an ID when missing.
func (r *Repository) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, customer.Email)
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// EmailExists reports whether a customer already uses the normalized email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Customer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// FindCustomerByID retrieves a customer by its ID.
func (r *Repository) FindCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

// ListCustomers retrieves customers matching q.
func (r *Repository) ListCustomers(ctx context.Context, q domain.ListQuery) ([]domain.Customer, error) {
	db, err := applyListQuery(r.db.WithContext(ctx), q, domain.CustomerFields)
	if err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, 0)
	if err := db.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// CountCustomers returns the number of stored customers.
func (r *Repository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Customer{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

// DeleteCustomer removes a customer together with its orders and their
// product associations.
func (r *Repository) DeleteCustomer(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec(
		"DELETE FROM order_products WHERE order_id IN (SELECT id FROM orders WHERE customer_id = ?)", id,
	).Error; err != nil {
		return fmt.Errorf("failed to delete order products: %w", err)
	}
	if err := db.Where("customer_id = ?", id).Delete(&domain.Order{}).Error; err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}
	result := db.Delete(&domain.Customer{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// --- products ---

// CreateProduct saves a new product, assigning an ID when missing.
func (r *Repository) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// FindProductByID retrieves a product by its ID.
func (r *Repository) FindProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// FindProductsByIDs retrieves every product whose ID is in ids. Missing IDs
// are silently skipped; callers compare the result length.
func (r *Repository) FindProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return products, nil
}

// ListProducts retrieves products matching q.
func (r *Repository) ListProducts(ctx context.Context, q domain.ListQuery) ([]domain.Product, error) {
	db, err := applyListQuery(r.db.WithContext(ctx), q, domain.ProductFields)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0)
	if err := db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// CountProducts returns the number of stored products.
func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// CountOrdersForProduct returns how many orders reference the product.
func (r *Repository) CountOrdersForProduct(ctx context.Context, productID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("order_products").Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count product orders: %w", err)
	}
	return count, nil
}

// DeleteProduct removes a product by ID.
func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// FindLowStockProducts retrieves products whose stock is below threshold.
func (r *Repository) FindLowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	if err := r.db.WithContext(ctx).Where("stock < ?", threshold).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find low-stock products: %w", err)
	}
	return products, nil
}

// IncrementStock adds amount to the stock of every product in ids.
func (r *Repository) IncrementStock(ctx context.Context, ids []string, amount int) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id IN ?", ids).
		Update("stock", gorm.Expr("stock + ?", amount)).Error; err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return nil
}

// --- orders ---

// CreateOrder saves the order row without touching its associations.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Customer", "Products").Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// FindOrderByID retrieves an order with its customer and products.
func (r *Repository) FindOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Products").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

// ReplaceOrderProducts makes products the exact association set of order.
func (r *Repository) ReplaceOrderProducts(ctx context.Context, order *domain.Order, products []domain.Product) error {
	if err := r.db.WithContext(ctx).Model(order).Association("Products").Replace(products); err != nil {
		return fmt.Errorf("failed to set order products: %w", err)
	}
	return nil
}

// OrderProducts loads the products currently associated with order.
func (r *Repository) OrderProducts(ctx context.Context, order *domain.Order) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	if err := r.db.WithContext(ctx).Model(order).Association("Products").Find(&products); err != nil {
		return nil, fmt.Errorf("failed to load order products: %w", err)
	}
	return products, nil
}

// UpdateOrderTotal persists only the total_amount column.
func (r *Repository) UpdateOrderTotal(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", order.ID).
		UpdateColumn("total_amount", order.TotalAmount).Error; err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}
	return nil
}

// ListOrders retrieves orders matching q with their customers and products.
func (r *Repository) ListOrders(ctx context.Context, q domain.ListQuery) ([]domain.Order, error) {
	db, err := applyListQuery(r.db.WithContext(ctx), q, domain.OrderFields)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0)
	if err := db.Preload("Customer").Preload("Products").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// FindOrdersSince retrieves orders dated at or after since, oldest first.
func (r *Repository) FindOrdersSince(ctx context.Context, since time.Time) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Products").
		Where("order_date >= ?", since.UTC()).
		Order("order_date").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to find recent orders: %w", err)
	}
	return orders, nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
