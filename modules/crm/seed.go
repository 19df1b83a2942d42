package crm

import (
	"context"
	"log"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/shopspring/decimal"
)

// SeedResult reports how many rows Seed inserted.
type SeedResult struct {
	Customers int `json:"customers"`
	Products  int `json:"products"`
}

var (
	seedCustomers = []domain.Customer{
		{Name: "Alice", Email: "alice@example.com", Phone: "+1234567890"},
		{Name: "Bob", Email: "bob@example.com", Phone: "123-456-7890"},
	}
	seedProducts = []domain.Product{
		{Name: "Laptop", Price: decimal.RequireFromString("999.99"), Stock: 10},
		{Name: "Mouse", Price: decimal.RequireFromString("19.99"), Stock: 50},
	}
)

// Seed inserts demo customers and products. Each entity type is seeded only
// when its table is empty, so running it twice is harmless.
func (s *Service) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult
	err := s.repo.Transaction(ctx, func(repo *Repository) error {
		count, err := repo.CountCustomers(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			for _, c := range seedCustomers {
				if err := repo.CreateCustomer(ctx, &c); err != nil {
					return err
				}
				result.Customers++
			}
		}

		count, err = repo.CountProducts(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			for _, p := range seedProducts {
				if err := repo.CreateProduct(ctx, &p); err != nil {
					return err
				}
				result.Products++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	log.Printf("[crm] Seeded %d customers and %d products", result.Customers, result.Products)
	return result, nil
}
