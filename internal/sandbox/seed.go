package sandbox

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultCatalog is the product set an empty sandbox starts with.
func DefaultCatalog(currency string) []models.Product {
	return []models.Product{
		{ID: "prod-1", Name: "Laptop", Description: "High performance laptop", CategoryID: "electronics", Price: decimal.RequireFromString("1200.00"), Currency: currency, Stock: 10, ImageURL: "/images/laptop.jpg", ImageAlt: "Laptop"},
		{ID: "prod-2", Name: "Keyboard", Description: "Mechanical keyboard", CategoryID: "accessories", Price: decimal.RequireFromString("75.00"), Currency: currency, Stock: 25, ImageURL: "/images/keyboard.jpg", ImageAlt: "Keyboard"},
		{ID: "prod-3", Name: "Mouse", Description: "Ergonomic wireless mouse", CategoryID: "accessories", Price: decimal.RequireFromString("25.00"), Currency: currency, Stock: 50, ImageURL: "/images/mouse.jpg", ImageAlt: "Mouse"},
	}
}

// Seed populates an empty product repository with the default catalog.
func Seed(repo repositories.ProductRepository, currency string, log *zap.Logger) error {
	existing, err := repo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	products := DefaultCatalog(currency)
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", products[i].ID, err)
		}
		log.Debug("seeded product", zap.String("id", products[i].ID), zap.String("name", products[i].Name))
	}
	return nil
}
