package repositories

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository keeps the catalog in memory.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns the catalog ordered by ID.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(r.products))
	catalog := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		catalog = append(catalog, r.products[id])
	}
	return catalog, nil
}

func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// ReserveStock checks every line before it lowers any stock.
func (r *MockProductRepository) ReserveStock(lines []StockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	requested := make(map[string]int, len(lines))
	for _, line := range lines {
		requested[line.ProductID] += line.Quantity
	}
	for _, line := range lines {
		product, ok := r.products[line.ProductID]
		if !ok {
			return fmt.Errorf("product with ID %s for reservation: %w", line.ProductID, ErrNotFound)
		}
		if product.Stock < requested[line.ProductID] {
			return &StockError{ProductID: product.ID, Name: product.Name, Requested: requested[line.ProductID], Available: product.Stock}
		}
	}
	for id, qty := range requested {
		product := r.products[id]
		product.Stock -= qty
		r.products[id] = product
	}
	return nil
}
