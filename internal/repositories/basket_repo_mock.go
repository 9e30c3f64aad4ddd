package repositories

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockBasketRepository is an in-memory implementation of BasketRepository.
type MockBasketRepository struct {
	baskets map[string]BasketRecord
	mu      sync.RWMutex
}

// NewMockBasketRepository creates a new instance of MockBasketRepository.
func NewMockBasketRepository() *MockBasketRepository {
	return &MockBasketRepository{
		baskets: make(map[string]BasketRecord),
	}
}

// GetByID returns a basket by its ID.
func (r *MockBasketRepository) GetByID(id string) (*BasketRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.baskets[id]
	if !ok {
		return nil, fmt.Errorf("basket with ID %s: %w", id, ErrNotFound)
	}
	return &record, nil
}

// Create adds a new basket.
func (r *MockBasketRepository) Create(record *BasketRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.Basket.BasketID = record.ID
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	r.baskets[record.ID] = *record
	return nil
}

// Update replaces an existing basket.
func (r *MockBasketRepository) Update(record *BasketRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.baskets[record.ID]
	if !ok {
		return fmt.Errorf("basket with ID %s for update: %w", record.ID, ErrNotFound)
	}
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = time.Now()
	r.baskets[record.ID] = *record
	return nil
}

// Delete removes a basket by its ID.
func (r *MockBasketRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.baskets[id]; !ok {
		return fmt.Errorf("basket with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.baskets, id)
	return nil
}
