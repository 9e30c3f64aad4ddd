package repositories

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]OrderRecord
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]OrderRecord),
	}
}

// GetByID returns an order by its number.
func (r *MockOrderRepository) GetByID(orderNo string) (*OrderRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.orders[orderNo]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderNo, ErrNotFound)
	}
	return &record, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(record *OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.OrderNo == "" {
		record.OrderNo = NewOrderNo()
	}
	record.Order.OrderNo = record.OrderNo
	record.Order.Status = record.Status
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	r.orders[record.OrderNo] = *record
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(orderNo string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.orders[orderNo]
	if !ok {
		return fmt.Errorf("order %s for status update: %w", orderNo, ErrNotFound)
	}
	record.Status = status
	record.Order.Status = status
	record.UpdatedAt = time.Now()
	r.orders[orderNo] = record
	return nil
}

// NewOrderNo returns a short, human readable order number.
func NewOrderNo() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
