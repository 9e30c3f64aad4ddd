package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetByID retrieves an order by its number.
func (r *GORMOrderRepository) GetByID(orderNo string) (*OrderRecord, error) {
	var record OrderRecord
	if err := r.db.First(&record, "order_no = ?", orderNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderNo, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderNo, err)
	}
	record.Order.Status = record.Status
	return &record, nil
}

// Create stores a new order.
func (r *GORMOrderRepository) Create(record *OrderRecord) error {
	if record.OrderNo == "" {
		record.OrderNo = NewOrderNo()
	}
	record.Order.OrderNo = record.OrderNo
	record.Order.Status = record.Status
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(orderNo string, status string) error {
	res := r.db.Model(&OrderRecord{}).Where("order_no = ?", orderNo).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s for status update: %w", orderNo, ErrNotFound)
	}
	return nil
}
