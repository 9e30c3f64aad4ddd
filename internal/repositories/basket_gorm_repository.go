package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMBasketRepository is a GORM implementation of BasketRepository.
type GORMBasketRepository struct {
	db *gorm.DB
}

// NewGORMBasketRepository creates a new instance of GORMBasketRepository.
func NewGORMBasketRepository(db *gorm.DB) *GORMBasketRepository {
	return &GORMBasketRepository{db: db}
}

// GetByID retrieves a basket by its ID.
func (r *GORMBasketRepository) GetByID(id string) (*BasketRecord, error) {
	var record BasketRecord
	if err := r.db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("basket with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get basket by ID %s: %w", id, err)
	}
	return &record, nil
}

// Create stores a new basket. The basket document id follows the record id.
func (r *GORMBasketRepository) Create(record *BasketRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.Basket.BasketID = record.ID
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create basket: %w", err)
	}
	return nil
}

// Update replaces the stored basket document.
func (r *GORMBasketRepository) Update(record *BasketRecord) error {
	res := r.db.Model(record).Select("*").Omit("created_at").Updates(record)
	if res.Error != nil {
		return fmt.Errorf("failed to update basket: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("basket with ID %s for update: %w", record.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a basket by its ID.
func (r *GORMBasketRepository) Delete(id string) error {
	res := r.db.Delete(&BasketRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete basket: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("basket with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}
