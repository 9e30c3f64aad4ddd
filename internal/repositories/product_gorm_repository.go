package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository reads and reserves catalog rows with GORM.
type GORMProductRepository struct {
	db *gorm.DB
}

func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var catalog []models.Product
	if err := r.db.Order("id").Find(&catalog).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return catalog, nil
}

func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	return findProduct(r.db, id)
}

func findProduct(db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// ReserveStock lowers stock with one guarded UPDATE per line inside a
// transaction, so a short line rolls back the lines before it. Inside an
// outer transaction this becomes a savepoint.
func (r *GORMProductRepository) ReserveStock(lines []StockLine) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve product %s: %w", line.ProductID, res.Error)
			}
			if res.RowsAffected == 1 {
				continue
			}

			product, err := findProduct(tx, line.ProductID)
			if err != nil {
				return err
			}
			return &StockError{ProductID: product.ID, Name: product.Name, Requested: line.Quantity, Available: product.Stock}
		}
		return nil
	})
}
