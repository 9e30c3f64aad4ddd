package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"
)

// ErrInsufficientStock means a reservation asked for more units than are left.
var ErrInsufficientStock = errors.New("insufficient stock")

// StockLine is one product quantity to take out of stock.
type StockLine struct {
	ProductID string
	Quantity  int
}

// StockError names the product a reservation failed on.
type StockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("product %s: %d requested, %d available", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// ProductRepository is the catalog the sandbox sells from.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	// ReserveStock takes every line out of stock, or none of them.
	ReserveStock(lines []StockLine) error
}
