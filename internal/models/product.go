package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product known to the sandbox commerce backend.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	CategoryID  string          `json:"category_id" gorm:"index;type:varchar(64)"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Currency    string          `json:"currency" gorm:"type:varchar(3)"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"image_url"`
	ImageAlt    string          `json:"image_alt"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
