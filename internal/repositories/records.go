package repositories

import (
	"errors"
	"time"

	"storefront/internal/commerce"
)

// ErrNotFound is wrapped by every repository lookup that matches no row.
var ErrNotFound = errors.New("record not found")

// BasketRecord stores an open basket document of the sandbox backend.
type BasketRecord struct {
	ID        string          `gorm:"primaryKey;type:varchar(64)"`
	OwnerID   string          `gorm:"index;type:varchar(64)"`
	Basket    commerce.Basket `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderRecord stores a placed order document.
type OrderRecord struct {
	OrderNo   string         `gorm:"primaryKey;type:varchar(32)"`
	OwnerID   string         `gorm:"index;type:varchar(64)"`
	Status    string         `gorm:"type:varchar(32)"`
	Order     commerce.Order `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
