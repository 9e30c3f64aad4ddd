package repositories

// BasketRepository defines the interface for basket data access.
type BasketRepository interface {
	GetByID(id string) (*BasketRecord, error)
	Create(record *BasketRecord) error
	Update(record *BasketRecord) error
	Delete(id string) error
}
