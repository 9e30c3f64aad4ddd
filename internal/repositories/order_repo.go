package repositories

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetByID(orderNo string) (*OrderRecord, error)
	Create(record *OrderRecord) error
	UpdateStatus(orderNo string, status string) error
}
