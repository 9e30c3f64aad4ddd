package repositories

import (
	"maps"
	"sync"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// Repositories is the set of repositories one unit of work writes through.
type Repositories struct {
	Baskets  BasketRepository
	Orders   OrderRepository
	Products ProductRepository
}

// Store hands out repositories and runs units of work across them.
type Store interface {
	Repositories() Repositories
	// Transaction runs fn against repositories bound to one transaction.
	// An error from fn discards every write fn made.
	Transaction(fn func(Repositories) error) error
}

// GORMStore binds the GORM repositories to one database.
type GORMStore struct {
	db *gorm.DB
}

func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

func gormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Baskets:  NewGORMBasketRepository(db),
		Orders:   NewGORMOrderRepository(db),
		Products: NewGORMProductRepository(db),
	}
}

func (s *GORMStore) Repositories() Repositories {
	return gormRepositories(s.db)
}

func (s *GORMStore) Transaction(fn func(Repositories) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(gormRepositories(tx))
	})
}

// MockStore groups the in-memory repositories. Transactions are serialized
// and roll back by restoring a snapshot taken before fn ran.
type MockStore struct {
	Baskets  *MockBasketRepository
	Orders   *MockOrderRepository
	Products *MockProductRepository
	mu       sync.Mutex
}

func NewMockStore() *MockStore {
	return &MockStore{
		Baskets:  NewMockBasketRepository(),
		Orders:   NewMockOrderRepository(),
		Products: NewMockProductRepository(),
	}
}

func (s *MockStore) Repositories() Repositories {
	return Repositories{Baskets: s.Baskets, Orders: s.Orders, Products: s.Products}
}

func (s *MockStore) Transaction(fn func(Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	baskets, orders, products := s.Baskets.snapshot(), s.Orders.snapshot(), s.Products.snapshot()
	if err := fn(s.Repositories()); err != nil {
		s.Baskets.restore(baskets)
		s.Orders.restore(orders)
		s.Products.restore(products)
		return err
	}
	return nil
}

func (r *MockBasketRepository) snapshot() map[string]BasketRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.baskets)
}

func (r *MockBasketRepository) restore(baskets map[string]BasketRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baskets = baskets
}

func (r *MockOrderRepository) snapshot() map[string]OrderRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.orders)
}

func (r *MockOrderRepository) restore(orders map[string]OrderRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = orders
}

func (r *MockProductRepository) snapshot() map[string]models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.products)
}

func (r *MockProductRepository) restore(products map[string]models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
}
