package repositories

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// GORMUnitOfWork runs work inside a database transaction.
type GORMUnitOfWork struct {
	db *gorm.DB
}

func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{db: db}
}

// Do commits when fn returns nil and rolls back otherwise.
func (u *GORMUnitOfWork) Do(ctx context.Context, fn func(repos TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Orders:   NewGORMOrderRepository(tx),
			Products: NewGORMProductRepository(tx),
			Payments: NewGORMPaymentRepository(tx),
		})
	})
}

// MemoryUnitOfWork serializes work over the in-memory repositories. It does
// not roll back writes made before fn fails.
type MemoryUnitOfWork struct {
	repos TxRepositories
	mu    sync.Mutex
}

func NewMemoryUnitOfWork(orders OrderRepository, products ProductRepository, payments PaymentRepository) *MemoryUnitOfWork {
	return &MemoryUnitOfWork{repos: TxRepositories{Orders: orders, Products: products, Payments: payments}}
}

func (u *MemoryUnitOfWork) Do(ctx context.Context, fn func(repos TxRepositories) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(u.repos)
}
