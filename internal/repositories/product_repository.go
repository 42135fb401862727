package repositories

import (
	"context"

	"harvest/internal/models"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Search string
	Page
}

// StockLedger is the product's available-quantity counter.
type StockLedger interface {
	// CheckAvailable reports whether at least amount units are in stock.
	CheckAvailable(ctx context.Context, productID string, amount int) (bool, error)
	// DecrementStock removes amount units, flooring the stock at zero, and returns the new stock.
	DecrementStock(ctx context.Context, productID string, amount int) (int, error)
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	StockLedger
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
