package repositories

import (
	"context"

	"harvest/internal/models"
)

// CartRepository defines the interface for cart item access. Every method is
// scoped to the owning user.
type CartRepository interface {
	Items(ctx context.Context, userID string) ([]models.CartItem, error)
	GetItem(ctx context.Context, userID, itemID string) (*models.CartItem, error)
	// FindItem returns the line for the product and size, or not found.
	FindItem(ctx context.Context, userID, productID, size string) (*models.CartItem, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	// RemoveProduct drops every line for the product and size.
	RemoveProduct(ctx context.Context, userID, productID, size string) error
	Clear(ctx context.Context, userID string) error
}
