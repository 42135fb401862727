package services

import (
	"context"
	"fmt"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/repositories"
)

// CartService manages the per-user cart.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetCart returns the user's cart with product details attached. Lines whose
// product was deleted are returned without details.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if product, err := s.products.GetByID(ctx, items[i].ProductID); err == nil {
			items[i].Product = product
		}
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return &models.Cart{UserID: userID, Items: items}, nil
}

// AddItem adds quantity units of a product size, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, userID, productID, size string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, apperror.Validationf("quantity must be a positive integer")
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if _, ok := product.SizeByKey(size); !ok {
		return nil, apperror.Validationf("Invalid size for this product")
	}

	existing, err := s.carts.FindItem(ctx, userID, productID, size)
	switch {
	case err == nil:
		if err := s.carts.UpdateQuantity(ctx, userID, existing.ID, existing.Quantity+quantity); err != nil {
			return nil, err
		}
	case isNotFound(err):
		item := &models.CartItem{UserID: userID, ProductID: productID, Size: size, Quantity: quantity}
		if err := s.carts.AddItem(ctx, item); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to look up cart item: %w", err)
	}
	return s.GetCart(ctx, userID)
}

// UpdateQuantity sets a line's quantity. Zero removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, apperror.Validationf("Item ID and valid quantity are required")
	}
	var err error
	if quantity == 0 {
		err = s.carts.RemoveItem(ctx, userID, itemID)
	} else {
		err = s.carts.UpdateQuantity(ctx, userID, itemID, quantity)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFoundf("Item not found in cart")
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*models.Cart, error) {
	if err := s.carts.RemoveItem(ctx, userID, itemID); err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFoundf("Item not found in cart")
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
}
