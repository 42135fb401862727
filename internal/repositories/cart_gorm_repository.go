package repositories

import (
	"context"
	"errors"
	"fmt"

	"harvest/internal/apperror"
	"harvest/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) Items(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return items, nil
}

func (r *GORMCartRepository) first(ctx context.Context, notFound string, query string, args ...interface{}) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).Where(query, args...).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("%s", notFound)
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

func (r *GORMCartRepository) GetItem(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	return r.first(ctx, fmt.Sprintf("cart item %s not found", itemID), "id = ? AND user_id = ?", itemID, userID)
}

func (r *GORMCartRepository) FindItem(ctx context.Context, userID, productID, size string) (*models.CartItem, error) {
	return r.first(ctx, "product is not in the cart", "user_id = ? AND product_id = ? AND size = ?", userID, productID, size)
}

func (r *GORMCartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundf("cart item %s not found", itemID)
	}
	return nil
}

func (r *GORMCartRepository) RemoveItem(ctx context.Context, userID, itemID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundf("cart item %s not found", itemID)
	}
	return nil
}

func (r *GORMCartRepository) RemoveProduct(ctx context.Context, userID, productID, size string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND size = ?", userID, productID, size).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove product %s from cart: %w", productID, err)
	}
	return nil
}

func (r *GORMCartRepository) Clear(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
