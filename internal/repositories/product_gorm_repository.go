package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"harvest/internal/apperror"
	"harvest/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

func productSearch(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		return db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
}

// List returns a page of products, newest first, and the total number of matches.
func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	page := filter.Page.normalize(20)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(productSearch(filter.Search)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := r.db.WithContext(ctx).Scopes(productSearch(filter.Search)).
		Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// Featured returns in-stock products ordered by rating.
func (r *GORMProductRepository) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Where("stock > 0").
		Order("rating DESC").Order("total_reviews DESC").Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get featured products: %w", err)
	}
	return products, nil
}

// LowStock returns products whose stock is at or below threshold.
func (r *GORMProductRepository) LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Where("stock <= ?", threshold).
		Order("stock ASC").Limit(limit).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	return products, nil
}

func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("product with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{ID: product.ID}).
		Select("*").Omit("id", "created_at").Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundf("product with ID %s not found for update", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundf("product with ID %s not found for deletion", id)
	}
	return nil
}

func (r *GORMProductRepository) CheckAvailable(ctx context.Context, productID string, amount int) (bool, error) {
	product, err := r.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}
	return product.Stock >= amount, nil
}

// DecrementStock applies the decrement in a single statement so concurrent
// callers cannot push the stock below zero.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, productID string, amount int) (int, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).
		Update("stock", gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", amount, amount))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to decrement stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, apperror.NotFoundf("product with ID %s not found for stock update", productID)
	}

	product, err := r.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}
