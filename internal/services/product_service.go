package services

import (
	"context"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/repositories"
)

const featuredLimit = 8

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns a page of products matching filter.
func (s *ProductService) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, int64, error) {
	return s.repo.List(ctx, filter)
}

// FeaturedProducts returns the best rated products in stock.
func (s *ProductService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.Featured(ctx, featuredLimit)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := checkSizes(product.Sizes); err != nil {
		return err
	}
	product.ID = ""
	return s.repo.Create(ctx, product)
}

// UpdateProduct replaces the product stored under id.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, product *models.Product) error {
	if err := checkSizes(product.Sizes); err != nil {
		return err
	}
	product.ID = id
	return s.repo.Update(ctx, product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// checkSizes rejects size lists clients could not address unambiguously.
func checkSizes(sizes models.ProductSizes) error {
	if len(sizes) == 0 {
		return apperror.Validationf("Product name and at least one size are required")
	}
	seen := make(map[string]bool, len(sizes))
	for _, size := range sizes {
		if size.Weight <= 0 {
			return apperror.Validationf("size weight must be positive")
		}
		if size.Price.IsNegative() {
			return apperror.Validationf("price of size %s must not be negative", size.Key())
		}
		if seen[size.Key()] {
			return apperror.Validationf("duplicate size %s", size.Key())
		}
		seen[size.Key()] = true
	}
	return nil
}
