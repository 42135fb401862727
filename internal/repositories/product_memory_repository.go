package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"harvest/internal/apperror"
	"harvest/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// sorted returns the products matching keep, newest first.
func (r *MemoryProductRepository) sorted(keep func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MemoryProductRepository) List(_ context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	matches := r.sorted(func(p models.Product) bool {
		return search == "" || strings.Contains(strings.ToLower(p.Name), search)
	})
	start, end := filter.Page.normalize(20).window(len(matches))
	return matches[start:end], int64(len(matches)), nil
}

func (r *MemoryProductRepository) Featured(_ context.Context, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.sorted(func(p models.Product) bool { return p.Stock > 0 })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].TotalReviews > out[j].TotalReviews
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryProductRepository) LowStock(_ context.Context, threshold, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.sorted(func(p models.Product) bool { return p.Stock <= threshold })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryProductRepository) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperror.NotFoundf("product with ID %s not found", id)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return apperror.NotFoundf("product with ID %s not found for update", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperror.NotFoundf("product with ID %s not found for deletion", id)
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) CheckAvailable(_ context.Context, productID string, amount int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[productID]
	if !ok {
		return false, apperror.NotFoundf("product with ID %s not found", productID)
	}
	return product.Stock >= amount, nil
}

func (r *MemoryProductRepository) DecrementStock(_ context.Context, productID string, amount int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return 0, apperror.NotFoundf("product with ID %s not found for stock update", productID)
	}
	product.Stock -= amount
	if product.Stock < 0 {
		product.Stock = 0
	}
	product.UpdatedAt = time.Now()
	r.products[productID] = product
	return product.Stock, nil
}
