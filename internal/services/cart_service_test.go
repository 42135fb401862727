package services_test

import (
	"context"
	"testing"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/repositories"
	"harvest/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMemoryProductRepository()
	carts := repositories.NewGORMCartRepository(openTestDB(t))
	cartService := services.NewCartService(carts, products)

	product := &models.Product{
		Name:  "Wild Honey",
		Sizes: models.ProductSizes{{Weight: 250, Price: decimal.NewFromInt(30)}, {Weight: 500, Price: decimal.NewFromInt(50)}},
		Stock: 10,
	}
	require.NoError(t, products.Create(ctx, product))

	cart, err := cartService.AddItem(ctx, "u1", product.ID, "500", 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	cart, err = cartService.AddItem(ctx, "u1", product.ID, "500", 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "same product and size merge")
	assert.Equal(t, 5, cart.Items[0].Quantity)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "Wild Honey", cart.Items[0].Product.Name)

	cart, err = cartService.AddItem(ctx, "u1", product.ID, "250", 1)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	_, err = cartService.AddItem(ctx, "u1", product.ID, "1000", 1)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = cartService.AddItem(ctx, "u1", "missing", "500", 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = cartService.AddItem(ctx, "u1", product.ID, "500", 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	itemID := cart.Items[0].ID
	cart, err = cartService.UpdateQuantity(ctx, "u1", itemID, 0)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	_, err = cartService.UpdateQuantity(ctx, "u2", cart.Items[0].ID, 4)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = cartService.UpdateQuantity(ctx, "u1", cart.Items[0].ID, -1)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = cartService.RemoveItem(ctx, "u1", itemID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	cart, err = cartService.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	cart, err = cartService.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
}
