package models_test

import (
	"testing"

	"harvest/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderStatus(t *testing.T) {
	tests := map[string]models.PaymentRecordStatus{
		"paid":       models.PaymentRecordSuccess,
		"SUCCESS":    models.PaymentRecordSuccess,
		" Completed": models.PaymentRecordSuccess,
		"failed":     models.PaymentRecordFailed,
		"Cancelled":  models.PaymentRecordFailed,
		"EXPIRED":    models.PaymentRecordFailed,
		"processing": models.PaymentRecordPending,
		"":           models.PaymentRecordPending,
		"p@id":       models.PaymentRecordPending,
	}
	for raw, want := range tests {
		assert.Equal(t, want, models.ParseProviderStatus(raw), "raw %q", raw)
	}
}

func TestOrderTransitions(t *testing.T) {
	order := &models.Order{OrderStatus: models.OrderPending, PaymentStatus: models.PaymentPending}
	assert.True(t, order.Cancellable())
	assert.True(t, order.CanMoveTo(models.OrderCancelled))
	assert.False(t, order.CanMoveTo(models.OrderShipped))
	assert.False(t, order.CanMoveTo(models.OrderConfirmed))

	order.OrderStatus = models.OrderConfirmed
	assert.False(t, order.Cancellable())
	assert.True(t, order.CanMoveTo(models.OrderShipped))
	assert.False(t, order.CanMoveTo(models.OrderDelivered))

	order.OrderStatus = models.OrderShipped
	assert.True(t, order.CanMoveTo(models.OrderDelivered))

	order.OrderStatus = models.OrderCancelled
	for _, next := range []models.OrderStatus{models.OrderPending, models.OrderConfirmed, models.OrderShipped, models.OrderDelivered} {
		assert.False(t, order.CanMoveTo(next))
	}
}

func TestProductSizeByKey(t *testing.T) {
	product := &models.Product{Sizes: models.ProductSizes{
		{Weight: 250, Price: decimal.NewFromInt(40)},
		{Weight: 1000, Price: decimal.NewFromInt(120)},
	}}

	size, ok := product.SizeByKey("1000")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(120).Equal(size.Price))

	_, ok = product.SizeByKey("500")
	assert.False(t, ok)
}

func TestProductSizesColumnRoundTrip(t *testing.T) {
	sizes := models.ProductSizes{{Weight: 500, Price: decimal.RequireFromString("59.90"), Servings: "20"}}
	value, err := sizes.Value()
	require.NoError(t, err)

	var scanned models.ProductSizes
	require.NoError(t, scanned.Scan(value))
	require.Len(t, scanned, 1)
	assert.Equal(t, 500, scanned[0].Weight)
	assert.True(t, decimal.RequireFromString("59.9").Equal(scanned[0].Price))

	var empty models.StringList
	assert.NoError(t, empty.Scan(nil))
	assert.NoError(t, empty.Scan([]byte("")))
	assert.Error(t, empty.Scan(42))
}
