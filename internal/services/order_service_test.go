package services_test

import (
	"context"
	"testing"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/pricing"
	"harvest/internal/repositories"
	"harvest/internal/services"
	"harvest/pkg/lock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_CreateOrder_BulkDiscountIgnoresClientAmount(t *testing.T) {
	s := newStore(t, pricing.ModelPercentage, false)
	product := s.seedProduct(t, "100", 20)
	client := decimal.NewFromInt(999999)

	created, err := s.orderService.CreateOrder(context.Background(), services.CreateOrderInput{
		UserID: "u1", ProductID: product.ID, Size: "500", Quantity: 5, ClientAmount: &client,
		Address: models.Address{Street: "1 Palm St", City: "Dubai", Country: "AE"},
	})
	require.NoError(t, err)

	assert.True(t, created.Quote.HasDiscount)
	assert.Equal(t, "500", created.Order.OriginalAmount.String())
	assert.Equal(t, "142.5", created.Order.DiscountAmount.String())
	assert.Equal(t, "357.5", created.Order.AmountPaid.String())
	assert.Equal(t, models.OrderPending, created.Order.OrderStatus)
	assert.Equal(t, models.PaymentPending, created.Order.PaymentStatus)

	stored, err := s.orders.GetByID(context.Background(), created.Order.ID)
	require.NoError(t, err)
	assert.True(t, stored.AmountPaid.Equal(decimal.RequireFromString("357.5")))
	assert.Equal(t, "Dubai", stored.Address.City)
	assert.Equal(t, 20, s.stock(t, product.ID), "stock only moves on confirmation")
}

func TestOrderService_CreateOrder_NoDiscountBelowThreshold(t *testing.T) {
	s := newStore(t, pricing.ModelFlat, false)
	product := s.seedProduct(t, "50", 20)

	created, err := s.orderService.CreateOrder(context.Background(), services.CreateOrderInput{
		UserID: "u1", ProductID: product.ID, Size: "500", Quantity: 3,
	})
	require.NoError(t, err)
	assert.False(t, created.Quote.HasDiscount)
	assert.Equal(t, "150", created.Order.AmountPaid.String())
	assert.True(t, created.Order.DiscountAmount.IsZero())
}

func TestOrderService_CreateOrder_Rejects(t *testing.T) {
	s := newStore(t, pricing.ModelPercentage, false)
	product := s.seedProduct(t, "100", 2)
	ctx := context.Background()

	_, err := s.orderService.CreateOrder(ctx, services.CreateOrderInput{UserID: "u1", ProductID: product.ID, Size: "500", Quantity: 3})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Insufficient stock. Only 2 items available.", apperror.Message(err))

	_, err = s.orderService.CreateOrder(ctx, services.CreateOrderInput{UserID: "u1", ProductID: product.ID, Size: "250", Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = s.orderService.CreateOrder(ctx, services.CreateOrderInput{UserID: "u1", ProductID: "missing", Size: "500", Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = s.orderService.CreateOrder(ctx, services.CreateOrderInput{UserID: "u1", ProductID: product.ID, Size: "500", Quantity: 0})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	n, err := s.orders.Count(ctx, repositories.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

// reservedStock reports every product as unavailable, as if its stock were
// held elsewhere.
type reservedStock struct {
	*repositories.MemoryProductRepository
	checked []string
}

func (r *reservedStock) CheckAvailable(_ context.Context, productID string, _ int) (bool, error) {
	r.checked = append(r.checked, productID)
	return false, nil
}

func TestOrderService_CreateOrder_AsksStockLedger(t *testing.T) {
	ctx := context.Background()
	products := &reservedStock{MemoryProductRepository: repositories.NewMemoryProductRepository()}
	product := &models.Product{Name: "Wild Honey", Sizes: models.ProductSizes{{Weight: 500, Price: decimal.NewFromInt(10)}}, Stock: 50}
	require.NoError(t, products.Create(ctx, product))

	engine, err := pricing.NewEngine(pricing.ModelPercentage)
	require.NoError(t, err)
	orders := repositories.NewMemoryOrderRepository()
	orderService := services.NewOrderService(orders, products, nil, engine, lock.NewKeyedMutex(), nil)

	_, err = orderService.CreateOrder(ctx, services.CreateOrderInput{UserID: "u1", ProductID: product.ID, Size: "500", Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, []string{product.ID}, products.checked)

	n, err := orders.Count(ctx, repositories.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderService_CreateOrder_FromCartRemovesLine(t *testing.T) {
	s := newStore(t, pricing.ModelPercentage, false)
	product := s.seedProduct(t, "100", 20)
	ctx := context.Background()

	require.NoError(t, s.carts.AddItem(ctx, &models.CartItem{UserID: "u1", ProductID: product.ID, Size: "500", Quantity: 2}))

	_, err := s.orderService.CreateOrder(ctx, services.CreateOrderInput{
		UserID: "u1", ProductID: product.ID, Size: "500", Quantity: 2, FromCart: true,
	})
	require.NoError(t, err)

	items, err := s.carts.Items(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)

	// A missing cart line does not fail the order.
	_, err = s.orderService.CreateOrder(ctx, services.CreateOrderInput{
		UserID: "u1", ProductID: product.ID, Size: "500", Quantity: 1, FromCart: true, CartItemID: "gone",
	})
	assert.NoError(t, err)
}

func TestOrderService_CancelOrder(t *testing.T) {
	s := newStore(t, pricing.ModelPercentage, false)
	product := s.seedProduct(t, "100", 20)
	ctx := context.Background()

	order := s.pendingOrder(t, "u1", product, 1, "pay_cancel")

	_, err := s.orderService.CancelOrder(ctx, "intruder", order.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	cancelled, err := s.orderService.CancelOrder(ctx, "u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.OrderStatus)
	assert.Equal(t, models.PaymentPending, cancelled.PaymentStatus)

	_, err = s.orderService.CancelOrder(ctx, "u1", order.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	confirmed := s.pendingOrder(t, "u1", product, 1, "pay_confirmed")
	_, err = s.paymentService.RecordPaymentOutcome(ctx, "pay_confirmed", "paid")
	require.NoError(t, err)
	_, err = s.orderService.CancelOrder(ctx, "u1", confirmed.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, apperror.Message(err), "Confirmed")

	events := s.notifier.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, models.EventOrderStatusChanged, events[0].Type)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	s := newStore(t, pricing.ModelPercentage, false)
	product := s.seedProduct(t, "100", 20)
	ctx := context.Background()

	order := s.pendingOrder(t, "u1", product, 1, "pay_ship")

	_, err := s.orderService.UpdateOrderStatus(ctx, order.ID, models.OrderShipped)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = s.paymentService.RecordPaymentOutcome(ctx, "pay_ship", "completed")
	require.NoError(t, err)

	same, err := s.orderService.UpdateOrderStatus(ctx, order.ID, models.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, same.OrderStatus)

	shipped, err := s.orderService.UpdateOrderStatus(ctx, order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, shipped.OrderStatus)

	_, err = s.orderService.UpdateOrderStatus(ctx, order.ID, models.OrderCancelled)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	delivered, err := s.orderService.UpdateOrderStatus(ctx, order.ID, models.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, delivered.OrderStatus)
	assert.Equal(t, models.PaymentCompleted, delivered.PaymentStatus)

	_, err = s.orderService.UpdateOrderStatus(ctx, order.ID, "Lost")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = s.orderService.UpdateOrderStatus(ctx, "missing", models.OrderShipped)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestOrderService_ListUserOrders(t *testing.T) {
	s := newStore(t, pricing.ModelPercentage, false)
	product := s.seedProduct(t, "100", 20)
	ctx := context.Background()

	s.pendingOrder(t, "u1", product, 1, "pay_a")
	s.pendingOrder(t, "u1", product, 2, "pay_b")
	s.pendingOrder(t, "u2", product, 1, "pay_c")

	orders, total, err := s.orderService.ListUserOrders(ctx, "u1", "", repositories.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, orders, 2)
	assert.NotNil(t, orders[0].Product)

	_, _, err = s.orderService.ListUserOrders(ctx, "u1", "Lost", repositories.Page{})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
