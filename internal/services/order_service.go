package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/pricing"
	"harvest/internal/repositories"
	"harvest/pkg/lock"

	"github.com/shopspring/decimal"
)

// amountTolerance is how far a client-supplied amount may drift from the
// computed one before it is reported.
var amountTolerance = decimal.RequireFromString("0.01")

func orderLockKey(orderID string) string {
	return "order:" + orderID
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	carts    repositories.CartRepository
	engine   *pricing.Engine
	locker   lock.Locker
	notifier Notifier
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	carts repositories.CartRepository,
	engine *pricing.Engine,
	locker lock.Locker,
	notifier Notifier,
) *OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OrderService{
		orders:   orders,
		products: products,
		carts:    carts,
		engine:   engine,
		locker:   locker,
		notifier: notifier,
	}
}

// CreateOrderInput is a checkout request for one product size.
type CreateOrderInput struct {
	UserID    string
	ProductID string
	Size      string
	Quantity  int
	Address   models.Address
	// ClientAmount is the total the client displayed. It is only compared
	// against the computed amount, never charged.
	ClientAmount *decimal.Decimal
	FromCart     bool
	CartItemID   string
}

// CreatedOrder is the persisted order with the quote it was priced at.
type CreatedOrder struct {
	Order *models.Order
	Quote pricing.Quote
}

// QuoteOrder prices quantity units of a product size without persisting anything.
func (s *OrderService) QuoteOrder(ctx context.Context, productID, size string, quantity int) (*models.Product, pricing.Quote, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, pricing.Quote{}, err
	}
	selected, ok := product.SizeByKey(size)
	if !ok {
		return nil, pricing.Quote{}, apperror.Validationf("Invalid size selected")
	}
	quote, err := s.engine.Compute(quantity, selected.Price)
	if err != nil {
		return nil, pricing.Quote{}, err
	}
	return product, quote, nil
}

// CreateOrder prices and persists a Pending order. Stock is only checked here
// and is decremented when the payment is confirmed.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreatedOrder, error) {
	if in.Quantity <= 0 {
		return nil, apperror.Validationf("quantity must be a positive integer")
	}

	product, quote, err := s.QuoteOrder(ctx, in.ProductID, in.Size, in.Quantity)
	if err != nil {
		return nil, err
	}
	available, err := s.products.CheckAvailable(ctx, product.ID, in.Quantity)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperror.Validationf("Insufficient stock. Only %d items available.", product.Stock)
	}

	if in.ClientAmount != nil && in.ClientAmount.Sub(quote.FinalAmount).Abs().GreaterThan(amountTolerance) {
		log.Printf("Client amount %s for product %s differs from computed %s, using computed amount",
			in.ClientAmount.String(), in.ProductID, quote.FinalAmount.StringFixed(2))
	}

	order := &models.Order{
		UserID:             in.UserID,
		ProductID:          product.ID,
		SizeSelected:       in.Size,
		Quantity:           in.Quantity,
		Address:            in.Address,
		AmountPaid:         quote.FinalAmount,
		OriginalAmount:     quote.OriginalAmount,
		DiscountAmount:     quote.DiscountAmount,
		DiscountPercentage: quote.DiscountPercentage,
		PaymentStatus:      models.PaymentPending,
		OrderStatus:        models.OrderPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	if in.FromCart {
		s.consumeCartLine(ctx, in)
	}

	order.Product = product
	log.Printf("Order %s created for user %s: %d x %s (%s)", order.ID, order.UserID, order.Quantity, product.Name, order.AmountPaid.StringFixed(2))
	return &CreatedOrder{Order: order, Quote: quote}, nil
}

// consumeCartLine removes the ordered line from the cart. Failures are logged.
func (s *OrderService) consumeCartLine(ctx context.Context, in CreateOrderInput) {
	var err error
	if in.CartItemID != "" {
		err = s.carts.RemoveItem(ctx, in.UserID, in.CartItemID)
	} else {
		err = s.carts.RemoveProduct(ctx, in.UserID, in.ProductID, in.Size)
	}
	if err != nil {
		log.Printf("Warning: Failed to remove ordered item from cart of user %s: %v", in.UserID, err)
	}
}

func (s *OrderService) attachProduct(ctx context.Context, order *models.Order) {
	if product, err := s.products.GetByID(ctx, order.ProductID); err == nil {
		order.Product = product
	}
}

// GetOrder returns one of the user's orders.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	s.attachProduct(ctx, order)
	return order, nil
}

// ListUserOrders returns the user's orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string, status models.OrderStatus, page repositories.Page) ([]models.Order, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, apperror.Validationf("invalid order status: %s", status)
	}
	orders, total, err := s.orders.List(ctx, repositories.OrderFilter{UserID: userID, OrderStatus: status, Page: page})
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		s.attachProduct(ctx, &orders[i])
	}
	return orders, total, nil
}

// ListAllOrders returns every order matching filter.
func (s *OrderService) ListAllOrders(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, int64, error) {
	if filter.OrderStatus != "" && !filter.OrderStatus.Valid() {
		return nil, 0, apperror.Validationf("invalid order status: %s", filter.OrderStatus)
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, 0, apperror.Validationf("invalid payment status: %s", filter.PaymentStatus)
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		s.attachProduct(ctx, &orders[i])
	}
	return orders, total, nil
}

// withOrderLock runs fn while holding the order's lock.
func withOrderLock(ctx context.Context, locker lock.Locker, orderID string, fn func() error) error {
	unlock, err := locker.Lock(ctx, orderLockKey(orderID))
	if err != nil {
		return fmt.Errorf("failed to lock order %s: %w", orderID, err)
	}
	defer unlock()
	return fn()
}

// CancelOrder cancels one of the user's Pending orders. The payment status is
// left as it is.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	var order *models.Order
	err := withOrderLock(ctx, s.locker, orderID, func() error {
		current, err := s.orders.GetByIDForUser(ctx, orderID, userID)
		if err != nil {
			return err
		}
		if !current.Cancellable() {
			return apperror.Conflictf("Order cannot be cancelled. Current status: %s", current.OrderStatus)
		}

		moved, err := s.orders.TransitionStatus(ctx, orderID, models.OrderPending, models.OrderCancelled)
		if err != nil {
			return err
		}
		if !moved {
			return apperror.Conflictf("Order cannot be cancelled. Its status changed concurrently")
		}
		current.OrderStatus = models.OrderCancelled
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, models.NewOrderEvent(models.EventOrderStatusChanged, order))
	return order, nil
}

// UpdateOrderStatus applies an administrator's fulfilment transition. Setting
// the current status again is a no-op.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperror.Validationf("Valid order status is required")
	}

	var order *models.Order
	changed := false
	err := withOrderLock(ctx, s.locker, orderID, func() error {
		current, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		order = current
		if current.OrderStatus == status {
			return nil
		}
		if !current.CanMoveTo(status) {
			return apperror.Conflictf("cannot move order from %s to %s", current.OrderStatus, status)
		}

		moved, err := s.orders.TransitionStatus(ctx, orderID, current.OrderStatus, status)
		if err != nil {
			return err
		}
		if !moved {
			return apperror.Conflictf("order %s changed concurrently", orderID)
		}
		current.OrderStatus = status
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		log.Printf("Order %s status updated to %s", orderID, status)
		s.notifier.Notify(ctx, models.NewOrderEvent(models.EventOrderStatusChanged, order))
	}
	return order, nil
}

// isNotFound reports whether err is a not-found error.
func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
