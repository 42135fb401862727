package repositories

import (
	"context"

	"harvest/internal/models"
)

// OrderFilter narrows an order listing. Zero fields match everything.
type OrderFilter struct {
	UserID        string
	OrderStatus   models.OrderStatus
	PaymentStatus models.PaymentStatus
	Page
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetByIDForUser reports not found for orders owned by another user.
	GetByIDForUser(ctx context.Context, id, userID string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	// ConfirmPayment marks a pending, not yet paid order as Completed and
	// Confirmed. It reports false when the order was not in that state.
	ConfirmPayment(ctx context.Context, id string) (bool, error)
	// MarkPaymentFailed records a failed payment unless the payment has
	// already completed. It reports whether the row changed.
	MarkPaymentFailed(ctx context.Context, id string) (bool, error)
	// TransitionStatus moves the order from one fulfilment status to another
	// and reports false if the order was no longer in the from status.
	TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error)
}
