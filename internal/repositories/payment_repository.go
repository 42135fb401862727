package repositories

import (
	"context"

	"harvest/internal/models"

	"github.com/shopspring/decimal"
)

// PaymentFilter narrows a payment listing.
type PaymentFilter struct {
	OrderID string
	Status  models.PaymentRecordStatus
	Page
}

// PaymentRepository defines the interface for payment record access.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	// GetByPaymentID looks a record up by the provider's payment identifier.
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error)
	// LatestForOrder returns the most recently created record for the order.
	LatestForOrder(ctx context.Context, orderID string) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id string, status models.PaymentRecordStatus) error
	// HasSuccess reports whether any record other than excludeID succeeded for the order.
	HasSuccess(ctx context.Context, orderID, excludeID string) (bool, error)
	List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error)
	// Revenue sums the amounts of successful payments.
	Revenue(ctx context.Context) (decimal.Decimal, error)
}
