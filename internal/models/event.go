package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventType names an order notification.
type OrderEventType string

const (
	EventOrderConfirmed     OrderEventType = "order.confirmed"
	EventOrderStatusChanged OrderEventType = "order.status_changed"
)

// OrderEvent is published when an order is confirmed or changes status.
type OrderEvent struct {
	Type          OrderEventType  `json:"type"`
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	ProductID     string          `json:"product_id"`
	Quantity      int             `json:"quantity"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	OrderStatus   OrderStatus     `json:"order_status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewOrderEvent snapshots order into an event of the given type.
func NewOrderEvent(t OrderEventType, order *Order) OrderEvent {
	return OrderEvent{
		Type:          t,
		OrderID:       order.ID,
		UserID:        order.UserID,
		ProductID:     order.ProductID,
		Quantity:      order.Quantity,
		AmountPaid:    order.AmountPaid,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		OccurredAt:    time.Now(),
	}
}
