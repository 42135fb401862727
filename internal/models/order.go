package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// Order represents a customer order for a single product size.
type Order struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID             string          `json:"user_id" gorm:"index;type:varchar(36)"`
	ProductID          string          `json:"product_id" gorm:"index;type:varchar(36)"`
	SizeSelected       string          `json:"size_selected" gorm:"type:varchar(20)"`
	Quantity           int             `json:"quantity"`
	Address            Address         `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	AmountPaid         decimal.Decimal `json:"amount_paid" gorm:"type:varchar(32)"`
	OriginalAmount     decimal.Decimal `json:"original_amount" gorm:"type:varchar(32)"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" gorm:"type:varchar(32)"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" gorm:"type:varchar(16)"`
	PaymentStatus      PaymentStatus   `json:"payment_status" gorm:"index;type:varchar(16);default:Pending"`
	OrderStatus        OrderStatus     `json:"order_status" gorm:"index;type:varchar(16);default:Pending"`
	Product            *Product        `json:"product,omitempty" gorm:"-"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Cancellable reports whether the order may still be cancelled.
func (o *Order) Cancellable() bool {
	return o.OrderStatus == OrderPending
}

// PaymentCompleted reports whether a successful payment was already recorded.
func (o *Order) PaymentCompleted() bool {
	return o.PaymentStatus == PaymentCompleted
}

// adminTransitions lists the fulfilment moves an administrator may make.
var adminTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderCancelled},
	OrderConfirmed: {OrderShipped},
	OrderShipped:   {OrderDelivered},
}

// CanMoveTo reports whether an administrator may move the order to next.
func (o *Order) CanMoveTo(next OrderStatus) bool {
	for _, s := range adminTransitions[o.OrderStatus] {
		if s == next {
			return true
		}
	}
	return false
}
