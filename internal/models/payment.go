package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecordStatus is the state of one payment attempt.
type PaymentRecordStatus string

const (
	PaymentRecordPending PaymentRecordStatus = "Pending"
	PaymentRecordSuccess PaymentRecordStatus = "Success"
	PaymentRecordFailed  PaymentRecordStatus = "Failed"
)

// providerStatuses maps raw provider status strings (lower-cased) to record statuses.
var providerStatuses = map[string]PaymentRecordStatus{
	"paid":      PaymentRecordSuccess,
	"success":   PaymentRecordSuccess,
	"completed": PaymentRecordSuccess,
	"failed":    PaymentRecordFailed,
	"cancelled": PaymentRecordFailed,
	"expired":   PaymentRecordFailed,
}

// ParseProviderStatus maps a provider status string to a record status.
// Unrecognised values map to PaymentRecordPending.
func ParseProviderStatus(raw string) PaymentRecordStatus {
	if s, ok := providerStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return PaymentRecordPending
}

// Payment tracks one payment attempt against the payment provider.
type Payment struct {
	ID          string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PaymentID   string              `json:"payment_id" gorm:"uniqueIndex;type:varchar(100)"`
	OrderID     string              `json:"order_id" gorm:"index;type:varchar(36)"`
	UserID      string              `json:"user_id" gorm:"index;type:varchar(36)"`
	Amount      decimal.Decimal     `json:"amount" gorm:"type:varchar(32)"`
	CheckoutURL string              `json:"checkout_url,omitempty"`
	Status      PaymentRecordStatus `json:"status" gorm:"index;type:varchar(16);default:Pending"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
