package repositories

import (
	"context"
	"errors"
	"fmt"

	"harvest/internal/apperror"
	"harvest/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMPaymentRepository is a GORM implementation of PaymentRepository.
type GORMPaymentRepository struct {
	db *gorm.DB
}

func NewGORMPaymentRepository(db *gorm.DB) *GORMPaymentRepository {
	return &GORMPaymentRepository{db: db}
}

func paymentScope(f PaymentFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.OrderID != "" {
			db = db.Where("order_id = ?", f.OrderID)
		}
		if f.Status != "" {
			db = db.Where("status = ?", string(f.Status))
		}
		return db
	}
}

func (r *GORMPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentRecordPending
	}
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *GORMPaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("payment %s not found", paymentID)
		}
		return nil, fmt.Errorf("failed to get payment %s: %w", paymentID, err)
	}
	return &payment, nil
}

func (r *GORMPaymentRepository) LatestForOrder(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).
		Order("created_at DESC").First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("no payment found for order %s", orderID)
		}
		return nil, fmt.Errorf("failed to get payment for order %s: %w", orderID, err)
	}
	return &payment, nil
}

func (r *GORMPaymentRepository) UpdateStatus(ctx context.Context, id string, status models.PaymentRecordStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("failed to update payment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundf("payment %s not found for update", id)
	}
	return nil
}

func (r *GORMPaymentRepository) HasSuccess(ctx context.Context, orderID, excludeID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("order_id = ? AND status = ? AND id <> ?", orderID, string(models.PaymentRecordSuccess), excludeID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check payments for order %s: %w", orderID, err)
	}
	return n > 0, nil
}

func (r *GORMPaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, int64, error) {
	page := filter.Page.normalize(50)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Payment{}).Scopes(paymentScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []models.Payment
	err := r.db.WithContext(ctx).Scopes(paymentScope(filter)).
		Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

// Revenue sums in Go since amounts are stored as decimal text.
func (r *GORMPaymentRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", string(models.PaymentRecordSuccess)).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}
