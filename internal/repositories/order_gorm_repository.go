package repositories

import (
	"context"
	"errors"
	"fmt"

	"harvest/internal/apperror"
	"harvest/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func orderScope(f OrderFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.UserID != "" {
			db = db.Where("user_id = ?", f.UserID)
		}
		if f.OrderStatus != "" {
			db = db.Where("order_status = ?", string(f.OrderStatus))
		}
		if f.PaymentStatus != "" {
			db = db.Where("payment_status = ?", string(f.PaymentStatus))
		}
		return db
	}
}

func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.OrderStatus == "" {
		order.OrderStatus = models.OrderPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentPending
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	page := filter.Page.normalize(50)

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err = r.db.WithContext(ctx).Scopes(orderScope(filter)).
		Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (r *GORMOrderRepository) Count(ctx context.Context, filter OrderFilter) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Scopes(orderScope(filter)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

func (r *GORMOrderRepository) ConfirmPayment(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND order_status = ? AND payment_status <> ?",
			id, string(models.OrderPending), string(models.PaymentCompleted)).
		Updates(map[string]interface{}{
			"payment_status": string(models.PaymentCompleted),
			"order_status":   string(models.OrderConfirmed),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to confirm payment for order %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMOrderRepository) MarkPaymentFailed(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, string(models.PaymentPending)).
		Update("payment_status", string(models.PaymentFailed))
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark payment failed for order %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GORMOrderRepository) TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, string(from)).
		Update("order_status", string(to))
	if res.Error != nil {
		return false, fmt.Errorf("failed to update status for order %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
