package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"harvest/internal/apperror"
	"harvest/internal/models"

	"github.com/google/uuid"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
type MemoryOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]models.Order),
	}
}

func (f OrderFilter) matches(o models.Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.OrderStatus != "" && o.OrderStatus != f.OrderStatus {
		return false
	}
	if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
		return false
	}
	return true
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.OrderStatus == "" {
		order.OrderStatus = models.OrderPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentPending
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	r.orders[order.ID] = *order
	return nil
}

func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperror.NotFoundf("order with ID %s not found", id)
	}
	return &order, nil
}

func (r *MemoryOrderRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.Order, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperror.NotFoundf("order with ID %s not found", id)
	}
	return order, nil
}

func (r *MemoryOrderRepository) List(_ context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []models.Order
	for _, o := range r.orders {
		if filter.matches(o) {
			matches = append(matches, o)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	start, end := filter.Page.normalize(50).window(len(matches))
	return matches[start:end], int64(len(matches)), nil
}

func (r *MemoryOrderRepository) Count(_ context.Context, filter OrderFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, o := range r.orders {
		if filter.matches(o) {
			n++
		}
	}
	return n, nil
}

// update applies fn to the stored order when cond holds.
func (r *MemoryOrderRepository) update(id string, cond func(models.Order) bool, fn func(*models.Order)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || !cond(order) {
		return false
	}
	fn(&order)
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return true
}

func (r *MemoryOrderRepository) ConfirmPayment(_ context.Context, id string) (bool, error) {
	return r.update(id,
		func(o models.Order) bool {
			return o.OrderStatus == models.OrderPending && o.PaymentStatus != models.PaymentCompleted
		},
		func(o *models.Order) {
			o.PaymentStatus = models.PaymentCompleted
			o.OrderStatus = models.OrderConfirmed
		}), nil
}

func (r *MemoryOrderRepository) MarkPaymentFailed(_ context.Context, id string) (bool, error) {
	return r.update(id,
		func(o models.Order) bool { return o.PaymentStatus == models.PaymentPending },
		func(o *models.Order) { o.PaymentStatus = models.PaymentFailed }), nil
}

func (r *MemoryOrderRepository) TransitionStatus(_ context.Context, id string, from, to models.OrderStatus) (bool, error) {
	return r.update(id,
		func(o models.Order) bool { return o.OrderStatus == from },
		func(o *models.Order) { o.OrderStatus = to }), nil
}
