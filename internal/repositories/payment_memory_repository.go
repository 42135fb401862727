package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"harvest/internal/apperror"
	"harvest/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryPaymentRepository is an in-memory implementation of PaymentRepository.
type MemoryPaymentRepository struct {
	payments map[string]models.Payment
	mu       sync.RWMutex
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{
		payments: make(map[string]models.Payment),
	}
}

func (f PaymentFilter) matches(p models.Payment) bool {
	if f.OrderID != "" && p.OrderID != f.OrderID {
		return false
	}
	return f.Status == "" || p.Status == f.Status
}

// newestFirst returns matching payments ordered by creation time, newest first.
func (r *MemoryPaymentRepository) newestFirst(f PaymentFilter) []models.Payment {
	var out []models.Payment
	for _, p := range r.payments {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MemoryPaymentRepository) Create(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.payments {
		if p.PaymentID == payment.PaymentID {
			return apperror.Conflictf("payment %s already exists", payment.PaymentID)
		}
	}
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentRecordPending
	}
	now := time.Now()
	payment.CreatedAt, payment.UpdatedAt = now, now
	r.payments[payment.ID] = *payment
	return nil
}

func (r *MemoryPaymentRepository) GetByPaymentID(_ context.Context, paymentID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if p.PaymentID == paymentID {
			return &p, nil
		}
	}
	return nil, apperror.NotFoundf("payment %s not found", paymentID)
}

func (r *MemoryPaymentRepository) LatestForOrder(_ context.Context, orderID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := r.newestFirst(PaymentFilter{OrderID: orderID})
	if len(matches) == 0 {
		return nil, apperror.NotFoundf("no payment found for order %s", orderID)
	}
	return &matches[0], nil
}

func (r *MemoryPaymentRepository) UpdateStatus(_ context.Context, id string, status models.PaymentRecordStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return apperror.NotFoundf("payment %s not found for update", id)
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	r.payments[id] = p
	return nil
}

func (r *MemoryPaymentRepository) HasSuccess(_ context.Context, orderID, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if p.OrderID == orderID && p.ID != excludeID && p.Status == models.PaymentRecordSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryPaymentRepository) List(_ context.Context, filter PaymentFilter) ([]models.Payment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := r.newestFirst(filter)
	start, end := filter.Page.normalize(50).window(len(matches))
	return matches[start:end], int64(len(matches)), nil
}

func (r *MemoryPaymentRepository) Revenue(context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := decimal.Zero
	for _, p := range r.payments {
		if p.Status == models.PaymentRecordSuccess {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}
