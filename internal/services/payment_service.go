package services

import (
	"context"
	"fmt"
	"log"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/repositories"
	"harvest/pkg/lock"
	"harvest/pkg/nomod"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentGateway creates and inspects hosted payment links.
type PaymentGateway interface {
	CreateLink(ctx context.Context, req nomod.LinkRequest) (*nomod.Link, error)
	GetLink(ctx context.Context, id string) (*nomod.Link, error)
}

// PaymentConfig holds the settings payment links are built from.
type PaymentConfig struct {
	Currency    string
	FrontendURL string
	StoreName   string
	// TestPayments enables the shortcut that completes a payment without the provider.
	TestPayments bool
}

// PaymentService drives an order from Pending to paid: it creates payment
// links and applies the provider's outcome exactly once per order.
type PaymentService struct {
	orders   repositories.OrderRepository
	payments repositories.PaymentRepository
	products repositories.ProductRepository
	uow      repositories.UnitOfWork
	gateway  PaymentGateway
	locker   lock.Locker
	notifier Notifier
	cfg      PaymentConfig
}

func NewPaymentService(
	orders repositories.OrderRepository,
	payments repositories.PaymentRepository,
	products repositories.ProductRepository,
	uow repositories.UnitOfWork,
	gateway PaymentGateway,
	locker lock.Locker,
	notifier Notifier,
	cfg PaymentConfig,
) *PaymentService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if cfg.StoreName == "" {
		cfg.StoreName = "Earth & Harvest"
	}
	return &PaymentService{
		orders:   orders,
		payments: payments,
		products: products,
		uow:      uow,
		gateway:  gateway,
		locker:   locker,
		notifier: notifier,
		cfg:      cfg,
	}
}

// CheckoutLink is where the customer pays for an order.
type CheckoutLink struct {
	OrderID    string          `json:"order_id"`
	PaymentID  string          `json:"payment_id"`
	PaymentURL string          `json:"payment_url"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaymentOutcome reports what applying a provider status did.
type PaymentOutcome struct {
	PaymentID string                     `json:"payment_id"`
	OrderID   string                     `json:"order_id"`
	Status    models.PaymentRecordStatus `json:"status"`
	// OrderConfirmed is true only for the signal that confirmed the order.
	OrderConfirmed bool `json:"order_confirmed"`
	// Duplicate is true when the order had already been paid.
	Duplicate bool `json:"duplicate"`
}

// CreatePayment opens a payment link for one of the user's unpaid orders. The
// charged amount is always the order's computed amount.
func (s *PaymentService) CreatePayment(ctx context.Context, userID, orderID string, clientAmount *decimal.Decimal) (*CheckoutLink, error) {
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentCompleted() {
		return nil, apperror.Conflictf("Order is already paid")
	}
	if order.OrderStatus == models.OrderCancelled {
		return nil, apperror.Conflictf("Order has been cancelled")
	}
	if clientAmount != nil && !clientAmount.Equal(order.AmountPaid) {
		log.Printf("Payment amount %s for order %s ignored, charging %s", clientAmount.String(), orderID, order.AmountPaid.StringFixed(2))
	}

	name := s.cfg.StoreName + " Product"
	if product, err := s.products.GetByID(ctx, order.ProductID); err == nil {
		name = product.Name
	}

	amount := order.AmountPaid.StringFixed(2)
	link, err := s.gateway.CreateLink(ctx, nomod.LinkRequest{
		Currency: s.cfg.Currency,
		Title:    s.cfg.StoreName + " Order",
		Note:     "Order ID: " + order.ID,
		// One line carrying the discounted total so the provider charges exactly AmountPaid.
		Items:                   []nomod.LineItem{{Name: fmt.Sprintf("%s x %d", name, order.Quantity), Amount: amount, Quantity: 1}},
		SuccessURL:              fmt.Sprintf("%s/payment-success?orderId=%s", s.cfg.FrontendURL, order.ID),
		FailureURL:              fmt.Sprintf("%s/payment-failure?orderId=%s", s.cfg.FrontendURL, order.ID),
		ShippingAddressRequired: true,
	})
	if err != nil {
		log.Printf("Create payment error for order %s: %v", order.ID, err)
		return nil, apperror.External("Payment creation failed", err)
	}

	payment := &models.Payment{
		PaymentID:   link.PaymentID(),
		OrderID:     order.ID,
		UserID:      userID,
		Amount:      order.AmountPaid,
		CheckoutURL: link.PaymentURL(),
		Status:      models.PaymentRecordPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment record: %w", err)
	}

	return &CheckoutLink{
		OrderID:    order.ID,
		PaymentID:  payment.PaymentID,
		PaymentURL: payment.CheckoutURL,
		Amount:     payment.Amount,
	}, nil
}

// RecordPaymentOutcome applies a status reported by the provider for a payment.
func (s *PaymentService) RecordPaymentOutcome(ctx context.Context, providerPaymentID, rawStatus string) (*PaymentOutcome, error) {
	if providerPaymentID == "" || rawStatus == "" {
		return nil, apperror.Validationf("Missing required fields")
	}
	payment, err := s.payments.GetByPaymentID(ctx, providerPaymentID)
	if err != nil {
		if isNotFound(err) {
			log.Printf("Payment record not found for payment_id: %s", providerPaymentID)
			return nil, apperror.NotFoundf("Payment record not found")
		}
		return nil, err
	}
	return s.apply(ctx, payment, models.ParseProviderStatus(rawStatus))
}

// GetPaymentStatus returns the latest payment record of one of the user's orders.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, userID, orderID string) (*models.Payment, error) {
	if _, err := s.orders.GetByIDForUser(ctx, orderID, userID); err != nil {
		return nil, err
	}
	payment, err := s.payments.LatestForOrder(ctx, orderID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFoundf("Payment not found")
		}
		return nil, err
	}
	return payment, nil
}

// VerifyPayment asks the provider for the latest status of the order's
// payment and applies it, for when the webhook did not arrive.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID, orderID string) (*PaymentOutcome, error) {
	payment, err := s.GetPaymentStatus(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	link, err := s.gateway.GetLink(ctx, payment.PaymentID)
	if err != nil {
		log.Printf("Verify payment error for order %s: %v", orderID, err)
		return nil, apperror.External("Payment verification failed", err)
	}
	return s.apply(ctx, payment, models.ParseProviderStatus(link.Status))
}

// TestCompletePayment completes the order's payment without the provider.
func (s *PaymentService) TestCompletePayment(ctx context.Context, userID, orderID string) (*PaymentOutcome, error) {
	if !s.cfg.TestPayments {
		return nil, apperror.Forbiddenf("Test payments are disabled")
	}
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.LatestForOrder(ctx, orderID)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		payment = &models.Payment{
			PaymentID: "test_" + uuid.New().String(),
			OrderID:   order.ID,
			UserID:    userID,
			Amount:    order.AmountPaid,
			Status:    models.PaymentRecordPending,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return nil, fmt.Errorf("failed to save test payment record: %w", err)
		}
	}
	log.Printf("Test payment completing order %s", orderID)
	return s.apply(ctx, payment, models.PaymentRecordSuccess)
}

func (s *PaymentService) apply(ctx context.Context, payment *models.Payment, status models.PaymentRecordStatus) (*PaymentOutcome, error) {
	switch status {
	case models.PaymentRecordSuccess:
		return s.settleSuccess(ctx, payment)
	case models.PaymentRecordFailed:
		return s.settleFailure(ctx, payment)
	default:
		return &PaymentOutcome{PaymentID: payment.PaymentID, OrderID: payment.OrderID, Status: payment.Status}, nil
	}
}

// settleSuccess confirms the order and decrements stock once. Later signals
// for the same order find it Completed and change nothing.
func (s *PaymentService) settleSuccess(ctx context.Context, payment *models.Payment) (*PaymentOutcome, error) {
	out := &PaymentOutcome{PaymentID: payment.PaymentID, OrderID: payment.OrderID}
	var confirmed *models.Order

	err := withOrderLock(ctx, s.locker, payment.OrderID, func() error {
		return s.uow.Do(ctx, func(tx repositories.TxRepositories) error {
			current, err := tx.Payments.GetByPaymentID(ctx, payment.PaymentID)
			if err != nil {
				return err
			}
			out.Status = current.Status
			if current.Status != models.PaymentRecordSuccess {
				other, err := tx.Payments.HasSuccess(ctx, current.OrderID, current.ID)
				if err != nil {
					return err
				}
				if other {
					log.Printf("Order %s already has a successful payment, leaving %s as %s", current.OrderID, current.PaymentID, current.Status)
				} else {
					if err := tx.Payments.UpdateStatus(ctx, current.ID, models.PaymentRecordSuccess); err != nil {
						return err
					}
					out.Status = models.PaymentRecordSuccess
				}
			}

			order, err := tx.Orders.GetByID(ctx, current.OrderID)
			if err != nil {
				return err
			}
			ok, err := tx.Orders.ConfirmPayment(ctx, order.ID)
			if err != nil {
				return err
			}
			if !ok {
				if order.OrderStatus == models.OrderCancelled {
					log.Printf("Warning: payment %s succeeded for cancelled order %s, order left unchanged", current.PaymentID, order.ID)
				}
				out.Duplicate = order.PaymentCompleted()
				return nil
			}

			stock, err := tx.Products.DecrementStock(ctx, order.ProductID, order.Quantity)
			switch {
			case isNotFound(err):
				log.Printf("Warning: product %s of order %s no longer exists, stock not updated", order.ProductID, order.ID)
			case err != nil:
				return err
			default:
				log.Printf("Order %s confirmed, stock of product %s now %d", order.ID, order.ProductID, stock)
			}

			order.PaymentStatus = models.PaymentCompleted
			order.OrderStatus = models.OrderConfirmed
			out.OrderConfirmed = true
			confirmed = order
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if confirmed != nil {
		s.notifier.Notify(ctx, models.NewOrderEvent(models.EventOrderConfirmed, confirmed))
	}
	return out, nil
}

// settleFailure records a failed attempt. A completed payment is never downgraded.
func (s *PaymentService) settleFailure(ctx context.Context, payment *models.Payment) (*PaymentOutcome, error) {
	out := &PaymentOutcome{PaymentID: payment.PaymentID, OrderID: payment.OrderID}
	err := withOrderLock(ctx, s.locker, payment.OrderID, func() error {
		return s.uow.Do(ctx, func(tx repositories.TxRepositories) error {
			current, err := tx.Payments.GetByPaymentID(ctx, payment.PaymentID)
			if err != nil {
				return err
			}
			out.Status = current.Status
			if current.Status == models.PaymentRecordSuccess {
				return nil
			}
			if current.Status != models.PaymentRecordFailed {
				if err := tx.Payments.UpdateStatus(ctx, current.ID, models.PaymentRecordFailed); err != nil {
					return err
				}
				out.Status = models.PaymentRecordFailed
			}
			changed, err := tx.Orders.MarkPaymentFailed(ctx, current.OrderID)
			if err != nil {
				return err
			}
			if changed {
				log.Printf("Payment %s failed for order %s", current.PaymentID, current.OrderID)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
