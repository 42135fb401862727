package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"harvest/internal/models"
	"harvest/internal/repositories"
	"harvest/pkg/mailer"

	"github.com/streadway/amqp"
)

// Notifier reports order events to the customer. Implementations log their
// own failures; a notification never fails the operation that caused it.
type Notifier interface {
	Notify(ctx context.Context, event models.OrderEvent)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, models.OrderEvent) {}

// Publisher sends a message to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// BrokerNotifier publishes order events for the notification consumer.
type BrokerNotifier struct {
	pub Publisher
}

func NewBrokerNotifier(pub Publisher) *BrokerNotifier {
	return &BrokerNotifier{pub: pub}
}

func (n *BrokerNotifier) Notify(ctx context.Context, event models.OrderEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for order %s: %v", event.Type, event.OrderID, err)
		return
	}
	if err := n.pub.Publish(ctx, string(event.Type), body); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", event.Type, event.OrderID, err)
		return
	}
	log.Printf("Published %s event for order %s", event.Type, event.OrderID)
}

const defaultNotifyTimeout = 30 * time.Second

// EmailNotifier turns order events into plain-text emails.
type EmailNotifier struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
	mailer   mailer.Mailer

	// Timeout bounds one background delivery started by Notify.
	Timeout time.Duration
	wg      sync.WaitGroup
}

func NewEmailNotifier(users repositories.UserRepository, products repositories.ProductRepository, m mailer.Mailer) *EmailNotifier {
	return &EmailNotifier{users: users, products: products, mailer: m, Timeout: defaultNotifyTimeout}
}

// Notify delivers the email in the background and returns immediately. The
// delivery outlives the request that triggered it.
func (n *EmailNotifier) Notify(_ context.Context, event models.OrderEvent) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.Timeout)
		defer cancel()
		if err := n.Send(ctx, event); err != nil {
			log.Printf("Warning: Failed to email %s notification for order %s: %v", event.Type, event.OrderID, err)
		}
	}()
}

// Wait blocks until every delivery started by Notify has finished.
func (n *EmailNotifier) Wait() {
	n.wg.Wait()
}

// HandleDelivery is the broker consumer callback.
func (n *EmailNotifier) HandleDelivery(msg amqp.Delivery) error {
	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("failed to decode order event: %w", err)
	}
	return n.Send(context.Background(), event)
}

// Send emails the order's owner about event.
func (n *EmailNotifier) Send(ctx context.Context, event models.OrderEvent) error {
	user, err := n.users.GetByID(ctx, event.UserID)
	if err != nil {
		return err
	}

	productName := "your product"
	if product, err := n.products.GetByID(ctx, event.ProductID); err == nil {
		productName = product.Name
	}

	msg := mailer.Message{To: user.Email}
	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\n", user.Name)
	switch event.Type {
	case models.EventOrderConfirmed:
		msg.Subject = "Your order is confirmed"
		fmt.Fprintf(&body, "We received your payment of %s for %d x %s.\n", event.AmountPaid.StringFixed(2), event.Quantity, productName)
		fmt.Fprintf(&body, "Order reference: %s\n", event.OrderID)
	case models.EventOrderStatusChanged:
		msg.Subject = fmt.Sprintf("Your order is %s", strings.ToLower(string(event.OrderStatus)))
		fmt.Fprintf(&body, "Your order %s for %d x %s is now %s.\n", event.OrderID, event.Quantity, productName, event.OrderStatus)
	default:
		return fmt.Errorf("unknown order event type %q", event.Type)
	}
	body.WriteString("\nThank you for shopping with us.\n")
	msg.Body = body.String()

	return n.mailer.Send(ctx, msg)
}
