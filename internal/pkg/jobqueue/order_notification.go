package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/internal/pkg/mail"
)

// OrderReader loads an order with its product for rendering.
type OrderReader interface {
	GetWithProduct(ctx context.Context, id string) (*models.OrderWithProduct, error)
}

// SellerReader loads the seller receiving the order.
type SellerReader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// OrderNotificationDeps wires the order notification handler.
type OrderNotificationDeps struct {
	Orders    OrderReader
	Sellers   SellerReader
	Mailer    mail.Mailer
	Templates *mail.Templates
	Currency  string
}

// NewOrderNotificationHandler emails the buyer a confirmation or the seller
// a new-order notice, depending on the job's recipient.
func NewOrderNotificationHandler(deps *OrderNotificationDeps) Handler {
	return func(ctx context.Context, job *Job) error {
		payload, err := OrderNotificationJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("failed to parse order notification payload: %w", err)
		}
		if payload.OrderID == "" {
			return errors.New("order notification payload has no order id")
		}
		switch payload.Recipient {
		case "", RecipientBuyer, RecipientSeller:
		default:
			return fmt.Errorf("unknown order notification recipient %q", payload.Recipient)
		}

		order, err := deps.Orders.GetWithProduct(ctx, payload.OrderID)
		if err != nil {
			return fmt.Errorf("failed to load order %s: %w", payload.OrderID, err)
		}
		seller, err := deps.Sellers.GetByID(ctx, order.SellerID)
		if err != nil {
			return fmt.Errorf("failed to load seller %d: %w", order.SellerID, err)
		}

		data := mail.OrderEmail{
			OrderID:         order.ID,
			ProductName:     order.ProductName,
			CustomerName:    order.CustomerName,
			CustomerEmail:   order.CustomerEmail,
			CustomerAddress: order.CustomerAddress,
			SellerName:      seller.Name,
			Total:           order.TotalAmount,
			Currency:        strings.ToUpper(deps.Currency),
		}

		if payload.Recipient != RecipientSeller && order.CustomerEmail != "" {
			subject := fmt.Sprintf("Your order for %s is confirmed", order.ProductName)
			if err := sendOrderEmail(deps, mail.TemplateOrderPaidBuyer, order.CustomerEmail, subject, data); err != nil {
				return fmt.Errorf("failed to email buyer: %w", err)
			}
		}
		if payload.Recipient != RecipientBuyer {
			if err := sendOrderEmail(deps, mail.TemplateOrderPaidSeller, seller.Email, "New order: "+order.ProductName, data); err != nil {
				return fmt.Errorf("failed to email seller: %w", err)
			}
		}

		log.Infof("[OrderNotification] Sent %s notification for order %s", recipientLabel(payload.Recipient), order.ID)
		return nil
	}
}

func sendOrderEmail(deps *OrderNotificationDeps, template, to, subject string, data mail.OrderEmail) error {
	body, err := deps.Templates.Render(template, data)
	if err != nil {
		return err
	}
	return deps.Mailer.Send(to, subject, body)
}

func recipientLabel(recipient string) string {
	if recipient == "" {
		return "buyer and seller"
	}
	return recipient
}

// OrderNotifier enqueues notification jobs for settled orders.
type OrderNotifier struct {
	queue *Queue
}

func NewOrderNotifier(q *Queue) *OrderNotifier {
	return &OrderNotifier{queue: q}
}

// OrderPaid enqueues the seller notice and, when the buyer left an email,
// the buyer confirmation as separate jobs.
func (n *OrderNotifier) OrderPaid(ctx context.Context, order *models.Order) error {
	recipients := []string{RecipientSeller}
	if order.CustomerEmail != "" {
		recipients = append(recipients, RecipientBuyer)
	}
	for _, recipient := range recipients {
		payload := OrderNotificationJobPayload{OrderID: order.ID, Recipient: recipient}
		if _, err := n.queue.EnqueueJob(ctx, JobTypeOrderNotification, payload.ToMap()); err != nil {
			return fmt.Errorf("failed to enqueue %s notification: %w", recipient, err)
		}
	}
	return nil
}
