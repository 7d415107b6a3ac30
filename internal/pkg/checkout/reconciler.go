package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/internal/pkg/payment"
	"gorm.io/gorm"
)

// OrderStore persists settled orders.
type OrderStore interface {
	// CreateIfNotExists inserts the order unless one already exists for its
	// payment provider and reference, and reports whether it wrote a row.
	CreateIfNotExists(ctx context.Context, order *models.Order) (bool, error)
}

// EventInbox records verified webhook events.
type EventInbox interface {
	CreateIfNotExists(ctx context.Context, event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkProcessed(ctx context.Context, id uint, processingError string) error
}

// Notifier is told about newly created orders.
type Notifier interface {
	OrderPaid(ctx context.Context, order *models.Order) error
}

// Ack is the acknowledgement returned to the processor.
type Ack struct {
	Received bool `json:"received"`

	Duplicate bool          `json:"-"`
	Order     *models.Order `json:"-"`
}

// Reconciler turns verified payment events into orders.
type Reconciler struct {
	catalog       ProductCatalog
	orders        OrderStore
	gateway       payment.Gateway
	webhookSecret string

	inbox    EventInbox
	notifier Notifier
}

// ReconcilerOption configures optional collaborators.
type ReconcilerOption func(*Reconciler)

// WithInbox records every verified event and skips redeliveries of events
// that were already processed successfully.
func WithInbox(inbox EventInbox) ReconcilerOption {
	return func(r *Reconciler) { r.inbox = inbox }
}

// WithNotifier announces newly created orders.
func WithNotifier(n Notifier) ReconcilerOption {
	return func(r *Reconciler) { r.notifier = n }
}

func NewReconciler(catalog ProductCatalog, orders OrderStore, gateway payment.Gateway, webhookSecret string, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		catalog:       catalog,
		orders:        orders,
		gateway:       gateway,
		webhookSecret: webhookSecret,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleEvent verifies a raw webhook delivery and, for succeeded payment
// intents, records exactly one paid order per intent. Everything it reads
// comes from the verified payload.
func (r *Reconciler) HandleEvent(ctx context.Context, rawBody []byte, signatureHeader string) (*Ack, error) {
	const op = "checkout.HandleEvent"

	if r.webhookSecret == "" {
		log.Error("[Webhook] Webhook secret is not configured")
		return nil, newError(ConfigurationError, op, "webhook secret not configured", nil)
	}
	if strings.TrimSpace(signatureHeader) == "" {
		return nil, newError(ConfigurationError, op, "missing signature", nil)
	}

	event, err := r.gateway.VerifyEvent(rawBody, signatureHeader, r.webhookSecret)
	if err != nil {
		if errors.Is(err, payment.ErrMalformedEvent) {
			log.Warnf("[Webhook] Malformed event: %v", err)
			return nil, newError(InvalidRequest, op, "malformed event", err)
		}
		log.Warnf("[Webhook] Signature verification failed: %v", err)
		return nil, newError(InvalidSignature, op, "invalid signature", err)
	}

	var stored *models.PaymentWebhookEvent
	if r.inbox != nil {
		var created bool
		created, stored, err = r.inbox.CreateIfNotExists(ctx, &models.PaymentWebhookEvent{
			Provider:        payment.ProviderStripe,
			ProviderEventID: event.ID,
			EventType:       event.Type,
			PayloadJSON:     string(event.Payload),
		})
		if err != nil {
			log.Errorf("[Webhook] Failed to record event %s: %v", event.ID, err)
			return nil, newError(StorageError, op, "failed to record event", err)
		}
		if !created && stored.IsSettled() {
			log.Infof("[Webhook] Event %s already processed", event.ID)
			return &Ack{Received: true, Duplicate: true}, nil
		}
	}

	if event.Type != payment.EventPaymentIntentSucceeded {
		r.markProcessed(ctx, stored, "")
		return &Ack{Received: true}, nil
	}

	intent := event.Intent
	if intent == nil {
		r.markProcessed(ctx, stored, "missing payment intent")
		return nil, newError(InvalidRequest, op, "malformed event", payment.ErrMalformedEvent)
	}

	productID := strings.TrimSpace(intent.Metadata[MetaProductID])
	if productID == "" {
		log.Warnf("[Webhook] Payment intent %s has no product metadata, ignoring", intent.ID)
		r.markProcessed(ctx, stored, "")
		return &Ack{Received: true}, nil
	}

	product, err := r.catalog.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Webhook] Product %s for payment intent %s not found", productID, intent.ID)
			r.markProcessed(ctx, stored, "product not found")
			return nil, newError(NotFound, op, "product not found", err)
		}
		log.Errorf("[Webhook] Product lookup failed for %s: %v", productID, err)
		r.markProcessed(ctx, stored, err.Error())
		return nil, newError(StorageError, op, "failed to load product", err)
	}

	order := &models.Order{
		ProductID:        product.ID,
		SellerID:         product.OwnerID,
		CustomerName:     intent.Metadata[MetaBuyerName],
		CustomerEmail:    intent.Metadata[MetaBuyerEmail],
		CustomerAddress:  composeAddress(intent.Metadata),
		Quantity:         1,
		TotalAmount:      FromMinorUnits(intent.Amount),
		PaymentStatus:    models.PaymentStatusPaid,
		PaymentProvider:  payment.ProviderStripe,
		PaymentReference: intent.ID,
	}

	created, err := r.orders.CreateIfNotExists(ctx, order)
	if err != nil {
		log.Errorf("[Webhook] Failed to create order for payment intent %s: %v", intent.ID, err)
		r.markProcessed(ctx, stored, err.Error())
		return nil, newError(StorageError, op, "failed to create order", err)
	}
	r.markProcessed(ctx, stored, "")

	if !created {
		log.Infof("[Webhook] Order for payment intent %s already exists", intent.ID)
		return &Ack{Received: true, Duplicate: true}, nil
	}

	log.Infof("[Webhook] Created order %s for payment intent %s", order.ID, intent.ID)
	if r.notifier != nil {
		if err := r.notifier.OrderPaid(ctx, order); err != nil {
			log.Warnf("[Webhook] Failed to enqueue notification for order %s: %v", order.ID, err)
		}
	}
	return &Ack{Received: true, Order: order}, nil
}

func (r *Reconciler) markProcessed(ctx context.Context, stored *models.PaymentWebhookEvent, processingError string) {
	if r.inbox == nil || stored == nil {
		return
	}
	if err := r.inbox.MarkProcessed(ctx, stored.ID, processingError); err != nil {
		log.Warnf("[Webhook] Failed to mark event %s processed: %v", stored.ProviderEventID, err)
	}
}
