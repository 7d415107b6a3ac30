package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/internal/pkg/payment"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_checkout_test"

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*models.Product
	err      error
	calls    int
}

func newFakeCatalog(products ...*models.Product) *fakeCatalog {
	c := &fakeCatalog{products: map[string]*models.Product{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) lookup(id string, activeOnly bool) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok || (activeOnly && !p.IsPurchasable()) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *fakeCatalog) GetActiveByID(_ context.Context, id string) (*models.Product, error) {
	return c.lookup(id, true)
}

func (c *fakeCatalog) GetByID(_ context.Context, id string) (*models.Product, error) {
	return c.lookup(id, false)
}

func (c *fakeCatalog) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeOrders struct {
	mu     sync.Mutex
	byRef  map[string]*models.Order
	err    error
	writes int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byRef: map[string]*models.Order{}}
}

func (s *fakeOrders) CreateIfNotExists(_ context.Context, order *models.Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	key := order.PaymentProvider + "/" + order.PaymentReference
	if _, exists := s.byRef[key]; exists {
		return false, nil
	}
	if order.ID == "" {
		order.ID = "ord-" + order.PaymentReference
	}
	cp := *order
	s.byRef[key] = &cp
	s.writes++
	return true, nil
}

func (s *fakeOrders) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byRef)
}

func (s *fakeOrders) Get(reference string) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byRef[payment.ProviderStripe+"/"+reference]
}

type fakeInbox struct {
	mu     sync.Mutex
	events map[string]*models.PaymentWebhookEvent
	nextID uint
	err    error
}

func newFakeInbox() *fakeInbox {
	return &fakeInbox{events: map[string]*models.PaymentWebhookEvent{}}
}

func (b *fakeInbox) CreateIfNotExists(_ context.Context, event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return false, nil, b.err
	}
	key := event.Provider + "/" + event.ProviderEventID
	if existing, ok := b.events[key]; ok {
		cp := *existing
		return false, &cp, nil
	}
	b.nextID++
	event.ID = b.nextID
	cp := *event
	b.events[key] = &cp
	return true, event, nil
}

func (b *fakeInbox) MarkProcessed(_ context.Context, id uint, processingError string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.events {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return errors.New("event not found")
}

func (b *fakeInbox) Get(eventID string) *models.PaymentWebhookEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.events[payment.ProviderStripe+"/"+eventID]
}

type fakeNotifier struct {
	mu     sync.Mutex
	orders []*models.Order
	err    error
}

func (n *fakeNotifier) OrderPaid(_ context.Context, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
	return n.err
}

// fakeGateway records intent creation and delegates verification to the
// real Stripe signature check.
type fakeGateway struct {
	*payment.StripeGateway
	mu      sync.Mutex
	created []payment.IntentParams
	err     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{StripeGateway: payment.NewStripeGateway("sk_test_unused", nil)}
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, params payment.IntentParams) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.created = append(g.created, params)
	id := "pi_test_" + params.Metadata[MetaProductID]
	return &payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       params.Amount,
		Currency:     params.Currency,
		Status:       "requires_payment_method",
		Metadata:     params.Metadata,
	}, nil
}

func (g *fakeGateway) Created() []payment.IntentParams {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payment.IntentParams(nil), g.created...)
}

func testProduct(id, price, status string) *models.Product {
	return &models.Product{
		ID:      id,
		OwnerID: 7,
		Name:    "Product " + id,
		Price:   decimal.RequireFromString(price),
		Status:  status,
	}
}

func testBuyer() *BuyerInfo {
	return &BuyerInfo{
		FullName:      "Ana Souza",
		Email:         "ana@example.com",
		StreetAddress: "Rua A 1",
		City:          "São Paulo",
		State:         "SP",
		ZipCode:       "01000-000",
	}
}

func testPaymentConfig() *payment.Config {
	return &payment.Config{
		SecretKey:     "sk_test_unused",
		WebhookSecret: testWebhookSecret,
		Currency:      "brl",
		MinimumAmount: 50,
	}
}

// eventPayload builds a Stripe event body for a payment intent.
func eventPayload(t *testing.T, eventID, eventType, intentID string, amount int64, metadata map[string]string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":          eventID,
		"object":      "event",
		"type":        eventType,
		"api_version": stripe.APIVersion,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       intentID,
				"object":   "payment_intent",
				"amount":   amount,
				"currency": "brl",
				"status":   "succeeded",
				"metadata": metadata,
			},
		},
	})
	require.NoError(t, err)
	return body
}

func sign(t *testing.T, payload []byte, secret string) ([]byte, string) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}
