package payment

import (
	"context"
	"errors"
)

const ProviderStripe = "stripe"

const EventPaymentIntentSucceeded = "payment_intent.succeeded"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// IntentParams describes a payment intent to create. Amount is in minor
// units of Currency.
type IntentParams struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

// Intent is the processor-neutral view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	Metadata     map[string]string
}

// Event is a verified webhook event. Intent is set for payment_intent.*
// events only.
type Event struct {
	ID      string
	Type    string
	Intent  *Intent
	Payload []byte
}

// Gateway is the slice of the payment processor the checkout flow uses.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error)
	VerifyEvent(payload []byte, signatureHeader, secret string) (*Event, error)
}
