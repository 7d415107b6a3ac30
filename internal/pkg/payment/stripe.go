package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeGateway implements Gateway on top of the Stripe API.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a gateway bound to the given secret key. A nil
// backends value selects the default Stripe endpoints.
func NewStripeGateway(secretKey string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, backends)}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	p := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	p.Context = ctx
	for k, v := range params.Metadata {
		p.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(p)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return toIntent(pi), nil
}

// VerifyEvent checks the Stripe-Signature header against the endpoint secret
// and decodes the event. Events signed for another API version are accepted
// since only the payment intent fields below are read.
func (g *StripeGateway) VerifyEvent(payload []byte, signatureHeader, secret string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{
		ID:      event.ID,
		Type:    string(event.Type),
		Payload: payload,
	}

	if strings.HasPrefix(out.Type, "payment_intent.") {
		if event.Data == nil || len(event.Data.Raw) == 0 {
			return nil, fmt.Errorf("%w: event %s has no data", ErrMalformedEvent, event.ID)
		}
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		out.Intent = toIntent(&pi)
	}

	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	metadata := make(map[string]string, len(pi.Metadata))
	for k, v := range pi.Metadata {
		metadata[k] = v
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     metadata,
	}
}
