package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinehq/vitrine/internal/pkg/checkout"
)

type stubIssuer struct {
	got    checkout.PurchaseRequest
	result *checkout.IntentResult
	err    error
}

func (s *stubIssuer) CreateIntent(_ context.Context, req checkout.PurchaseRequest) (*checkout.IntentResult, error) {
	s.got = req
	return s.result, s.err
}

func newCheckoutApp(issuer IntentCreator) *fiber.App {
	app := fiber.New()
	app.Post("/api/create-payment-intent", NewCheckoutController(issuer).HandleCreatePaymentIntent)
	return app
}

func TestHandleCreatePaymentIntent_Success(t *testing.T) {
	issuer := &stubIssuer{result: &checkout.IntentResult{ClientSecret: "pi_1_secret_x", PaymentIntentID: "pi_1"}}
	app := newCheckoutApp(issuer)

	body := `{"productId":"p-1","amount":1,"buyerInfo":{"fullName":"Ana Souza","email":"ana@example.com","city":"Recife"}}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/create-payment-intent", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	decodeBody(t, resp, &out)
	assert.Equal(t, "pi_1_secret_x", out["clientSecret"])
	assert.Equal(t, "pi_1", out["paymentIntentId"])

	assert.Equal(t, "p-1", issuer.got.ProductID)
	require.NotNil(t, issuer.got.BuyerInfo)
	assert.Equal(t, "Ana Souza", issuer.got.BuyerInfo.FullName)
	assert.Equal(t, "Recife", issuer.got.BuyerInfo.City)
}

func TestHandleCreatePaymentIntent_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"malformed body", `{"productId":`, nil, http.StatusBadRequest, "invalid request body"},
		{"not found", `{"productId":"x"}`, &checkout.Error{Kind: checkout.NotFound, Message: "product not found"}, http.StatusNotFound, "product not found"},
		{"invalid", `{"productId":"x"}`, &checkout.Error{Kind: checkout.InvalidRequest, Message: "amount too small"}, http.StatusBadRequest, "amount too small"},
		{"processor failure", `{"productId":"x"}`, &checkout.Error{Kind: checkout.InternalError, Message: "failed to create payment intent", Err: errors.New("card_error")}, http.StatusInternalServerError, "failed to create payment intent"},
		{"foreign error", `{"productId":"x"}`, errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newCheckoutApp(&stubIssuer{err: tt.err})
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/create-payment-intent", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var out map[string]string
			decodeBody(t, resp, &out)
			assert.Equal(t, tt.wantError, out["error"])
		})
	}
}
