package controllers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinehq/vitrine/internal/pkg/payment"
)

func TestHandleGetConfig(t *testing.T) {
	app := fiber.New()
	app.Get("/config", NewConfigController(&payment.Config{PublishableKey: "pk_test_1", Currency: "brl"}).HandleGetConfig)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/config", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	decodeBody(t, resp, &out)
	assert.Equal(t, "pk_test_1", out["publishableKey"])
	assert.Equal(t, "brl", out["currency"])
}

func TestHandleGetConfig_MissingKey(t *testing.T) {
	app := fiber.New()
	app.Get("/config", NewConfigController(&payment.Config{Currency: "brl"}).HandleGetConfig)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/config", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
