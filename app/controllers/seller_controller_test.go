package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinehq/vitrine/app/models"
)

func newSellerApp(sc *SellerController) *fiber.App {
	app := fiber.New()
	app.Post("/sellers", sc.HandleRegister)
	app.Post("/sellers/api-key", sc.HandleRotateAPIKey)
	return app
}

func TestSellerController_Register(t *testing.T) {
	_, repos := setupTestRepos(t)
	app := newSellerApp(NewSellerController(repos.User))

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sellers", `{"name":"Loja Azul","email":" Azul@Example.com ","password":"secret123"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Seller models.User `json:"seller"`
		APIKey string      `json:"api_key"`
	}
	decodeBody(t, resp, &out)
	assert.True(t, strings.HasPrefix(out.APIKey, "vtr_"))
	assert.Equal(t, "azul@example.com", out.Seller.Email)

	stored, err := repos.User.GetByAPIKeyHash(context.Background(), models.HashAPIKey(out.APIKey))
	require.NoError(t, err)
	assert.Equal(t, out.Seller.ID, stored.ID)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/sellers", `{"name":"Loja Azul","email":"azul@example.com","password":"secret123"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSellerController_RegisterValidation(t *testing.T) {
	_, repos := setupTestRepos(t)
	app := newSellerApp(NewSellerController(repos.User))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"short password", `{"name":"Loja","email":"a@example.com","password":"123"}`, "password must be at least 6 characters"},
		{"bad email", `{"name":"Loja","email":"nope","password":"secret123"}`, "email must be a valid email"},
		{"missing name", `{"email":"a@example.com","password":"secret123"}`, "name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/sellers", tt.body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var out map[string]string
			decodeBody(t, resp, &out)
			assert.Equal(t, tt.want, out["error"])
		})
	}
}

func TestSellerController_RotateAPIKey(t *testing.T) {
	db, repos := setupTestRepos(t)
	seller := createSeller(t, db, "shop@example.com")
	oldKey, err := seller.IssueAPIKey()
	require.NoError(t, err)
	require.NoError(t, db.Save(seller).Error)

	app := newSellerApp(NewSellerController(repos.User))

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sellers/api-key", `{"email":"shop@example.com","password":"wrong-pass"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/sellers/api-key", `{"email":"nobody@example.com","password":"secret123"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/sellers/api-key", `{"email":"SHOP@example.com","password":"secret123"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	decodeBody(t, resp, &out)
	require.NotEmpty(t, out["api_key"])
	assert.NotEqual(t, oldKey, out["api_key"])

	_, err = repos.User.GetByAPIKeyHash(context.Background(), models.HashAPIKey(oldKey))
	assert.Error(t, err)
	rotated, err := repos.User.GetByAPIKeyHash(context.Background(), models.HashAPIKey(out["api_key"]))
	require.NoError(t, err)
	assert.Equal(t, seller.ID, rotated.ID)
}
