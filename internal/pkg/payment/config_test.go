package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrinehq/vitrine/internal/pkg/env"
)

func TestLoadConfig(t *testing.T) {
	env.Env = map[string]string{}

	t.Run("secret key is required", func(t *testing.T) {
		t.Setenv("STRIPE_SECRET_KEY", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
		t.Setenv("PAYMENT_CURRENCY", "")
		t.Setenv("PAYMENT_MIN_AMOUNT", "")
		t.Setenv("STRIPE_WEBHOOK_SECRET", "")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "sk_test_123", cfg.SecretKey)
		assert.Equal(t, DefaultCurrency, cfg.Currency)
		assert.Equal(t, int64(DefaultMinimumAmount), cfg.MinimumAmount)
		assert.False(t, cfg.HasWebhookSecret())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
		t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_abc")
		t.Setenv("PAYMENT_CURRENCY", "USD")
		t.Setenv("PAYMENT_MIN_AMOUNT", "100")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "usd", cfg.Currency)
		assert.Equal(t, int64(100), cfg.MinimumAmount)
		assert.True(t, cfg.HasWebhookSecret())
	})
}
