package payment

import (
	"errors"
	"strings"

	"github.com/vitrinehq/vitrine/internal/pkg/env"
)

const (
	DefaultCurrency      = "brl"
	DefaultMinimumAmount = 50
)

// Config holds the payment processor settings
type Config struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
	Currency       string
	MinimumAmount  int64 // smallest chargeable amount in minor units
}

// LoadConfig loads processor configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		SecretKey:      strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		PublishableKey: strings.TrimSpace(env.GetEnv("STRIPE_PUBLISHABLE_KEY", "")),
		WebhookSecret:  strings.TrimSpace(env.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		Currency:       strings.ToLower(strings.TrimSpace(env.GetEnv("PAYMENT_CURRENCY", DefaultCurrency))),
		MinimumAmount:  int64(env.GetEnvInt("PAYMENT_MIN_AMOUNT", DefaultMinimumAmount)),
	}

	if config.SecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is required")
	}
	if config.Currency == "" {
		config.Currency = DefaultCurrency
	}
	if config.MinimumAmount < 1 {
		config.MinimumAmount = DefaultMinimumAmount
	}

	return config, nil
}

// HasWebhookSecret reports whether incoming webhooks can be verified.
func (c *Config) HasWebhookSecret() bool {
	return c.WebhookSecret != ""
}
