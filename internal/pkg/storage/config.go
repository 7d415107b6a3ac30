package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehq/vitrine/internal/pkg/env"
)

// Config holds object storage configuration for product images
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	PublicBaseURL   string // Base URL images are served from
	Enabled         bool
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		PublicBaseURL:   strings.TrimRight(env.GetEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		Enabled:         env.GetEnv("S3_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when S3 is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when S3 is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when S3 is enabled")
		}
		if config.PublicBaseURL == "" {
			config.PublicBaseURL = config.defaultPublicBaseURL()
		}
	}

	return config, nil
}

// IsEnabled returns true if product image storage is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey builds the key of a product image:
// products/<owner>/<unix millis>-<uuid><ext>.
func (c *Config) ObjectKey(ownerID uint, at time.Time, ext string) string {
	return fmt.Sprintf("products/%d/%d-%s%s", ownerID, at.UnixMilli(), uuid.NewString(), ext)
}

// PublicURL returns the URL a stored object is served from.
func (c *Config) PublicURL(key string) string {
	return c.PublicBaseURL + "/" + key
}

// KeyFromURL reverses PublicURL for objects stored by this service.
func (c *Config) KeyFromURL(url string) (string, bool) {
	prefix := c.PublicBaseURL + "/"
	if c.PublicBaseURL == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func (c *Config) defaultPublicBaseURL() string {
	if c.EndpointURL != "" {
		return strings.TrimRight(c.EndpointURL, "/") + "/" + c.BucketName
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.BucketName, c.Region)
}
