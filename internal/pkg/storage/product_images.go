package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitrinehq/vitrine/internal/pkg/upload"
)

// ErrInvalidImage wraps every rejection of the uploaded content.
var ErrInvalidImage = errors.New("invalid image")

// UploadedImage locates a stored product image.
type UploadedImage struct {
	Key string
	URL string
}

// ImageUploader validates, normalizes and stores product images.
type ImageUploader struct {
	store  ObjectStore
	cfg    *Config
	maxDim int
	now    func() time.Time
}

func NewImageUploader(store ObjectStore, cfg *Config) *ImageUploader {
	return &ImageUploader{
		store:  store,
		cfg:    cfg,
		maxDim: DefaultMaxImageDimension,
		now:    time.Now,
	}
}

// Upload stores the image under the seller's prefix and returns its key and
// public URL.
func (u *ImageUploader) Upload(ctx context.Context, ownerID uint, filename string, data []byte) (*UploadedImage, error) {
	if _, err := upload.ValidateImage(filename, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	img, err := NormalizeImage(data, u.maxDim)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	key := u.cfg.ObjectKey(ownerID, u.now(), img.Ext)
	if err := u.store.Put(ctx, key, img.Data, img.ContentType); err != nil {
		return nil, err
	}
	return &UploadedImage{Key: key, URL: u.cfg.PublicURL(key)}, nil
}

// KeyFromURL returns the object key of an image URL produced by Upload.
func (u *ImageUploader) KeyFromURL(url string) (string, bool) {
	return u.cfg.KeyFromURL(url)
}
