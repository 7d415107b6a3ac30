package storage

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImageDimension bounds the longest side of stored product images.
const DefaultMaxImageDimension = 1600

// NormalizedImage is an upload re-encoded for serving.
type NormalizedImage struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// NormalizeImage decodes an upload, applies EXIF orientation, fits it into
// maxDim×maxDim and re-encodes it. Opaque images become JPEG, images with
// transparency PNG. Re-encoding also strips embedded metadata.
func NormalizeImage(data []byte, maxDim int) (*NormalizedImage, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxImageDimension
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxDim || b.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	out := &NormalizedImage{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	if isOpaque(img) {
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		out.ContentType, out.Ext = "image/jpeg", ".jpg"
	} else {
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		out.ContentType, out.Ext = "image/png", ".png"
	}
	out.Data = buf.Bytes()
	return out, nil
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
