package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxImageSize is the largest accepted product image upload.
const MaxImageSize = 10 << 20

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	// SVG is excluded: scriptable without sanitization
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

var (
	ErrUnsupportedExtension = errors.New("only JPG, JPEG, PNG, GIF, WEBP and BMP images are supported")
	ErrScriptableContent    = errors.New("invalid file type: HTML, XML and SVG content is not allowed")
	ErrUnsupportedType      = errors.New("file type is not supported")
	ErrTooLarge             = errors.New("image exceeds the 10 MB limit")
)

// ValidateImageBySniff checks the provided filename (extension) and the first bytes (head)
// against a whitelist of image types. Returns detected mime or an error.
func ValidateImageBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedExtension
	}

	detected := http.DetectContentType(head)

	// Block obvious scriptable types regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", ErrScriptableContent
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", ErrScriptableContent
	}

	if allowedMime[detected] {
		return detected, nil
	}

	return "", ErrUnsupportedType
}

// ValidateImage checks size and content of a complete upload.
func ValidateImage(filename string, data []byte) (string, error) {
	if len(data) > MaxImageSize {
		return "", ErrTooLarge
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return ValidateImageBySniff(filename, head)
}
