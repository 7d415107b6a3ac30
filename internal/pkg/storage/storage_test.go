package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinehq/vitrine/internal/pkg/env"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func encodeTransparentPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 128})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadConfig(t *testing.T) {
	env.Env = map[string]string{}

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("S3_ENABLED", "")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.False(t, cfg.IsEnabled())
	})

	t.Run("enabled requires credentials", func(t *testing.T) {
		t.Setenv("S3_ENABLED", "true")
		t.Setenv("S3_ACCESS_KEY_ID", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("public url derived from endpoint", func(t *testing.T) {
		t.Setenv("S3_ENABLED", "true")
		t.Setenv("S3_ACCESS_KEY_ID", "key")
		t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
		t.Setenv("S3_BUCKET_NAME", "products")
		t.Setenv("S3_ENDPOINT_URL", "http://minio:9000/")
		t.Setenv("S3_PUBLIC_BASE_URL", "")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://minio:9000/products", cfg.PublicBaseURL)
	})
}

func TestConfigKeys(t *testing.T) {
	cfg := &Config{PublicBaseURL: "https://cdn.example.com"}
	at := time.UnixMilli(1700000000123)

	key := cfg.ObjectKey(7, at, ".jpg")
	assert.Regexp(t, `^products/7/1700000000123-[0-9a-f-]{36}\.jpg$`, key)
	assert.Equal(t, "https://cdn.example.com/"+key, cfg.PublicURL(key))
	assert.NotEqual(t, key, cfg.ObjectKey(7, at, ".jpg"))

	back, ok := cfg.KeyFromURL(cfg.PublicURL(key))
	assert.True(t, ok)
	assert.Equal(t, key, back)

	_, ok = cfg.KeyFromURL("https://elsewhere.example.com/a.jpg")
	assert.False(t, ok)
}

func TestNormalizeImage(t *testing.T) {
	t.Run("large jpeg is downscaled", func(t *testing.T) {
		out, err := NormalizeImage(encodeJPEG(t, 400, 200), 100)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", out.ContentType)
		assert.Equal(t, ".jpg", out.Ext)
		assert.Equal(t, 100, out.Width)
		assert.Equal(t, 50, out.Height)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 100, cfg.Width)
	})

	t.Run("small image keeps size", func(t *testing.T) {
		out, err := NormalizeImage(encodeJPEG(t, 40, 30), 100)
		require.NoError(t, err)
		assert.Equal(t, 40, out.Width)
		assert.Equal(t, 30, out.Height)
	})

	t.Run("transparency stays png", func(t *testing.T) {
		out, err := NormalizeImage(encodeTransparentPNG(t, 10, 10), 100)
		require.NoError(t, err)
		assert.Equal(t, "image/png", out.ContentType)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NormalizeImage([]byte("not an image"), 100)
		assert.Error(t, err)
	})
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func TestImageUploader(t *testing.T) {
	store := newMemoryStore()
	u := NewImageUploader(store, &Config{PublicBaseURL: "https://cdn.example.com"})
	u.now = func() time.Time { return time.UnixMilli(42) }

	img, err := u.Upload(context.Background(), 7, "mug.jpg", encodeJPEG(t, 20, 20))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.Key, "products/7/42-"))
	assert.True(t, strings.HasSuffix(img.Key, ".jpg"))
	assert.Equal(t, "https://cdn.example.com/"+img.Key, img.URL)
	assert.Equal(t, "image/jpeg", store.types[img.Key])

	// same millisecond, same owner: both objects survive
	again, err := u.Upload(context.Background(), 7, "mug.jpg", encodeJPEG(t, 20, 20))
	require.NoError(t, err)
	assert.NotEqual(t, img.Key, again.Key)
	assert.Len(t, store.objects, 2)

	_, err = u.Upload(context.Background(), 7, "evil.jpg", []byte("<html><script></script></html>"))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = u.Upload(context.Background(), 7, "doc.pdf", encodeJPEG(t, 5, 5))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestS3Store_PutAndDelete(t *testing.T) {
	type call struct {
		method, path, contentType string
		body                      []byte
	}
	var mu sync.Mutex
	var calls []call

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, call{r.Method, r.URL.Path, r.Header.Get("Content-Type"), body})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := NewS3Store(context.Background(), &Config{
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Region:          "us-east-1",
		BucketName:      "products",
		EndpointURL:     srv.URL,
		Enabled:         true,
	})
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "products/7/1.jpg", []byte("jpegdata"), "image/jpeg"))
	require.NoError(t, store.Delete(context.Background(), "products/7/1.jpg"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPut, calls[0].method)
	assert.Equal(t, "/products/products/7/1.jpg", calls[0].path)
	assert.Equal(t, "image/jpeg", calls[0].contentType)
	assert.Equal(t, http.MethodDelete, calls[1].method)
}

func TestNewS3Store_Disabled(t *testing.T) {
	_, err := NewS3Store(context.Background(), &Config{})
	assert.Error(t, err)
}
