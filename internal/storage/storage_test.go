package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"propmatch/internal/models"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, string, io.Reader) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (failingStore) Delete(context.Context, string) error { return nil }

func TestPhotoUploader_StoresPNGUnderGeneratedKey(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://cdn.test/uploads/")
	require.NoError(t, err)

	u := NewPhotoUploader(store, "", 1)
	u.now = func() time.Time { return time.UnixMilli(1700000000123) }

	url, err := u.Upload(context.Background(), Photo{Filename: "front.png", Content: pngBytes(t, 40, 30)})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^http://cdn\.test/uploads/property-images/1700000000123-[0-9a-z]{26}\.png$`), url)

	key := strings.TrimPrefix(url, "http://cdn.test/uploads/")
	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 40, cfg.Width)
}

func TestPhotoUploader_KeepsWebP(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://cdn.test")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, testImage(16, 16), &webp.Options{Quality: 80}))

	url, err := NewPhotoUploader(store, "photos", 1).Upload(context.Background(), Photo{Content: buf.Bytes()})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://cdn.test/photos/"))
	assert.True(t, strings.HasSuffix(url, ".webp"))
}

func TestPhotoUploader_Rejections(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://cdn.test")
	require.NoError(t, err)
	u := NewPhotoUploader(store, "", 1)

	tests := []struct {
		name    string
		content []byte
	}{
		{name: "empty", content: nil},
		{name: "not an image", content: []byte("hello, this is plain text")},
		{name: "truncated png", content: pngBytes(t, 8, 8)[:40]},
		{name: "too large", content: append(pngBytes(t, 8, 8), make([]byte, 2<<20)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.Upload(context.Background(), Photo{Content: tt.content})
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.CodeValidation), err.Error())
		})
	}
}

func TestPhotoUploader_StoreFailureIsInternal(t *testing.T) {
	_, err := NewPhotoUploader(failingStore{}, "", 1).Upload(context.Background(), Photo{Content: pngBytes(t, 4, 4)})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeInternal))
}

func TestResizeToFit(t *testing.T) {
	out := resizeToFit(testImage(400, 100), 200, 200)
	assert.Equal(t, 200, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())

	small := testImage(10, 10)
	assert.Same(t, small, resizeToFit(small, 200, 200))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://cdn.test")
	require.NoError(t, err)

	for _, key := range []string{"../evil.png", "/abs.png", "."} {
		_, err := store.Put(context.Background(), key, "image/png", bytes.NewReader([]byte("x")))
		assert.Error(t, err, key)
	}
	assert.NoError(t, store.Delete(context.Background(), "property-images/missing.png"))
}
