package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"
	"time"

	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/observability"

	"github.com/chai2010/webp"
	"github.com/oklog/ulid/v2"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultBucket  = "property-images"
	MaxPhotoSide   = 2048
	JPEGQuality    = 82
	WebPQuality    = 75
	defaultMaxSize = 10 << 20
)

// Photo is an uploaded listing photo before normalisation.
type Photo struct {
	Filename    string
	ContentType string
	Content     []byte
}

// PhotoUploader validates listing photos, bounds their size and writes them to an ObjectStore.
type PhotoUploader struct {
	store    ObjectStore
	bucket   string
	maxBytes int64
	now      func() time.Time
}

// NewPhotoUploader builds an uploader writing under bucket. maxUploadMB <= 0 means 10MB.
func NewPhotoUploader(store ObjectStore, bucket string, maxUploadMB int) *PhotoUploader {
	if bucket == "" {
		bucket = DefaultBucket
	}
	maxBytes := int64(defaultMaxSize)
	if maxUploadMB > 0 {
		maxBytes = int64(maxUploadMB) << 20
	}
	return &PhotoUploader{store: store, bucket: bucket, maxBytes: maxBytes, now: time.Now}
}

// Upload stores p and returns its public URL. Invalid images are validation errors;
// store failures are internal errors.
func (u *PhotoUploader) Upload(ctx context.Context, p Photo) (string, error) {
	ctx, span := observability.StartSpan(ctx, "storage.UploadPhoto")
	url, err := u.upload(ctx, p)
	span.End(err)

	switch {
	case err == nil:
		observability.PhotoUploads.WithLabelValues("ok").Inc()
	case models.HasCode(err, models.CodeValidation):
		observability.PhotoUploads.WithLabelValues("rejected").Inc()
	default:
		observability.PhotoUploads.WithLabelValues("failed").Inc()
		middleware.Logger.ErrorContext(ctx, "photo upload failed", "filename", p.Filename, "error", err)
	}
	return url, err
}

func (u *PhotoUploader) upload(ctx context.Context, p Photo) (string, error) {
	if len(p.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(p.Content)) > u.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", u.maxBytes>>20))
	}
	if !isAllowedImageMIME(http.DetectContentType(p.Content)) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(p.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	encoded, ext, contentType, err := normalise(decoded, format)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	key := u.NewKey(ext)
	url, err := u.store.Put(ctx, key, contentType, bytes.NewReader(encoded))
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("store %s: %w", key, err))
	}
	return url, nil
}

// NewKey returns "<bucket>/<unix-ms>-<ulid>.<ext>".
func (u *PhotoUploader) NewKey(ext string) string {
	now := u.now()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	return fmt.Sprintf("%s/%d-%s.%s", u.bucket, now.UnixMilli(), strings.ToLower(id.String()), ext)
}

// normalise bounds the image to MaxPhotoSide and re-encodes it. PNG and WebP keep
// their format; everything else becomes JPEG.
func normalise(img image.Image, format string) ([]byte, string, string, error) {
	img = resizeToFit(img, MaxPhotoSide, MaxPhotoSide)
	buf := bytes.NewBuffer(nil)

	switch format {
	case "png":
		if err := png.Encode(buf, img); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "png", "image/png", nil
	case "webp":
		if err := webp.Encode(buf, img, &webp.Options{Quality: WebPQuality}); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "webp", "image/webp", nil
	default:
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "jpg", "image/jpeg", nil
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}
