package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/storage"
)

// URLPrefix is the public path under which stored assets are served.
const URLPrefix = "/images/"

var acceptedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
}

// AssetService manages the lifecycle of uploaded image assets: content
// checks on the way in, best-effort reclaim on the way out.
type AssetService struct {
	backend  storage.Backend
	maxBytes int64
}

// NewAssetService returns an AssetService writing through the given backend.
// maxUploadMB caps the accepted upload size.
func NewAssetService(backend storage.Backend, maxUploadMB int) *AssetService {
	return &AssetService{
		backend:  backend,
		maxBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// Store validates and persists image bytes, returning the asset locator.
// Content is sniffed, not trusted from the request; only PNG and JPEG pass.
func (s *AssetService) Store(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", models.NewMissingAssetError("No image provided")
	}
	if int64(len(data)) > s.maxBytes {
		return "", models.NewAssetRejectedError(
			fmt.Sprintf("Image exceeds the %d MB size limit", s.maxBytes/(1024*1024)))
	}

	contentType := http.DetectContentType(data)
	if _, ok := acceptedImageTypes[contentType]; !ok {
		return "", models.NewAssetRejectedError("Only PNG and JPEG images are accepted")
	}

	locator := newLocator(filename)
	if err := s.backend.Upload(ctx, locator, bytes.NewReader(data)); err != nil {
		return "", models.NewStorageError(err)
	}
	observability.AssetsStored.Inc()
	return locator, nil
}

// Reclaim deletes a stored asset, best effort. Failures are logged and
// counted but never escalated; the asset becomes orphaned garbage at worst.
func (s *AssetService) Reclaim(locator string) {
	if locator == "" {
		return
	}
	if err := s.backend.Delete(context.Background(), locator); err != nil {
		observability.AssetReclaimFailures.Inc()
		log.Printf("failed to reclaim asset %s: %v", locator, err)
	}
}

// URL returns the public path a stored asset is served under.
func (s *AssetService) URL(locator string) string {
	return URLPrefix + locator
}

// LocatorFromURL extracts the asset locator from a stored public path.
// Returns "" when the URL does not reference a managed asset.
func (s *AssetService) LocatorFromURL(url string) string {
	if !strings.HasPrefix(url, URLPrefix) {
		return ""
	}
	return strings.TrimPrefix(url, URLPrefix)
}

// newLocator derives a unique storage key from the upload time and a
// sanitized version of the original filename.
func newLocator(filename string) string {
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05.000Z")
	return stamp + "-" + sanitizeFilename(filename)
}

// sanitizeFilename keeps a safe subset of the original name so the key stays
// recognizable without admitting path or shell metacharacters.
func sanitizeFilename(name string) string {
	if name == "" {
		return "upload"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}
