package service

import (
	"context"
	"strings"
	"testing"

	"ripple/internal/models"
	"ripple/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n0000000000")
	jpegBytes = []byte("\xff\xd8\xff\xe00000000000")
)

func newTestAssetService(t *testing.T) *AssetService {
	backend, err := storage.NewFSBackend(t.TempDir())
	require.NoError(t, err)
	return NewAssetService(backend, 8)
}

func TestAssetServiceStoreAcceptsPNGAndJPEG(t *testing.T) {
	svc := newTestAssetService(t)
	ctx := context.Background()

	for name, data := range map[string][]byte{"pic.png": pngBytes, "pic.jpg": jpegBytes} {
		locator, err := svc.Store(ctx, name, data)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(locator, "-"+name), "locator %q should keep the original name", locator)
	}
}

func TestAssetServiceStoreRejectsOtherContent(t *testing.T) {
	svc := newTestAssetService(t)

	_, err := svc.Store(context.Background(), "notes.txt", []byte("plain text, not an image"))
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, models.CodeAssetRejected, appErr.Code)
}

func TestAssetServiceStoreRejectsEmpty(t *testing.T) {
	svc := newTestAssetService(t)

	_, err := svc.Store(context.Background(), "pic.png", nil)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, models.CodeMissingAsset, appErr.Code)
}

func TestAssetServiceStoreEnforcesSizeCap(t *testing.T) {
	backend, err := storage.NewFSBackend(t.TempDir())
	require.NoError(t, err)
	svc := NewAssetService(backend, 1)

	big := append([]byte{}, pngBytes...)
	big = append(big, make([]byte, 2*1024*1024)...)

	_, err = svc.Store(context.Background(), "huge.png", big)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, models.CodeAssetRejected, appErr.Code)
}

func TestAssetServiceReclaimMissingIsNonFatal(t *testing.T) {
	svc := newTestAssetService(t)

	// Must not panic or error; a failed reclaim is logged and counted only.
	svc.Reclaim("2024-01-01T00-00-00.000Z-gone.png")
	svc.Reclaim("")
}

func TestAssetServiceLocatorRoundTrip(t *testing.T) {
	svc := newTestAssetService(t)

	url := svc.URL("abc.png")
	assert.Equal(t, "/images/abc.png", url)
	assert.Equal(t, "abc.png", svc.LocatorFromURL(url))
	assert.Equal(t, "", svc.LocatorFromURL("https://elsewhere/img.png"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_pic.png", sanitizeFilename("my pic.png"))
	assert.Equal(t, "_etc_passwd", sanitizeFilename("../etc/passwd"))
	assert.Equal(t, "upload", sanitizeFilename(""))
}
