package thumbs

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newService(t *testing.T) *Service {
	t.Helper()
	root := t.TempDir()
	return New(filepath.Join(root, "static"), filepath.Join(root, "cache"), nil)
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestThumbnailResizesAndCaches(t *testing.T) {
	svc := newService(t)
	writePNG(t, filepath.Join(svc.AssetsRoot, "original", "wide.png"), 600, 300)

	res, err := svc.Thumbnail("original", "wide.png", "thumb")
	require.NoError(t, err)
	assert.False(t, res.Cached)
	img := decodeJPEG(t, res.Data)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())

	again, err := svc.Thumbnail("original", "wide.png", "thumb")
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, res.Data, again.Data)

	medium, err := svc.Thumbnail("original", "wide.png", "medium")
	require.NoError(t, err)
	assert.False(t, medium.Cached)
	assert.Equal(t, 600, decodeJPEG(t, medium.Data).Bounds().Dx(), "never upscaled")
}

func TestThumbnailInvalidatedByNewerOriginal(t *testing.T) {
	svc := newService(t)
	src := filepath.Join(svc.AssetsRoot, "original", "a.png")
	writePNG(t, src, 40, 40)

	_, err := svc.Thumbnail("original", "a.png", "thumb")
	require.NoError(t, err)

	writePNG(t, src, 20, 10)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, future, future))

	res, err := svc.Thumbnail("original", "a.png", "thumb")
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 20, decodeJPEG(t, res.Data).Bounds().Dx())
}

func TestThumbnailErrors(t *testing.T) {
	svc := newService(t)
	writePNG(t, filepath.Join(svc.AssetsRoot, "original", "a.png"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(svc.AssetsRoot, "original", "b.webp"), []byte("RIFF"), 0o644))

	tests := []struct {
		gallery, file, size string
		want                error
	}{
		{"..", "a.png", "thumb", ErrInvalidName},
		{"original", "../a.png", "thumb", ErrInvalidName},
		{"original", "notes.txt", "thumb", ErrInvalidName},
		{"original", "a.png", "huge", ErrUnknownSize},
		{"original", "missing.png", "thumb", ErrNotFound},
		{"pergamano", "a.png", "thumb", ErrNotFound},
		{"original", "b.webp", "thumb", ErrDecode},
	}
	for _, tt := range tests {
		_, err := svc.Thumbnail(tt.gallery, tt.file, tt.size)
		assert.ErrorIs(t, err, tt.want, "%s/%s?size=%s", tt.gallery, tt.file, tt.size)
	}
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newService(t)
	writePNG(t, filepath.Join(svc.AssetsRoot, "original", "a.png"), 500, 500)
	require.NoError(t, os.WriteFile(filepath.Join(svc.AssetsRoot, "original", "b.webp"), []byte("RIFF"), 0o644))

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/thumbs"))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/thumbs/original/a.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, 300, decodeJPEG(t, w.Body.Bytes()).Bounds().Dx())

	w = get("/thumbs/original/b.webp")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/static/original/b.webp", w.Header().Get("Location"))

	assert.Equal(t, http.StatusBadRequest, get("/thumbs/original/a.png?size=xl").Code)
	assert.Equal(t, http.StatusNotFound, get("/thumbs/original/none.png").Code)
}
